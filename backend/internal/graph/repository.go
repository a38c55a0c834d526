package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "threadgraph/backend/pkg/errors"
	"threadgraph/backend/pkg/logger"
)

// Repository handles all Neo4j database operations
type Repository struct {
	driver       neo4j.DriverWithContext
	logger       *zap.Logger
	database     string
	queryTimeout time.Duration
	maxRetries   int
}

// NewDriver creates a Neo4j driver with pool settings sized for batch work
func NewDriver(uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""), func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = 50
		cfg.SocketConnectTimeout = 10 * time.Second
	})
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	return driver, nil
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext, database string, queryTimeout time.Duration, maxRetries int) *Repository {
	if queryTimeout <= 0 {
		queryTimeout = 15 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Repository{
		driver:       driver,
		logger:       logger.Get(),
		database:     database,
		queryTimeout: queryTimeout,
		maxRetries:   maxRetries,
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// Verify checks connectivity to the store before any batch work starts
func (r *Repository) Verify(ctx context.Context) error {
	if err := r.driver.VerifyConnectivity(ctx); err != nil {
		target := r.driver.Target()
		return apperrors.NewGraphConnectionFailed(target.String(), err)
	}
	return nil
}

// withRetry runs fn with a per-attempt timeout, retrying transient store
// errors up to maxRetries times. Permanent errors (malformed query, auth)
// are returned on the first attempt.
func (r *Repository) withRetry(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return apperrors.NewContextCancelled(operation, ctx.Err())
			case <-time.After(retryBackoff(attempt)):
			}
			r.logger.Warn("Retrying graph operation",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.queryTimeout)
		err = fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		if !neo4j.IsRetryable(err) {
			break
		}
	}

	if neo4j.IsConnectivityError(err) {
		target := r.driver.Target()
		return apperrors.NewGraphConnectionFailed(target.String(), err)
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func retryBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * 250 * time.Millisecond
}
