package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"threadgraph/backend/internal/graph"
	"threadgraph/backend/internal/indexes"
	"threadgraph/backend/internal/maintenance"
	"threadgraph/backend/internal/reconstruct"
	"threadgraph/backend/pkg/config"
	"threadgraph/backend/pkg/logger"
)

// Rebuilds the REPLIES_TO and BELONGS_TO_THREAD edges for every content
// node carrying a usable reference. Safe to re-run at any time; exits
// non-zero when the run fails.
func main() {
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	driver, err := graph.NewDriver(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := graph.NewRepository(driver, cfg.Neo4jDatabase, cfg.QueryTimeout, cfg.MaxRetries)
	if err := repo.Verify(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	// The id range index backs the per-node prefix searches; without it a
	// full run degrades to label scans.
	if err := repo.EnsureLookupIndexes(ctx); err != nil {
		log.Warn("Could not ensure lookup indexes, continuing", zap.Error(err))
	}

	orchestrator := reconstruct.NewOrchestrator(repo, cfg.ReconstructionWorkers, cfg.BatchSize)
	definitions := indexes.Definitions(cfg.EmbeddingDimensions, cfg.SimilarityFunction)
	manager := indexes.NewManager(repo, definitions)
	svc := maintenance.NewService(orchestrator, manager, definitions)

	result := svc.RunThreadReconstruction(ctx)
	if !result.Success {
		log.Fatal("Thread reconstruction failed", zap.String("cause", result.Cause))
	}

	log.Info("Thread reconstruction succeeded",
		zap.String("run_id", result.RunID),
		zap.Int("reply_edges_created", result.ReplyEdgesCreated),
		zap.Int("thread_edges_created", result.ThreadEdgesCreated),
		zap.Int("ambiguous", result.Ambiguous),
		zap.Int("failed", result.Failed),
		zap.String("duration", result.Duration),
	)
}
