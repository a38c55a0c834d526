package maintenance

import (
	"context"
	"time"

	"go.uber.org/zap"

	"threadgraph/backend/internal/indexes"
	"threadgraph/backend/internal/reconstruct"
	apperrors "threadgraph/backend/pkg/errors"
	"threadgraph/backend/pkg/logger"
)

// Service exposes the batch maintenance operations. Every method converts
// store-layer errors into a structured result; raw error types never cross
// this boundary.
type Service struct {
	orchestrator *reconstruct.Orchestrator
	indexes      *indexes.Manager
	indexNames   []string
	logger       *zap.Logger
}

// NewService wires the reconstruction orchestrator and index manager into
// one maintenance surface
func NewService(orchestrator *reconstruct.Orchestrator, manager *indexes.Manager, definitions []indexes.Definition) *Service {
	names := make([]string, 0, len(definitions))
	for _, def := range definitions {
		names = append(names, def.Name)
	}
	return &Service{
		orchestrator: orchestrator,
		indexes:      manager,
		indexNames:   names,
		logger:       logger.Get(),
	}
}

// ReconstructionResult is the outward-facing outcome of a reconstruction run
type ReconstructionResult struct {
	Success            bool   `json:"success"`
	RunID              string `json:"run_id,omitempty"`
	ReplyEdgesCreated  int    `json:"reply_edges_created"`
	ThreadEdgesCreated int    `json:"thread_edges_created"`
	Ambiguous          int    `json:"ambiguous"`
	Failed             int    `json:"failed"`
	Duration           string `json:"duration,omitempty"`
	Cause              string `json:"cause,omitempty"`
}

// IndexResult is the outward-facing outcome of index maintenance
type IndexResult struct {
	Success bool     `json:"success"`
	Indexes []string `json:"indexes,omitempty"`
	Cause   string   `json:"cause,omitempty"`
}

// RunThreadReconstruction executes a full reply-and-thread reconstruction
// run and reports the aggregated counts
func (s *Service) RunThreadReconstruction(ctx context.Context) *ReconstructionResult {
	outcome, err := s.orchestrator.Run(ctx)
	if err != nil {
		s.logger.Error("Thread reconstruction failed",
			zap.Bool("retryable", apperrors.IsRetryable(err)),
			zap.Error(err),
		)
		return &ReconstructionResult{Success: false, Cause: err.Error()}
	}

	return &ReconstructionResult{
		Success:            true,
		RunID:              outcome.RunID,
		ReplyEdgesCreated:  outcome.ReplyEdgesCreated,
		ThreadEdgesCreated: outcome.ThreadEdgesCreated,
		Ambiguous:          outcome.Ambiguous,
		Failed:             outcome.Failed,
		Duration:           outcome.Duration.Round(time.Millisecond).String(),
	}
}

// RecreateSimilarityIndexes asserts the managed vector indexes, optionally
// dropping them first. Dropping is the resolution for an index whose stored
// configuration no longer matches the declared one.
func (s *Service) RecreateSimilarityIndexes(ctx context.Context, dropExisting bool) *IndexResult {
	if err := s.indexes.RecreateAll(ctx, dropExisting); err != nil {
		cause := err.Error()
		if apperrors.IsIndexConflict(err) {
			cause += " (re-run with drop_existing to replace the index)"
		}
		s.logger.Error("Index maintenance failed", zap.Error(err))
		return &IndexResult{Success: false, Cause: cause}
	}

	return &IndexResult{Success: true, Indexes: s.indexNames}
}
