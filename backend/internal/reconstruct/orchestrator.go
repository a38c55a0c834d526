package reconstruct

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"threadgraph/backend/internal/graph"
	apperrors "threadgraph/backend/pkg/errors"
	"threadgraph/backend/pkg/logger"
)

// Graph is the store surface thread reconstruction needs. *graph.Repository
// satisfies it; tests substitute an in-memory fake.
type Graph interface {
	CountContent(ctx context.Context) (int64, error)
	ListReplyRefs(ctx context.Context, skip, limit int) ([]graph.ContentRef, error)
	ListThreadRefs(ctx context.Context, skip, limit int) ([]graph.ContentRef, error)
	ResolveReference(ctx context.Context, selfID, reference, fragment string) ([]string, error)
	MergeReplyEdge(ctx context.Context, childID, parentID string) (bool, error)
	MergeThreadEdge(ctx context.Context, commentID, threadID string) (bool, error)
}

// Outcome aggregates the counts of one reconstruction run
type Outcome struct {
	RunID              string        `json:"run_id"`
	ReplyRefs          int           `json:"reply_refs"`
	ThreadRefs         int           `json:"thread_refs"`
	ReplyEdgesCreated  int           `json:"reply_edges_created"`
	ThreadEdgesCreated int           `json:"thread_edges_created"`
	Ambiguous          int           `json:"ambiguous"`
	Failed             int           `json:"failed"`
	Duration           time.Duration `json:"duration"`
}

// Orchestrator runs the reply and thread passes over the full content
// population. Each pass pages through the nodes carrying a usable reference
// and fans the normalize-resolve-materialize work out to a bounded worker
// pool. Materialization is idempotent, so partial progress from an aborted
// run is safe and re-running is always correct.
type Orchestrator struct {
	store     Graph
	logger    *zap.Logger
	workers   int
	batchSize int
}

// NewOrchestrator creates an orchestrator with the given worker pool size
// and listing page size
func NewOrchestrator(store Graph, workers, batchSize int) *Orchestrator {
	if workers < 1 {
		workers = 8
	}
	if batchSize < 1 {
		batchSize = 1000
	}
	return &Orchestrator{
		store:     store,
		logger:    logger.Get(),
		workers:   workers,
		batchSize: batchSize,
	}
}

// passConfig wires one pass to its reference listing and edge materializer
type passConfig struct {
	name     string
	prefixes []string
	list     func(ctx context.Context, skip, limit int) ([]graph.ContentRef, error)
	merge    func(ctx context.Context, fromID, toID string) (bool, error)
}

type passResult struct {
	refs      int
	created   int
	ambiguous int
	failed    int
}

// Run executes the reply pass followed by the thread pass and returns the
// aggregated counts. A failure aborts the run; edges already materialized
// remain in place.
func (o *Orchestrator) Run(ctx context.Context) (*Outcome, error) {
	runID := uuid.NewString()
	log := o.logger.With(zap.String("run_id", runID))
	started := time.Now()

	total, err := o.store.CountContent(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("Starting thread reconstruction",
		zap.Int64("content_nodes", total),
		zap.Int("workers", o.workers),
		zap.Int("batch_size", o.batchSize),
	)

	reply, err := o.runPass(ctx, log, passConfig{
		name:     "reply",
		prefixes: ReplyRefPrefixes,
		list:     o.store.ListReplyRefs,
		merge:    o.store.MergeReplyEdge,
	})
	if err != nil {
		return nil, err
	}

	thread, err := o.runPass(ctx, log, passConfig{
		name:     "thread",
		prefixes: ThreadRefPrefixes,
		list:     o.store.ListThreadRefs,
		merge:    o.store.MergeThreadEdge,
	})
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		RunID:              runID,
		ReplyRefs:          reply.refs,
		ThreadRefs:         thread.refs,
		ReplyEdgesCreated:  reply.created,
		ThreadEdgesCreated: thread.created,
		Ambiguous:          reply.ambiguous + thread.ambiguous,
		Failed:             reply.failed + thread.failed,
		Duration:           time.Since(started),
	}

	log.Info("Thread reconstruction completed",
		zap.Int("reply_edges_created", outcome.ReplyEdgesCreated),
		zap.Int("thread_edges_created", outcome.ThreadEdgesCreated),
		zap.Int("ambiguous", outcome.Ambiguous),
		zap.Int("failed", outcome.Failed),
		zap.Duration("duration", outcome.Duration),
	)
	return outcome, nil
}

func (o *Orchestrator) runPass(ctx context.Context, log *zap.Logger, pass passConfig) (*passResult, error) {
	resolver := newCachedResolver(o.store)

	var refs, created, ambiguous, failed atomic.Int64

	skip := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewContextCancelled(pass.name+" pass", err)
		}

		batch, err := pass.list(ctx, skip, o.batchSize)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.workers)
		for _, ref := range batch {
			ref := ref
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return apperrors.NewContextCancelled(pass.name+" pass", err)
				}
				refs.Add(1)

				n, amb, err := o.processRef(gctx, log, resolver, pass, ref)
				if err != nil {
					// Losing the store aborts the pass; anything else is
					// logged and the pass moves on to the next node.
					if apperrors.IsConnectionFailure(err) {
						return err
					}
					failed.Add(1)
					log.Warn("Node skipped",
						zap.String("pass", pass.name),
						zap.String("node_id", ref.ID),
						zap.Error(err),
					)
					return nil
				}

				created.Add(int64(n))
				if amb {
					ambiguous.Add(1)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if len(batch) < o.batchSize {
			break
		}
		skip += o.batchSize

		log.Info("Pass progress",
			zap.String("pass", pass.name),
			zap.Int("processed", skip),
			zap.Int64("edges_created", created.Load()),
		)
	}

	result := &passResult{
		refs:      int(refs.Load()),
		created:   int(created.Load()),
		ambiguous: int(ambiguous.Load()),
		failed:    int(failed.Load()),
	}

	log.Info("Pass completed",
		zap.String("pass", pass.name),
		zap.Int("refs", result.refs),
		zap.Int("edges_created", result.created),
		zap.Int("ambiguous", result.ambiguous),
		zap.Int("failed", result.failed),
	)
	return result, nil
}

// processRef normalizes one reference, resolves its candidates, and
// materializes an edge per candidate. It returns the number of edges
// actually created and whether the reference was ambiguous.
func (o *Orchestrator) processRef(ctx context.Context, log *zap.Logger, resolver *cachedResolver, pass passConfig, ref graph.ContentRef) (int, bool, error) {
	fragment := NormalizeReference(ref.Ref, pass.prefixes)
	if fragment == "" {
		return 0, false, nil
	}

	candidates, err := resolver.resolve(ctx, ref.ID, ref.Ref, fragment)
	if err != nil {
		return 0, false, apperrors.NewGraphQueryFailed("resolve "+pass.name+" reference", ref.ID, err)
	}
	if len(candidates) == 0 {
		return 0, false, nil
	}

	// Several nodes can share the fragment prefix (chunked content does this
	// routinely). The edge goes to every candidate; the warning keeps the
	// fan-out visible for review.
	ambiguous := len(candidates) > 1
	if ambiguous {
		log.Warn("Ambiguous reference, materializing all candidates",
			zap.String("pass", pass.name),
			zap.Error(apperrors.NewAmbiguousReference(ref.ID, fragment, candidates)),
		)
	}

	createdEdges := 0
	for _, candidate := range candidates {
		created, err := pass.merge(ctx, ref.ID, candidate)
		if err != nil {
			return createdEdges, ambiguous, apperrors.NewGraphQueryFailed("merge "+pass.name+" edge", ref.ID, err)
		}
		if created {
			createdEdges++
		}
	}
	return createdEdges, ambiguous, nil
}
