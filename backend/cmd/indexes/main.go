package main

import (
	"context"
	"flag"
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

// Asserts the managed similarity indexes (content and topic embeddings).
// With -drop, existing indexes are removed first, which is how a
// configuration conflict is resolved.
func main() {
	dropExisting := flag.Bool("drop", false, "drop the managed vector indexes before recreating them")
	flag.Parse()

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

	orchestrator := reconstruct.NewOrchestrator(repo, cfg.ReconstructionWorkers, cfg.BatchSize)
	definitions := indexes.Definitions(cfg.EmbeddingDimensions, cfg.SimilarityFunction)
	manager := indexes.NewManager(repo, definitions)
	svc := maintenance.NewService(orchestrator, manager, definitions)

	result := svc.RecreateSimilarityIndexes(ctx, *dropExisting)
	if !result.Success {
		log.Fatal("Index maintenance failed", zap.String("cause", result.Cause))
	}

	log.Info("Similarity indexes ensured",
		zap.Strings("indexes", result.Indexes),
		zap.Bool("dropped_first", *dropExisting),
	)
}
