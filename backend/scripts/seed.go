package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"threadgraph/backend/internal/graph"
	"threadgraph/backend/pkg/config"
	"threadgraph/backend/pkg/logger"
)

type contentSeed struct {
	ID       string
	ParentID string
	LinkID   string
	Text     string
}

// contentFixture mixes the two id conventions found in real exports: a
// fullname-keyed submission with a comment chain, and a chunked submission
// whose pieces carry the chunk suffix. The chunked one makes the resolver's
// fan-out visible during a reconstruction run.
var contentFixture = []contentSeed{
	{ID: "t3_sample1", Text: "How do vector indexes handle dimension mismatches?"},
	{ID: "t1_sample1a", ParentID: "t3_sample1", LinkID: "t3_sample1", Text: "They reject writes whose vectors do not match the declared dimensionality."},
	{ID: "t1_sample1b", ParentID: "t1_sample1a", LinkID: "t3_sample1", Text: "Which is why the index config has to be treated as immutable."},
	{ID: "sample2_1", Text: "Long post about graph modelling, part one."},
	{ID: "sample2_2", Text: "Long post about graph modelling, part two."},
	{ID: "t1_sample2a", ParentID: "t3_sample2", LinkID: "t3_sample2", Text: "Great writeup, the chunking makes it hard to link back though."},
}

var topicFixture = []string{
	"databases",
	"vector search",
	"graph algorithms",
}

// Seeds a small discussion fixture so the reconstruction and index commands
// have content to work against. Safe to re-run; nodes are merged by id.
//
//	go run backend/scripts/seed.go [-reset]
func main() {
	reset := flag.Bool("reset", false, "Delete existing reply and thread edges before seeding")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	driver, err := graph.NewDriver(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	ctx := context.Background()
	defer driver.Close(ctx)

	// Verify connection
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: cfg.Neo4jDatabase,
	})
	defer session.Close(ctx)

	if *reset {
		log.Info("Deleting reply and thread edges...")
		if err := deleteManagedEdges(ctx, session); err != nil {
			log.Fatal("Failed to delete edges", zap.Error(err))
		}
	}

	log.Info("Seeding content nodes...")
	for _, seed := range contentFixture {
		if err := mergeContent(ctx, session, seed); err != nil {
			log.Fatal("Failed to seed content node", zap.String("id", seed.ID), zap.Error(err))
		}
	}

	log.Info("Seeding topic nodes...")
	for _, name := range topicFixture {
		if err := mergeTopic(ctx, session, name); err != nil {
			log.Fatal("Failed to seed topic node", zap.String("name", name), zap.Error(err))
		}
	}

	log.Info("Seeding completed",
		zap.Int("content_nodes", len(contentFixture)),
		zap.Int("topic_nodes", len(topicFixture)),
	)
	log.Info("Run cmd/reconstruct to materialize the thread edges")
}

func deleteManagedEdges(ctx context.Context, session neo4j.SessionWithContext) error {
	query := "MATCH ()-[r:" + graph.ReplyRelationship + "|" + graph.ThreadRelationship + "]->() DELETE r"
	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

func mergeContent(ctx context.Context, session neo4j.SessionWithContext, seed contentSeed) error {
	query := `
		MERGE (c:` + graph.ContentLabel + ` {id: $id})
		SET c.parent_id = $parent_id,
		    c.link_id = $link_id,
		    c.text = $text
	`
	result, err := session.Run(ctx, query, map[string]interface{}{
		"id":        seed.ID,
		"parent_id": seed.ParentID,
		"link_id":   seed.LinkID,
		"text":      seed.Text,
	})
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

func mergeTopic(ctx context.Context, session neo4j.SessionWithContext, name string) error {
	query := "MERGE (t:" + graph.TopicLabel + " {name: $name})"
	result, err := session.Run(ctx, query, map[string]interface{}{"name": name})
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}
