package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Similarity Operations
// ============================================================================

// QuerySimilarContent finds the k content nodes whose embeddings are nearest
// to the given query vector, using the content vector index
func (r *Repository) QuerySimilarContent(ctx context.Context, embedding []float32, k int) ([]SimilarContent, error) {
	if k < 1 {
		k = 10
	}

	var hits []SimilarContent
	err := r.withRetry(ctx, "query similar content", func(ctx context.Context) error {
		session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: r.database})
		defer session.Close(ctx)

		result, err := session.Run(ctx, querySimilarContentQuery, map[string]interface{}{
			"indexName": ContentIndexName,
			"k":         k,
			"embedding": embedding,
		})
		if err != nil {
			return err
		}

		hits = nil
		for result.Next(ctx) {
			record := result.Record()
			hits = append(hits, SimilarContent{
				ID:    getStringFromRecord(record, "id"),
				Text:  getStringFromRecord(record, "text"),
				Score: getFloat64FromRecord(record, "score"),
			})
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return hits, nil
}

// QuerySimilarTopics finds the k topics whose embeddings are nearest to the
// given query vector, using the topic vector index
func (r *Repository) QuerySimilarTopics(ctx context.Context, embedding []float32, k int) ([]SimilarTopic, error) {
	if k < 1 {
		k = 10
	}

	var hits []SimilarTopic
	err := r.withRetry(ctx, "query similar topics", func(ctx context.Context) error {
		session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: r.database})
		defer session.Close(ctx)

		result, err := session.Run(ctx, querySimilarTopicsQuery, map[string]interface{}{
			"indexName": TopicIndexName,
			"k":         k,
			"embedding": embedding,
		})
		if err != nil {
			return err
		}

		hits = nil
		for result.Next(ctx) {
			record := result.Record()
			hits = append(hits, SimilarTopic{
				Name:  getStringFromRecord(record, "name"),
				Score: getFloat64FromRecord(record, "score"),
			})
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return hits, nil
}
