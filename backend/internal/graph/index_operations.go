package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Index Operations
// ============================================================================

// EnsureVectorIndex declares a vector index, creating it when absent. The
// statement is IF NOT EXISTS, so re-asserting an existing index with the same
// name is a no-op regardless of its configuration; callers that care about
// configuration drift check VectorIndexConfig first.
func (r *Repository) EnsureVectorIndex(ctx context.Context, name, label, property string, dimensions int, similarity string) error {
	query := fmt.Sprintf(createVectorIndexQueryFmt, name, label, property, dimensions, similarity)

	err := r.withRetry(ctx, "ensure vector index "+name, func(ctx context.Context) error {
		session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: r.database})
		defer session.Close(ctx)

		result, err := session.Run(ctx, query, nil)
		if err != nil {
			return err
		}
		_, err = result.Consume(ctx)
		return err
	})
	if err != nil {
		return err
	}

	r.logger.Info("Vector index ensured",
		zap.String("name", name),
		zap.String("label", label),
		zap.String("property", property),
		zap.Int("dimensions", dimensions),
		zap.String("similarity", similarity),
	)
	return nil
}

// VectorIndexConfig reports the stored configuration of a vector index, or
// nil when no index with that name exists
func (r *Repository) VectorIndexConfig(ctx context.Context, name string) (*VectorIndexInfo, error) {
	var info *VectorIndexInfo
	err := r.withRetry(ctx, "inspect vector index "+name, func(ctx context.Context) error {
		session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: r.database})
		defer session.Close(ctx)

		result, err := session.Run(ctx, showVectorIndexQuery, map[string]interface{}{
			"name": name,
		})
		if err != nil {
			return err
		}

		info = nil
		if !result.Next(ctx) {
			return result.Err()
		}
		record := result.Record()

		labels := getStringSliceFromRecord(record, "labelsOrTypes")
		properties := getStringSliceFromRecord(record, "properties")
		options := getMapFromRecord(record, "options")
		indexConfig, _ := options["indexConfig"].(map[string]interface{})

		info = &VectorIndexInfo{
			Name:       getStringFromRecord(record, "name"),
			Dimensions: getIntFromMap(indexConfig, "vector.dimensions", 0),
			Similarity: getStringFromMap(indexConfig, "vector.similarity_function", ""),
			State:      getStringFromRecord(record, "state"),
		}
		if len(labels) > 0 {
			info.Label = labels[0]
		}
		if len(properties) > 0 {
			info.Property = properties[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// DropIndex removes an index by name; dropping a missing index is a no-op
func (r *Repository) DropIndex(ctx context.Context, name string) error {
	query := fmt.Sprintf(dropIndexQueryFmt, name)

	err := r.withRetry(ctx, "drop index "+name, func(ctx context.Context) error {
		session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: r.database})
		defer session.Close(ctx)

		result, err := session.Run(ctx, query, nil)
		if err != nil {
			return err
		}
		_, err = result.Consume(ctx)
		return err
	})
	if err != nil {
		return err
	}

	r.logger.Info("Index dropped", zap.String("name", name))
	return nil
}

// EnsureLookupIndexes declares the range index backing id prefix search.
// Reference resolution runs one STARTS WITH query per node, so this index is
// what keeps full reconstruction runs tractable on large stores.
func (r *Repository) EnsureLookupIndexes(ctx context.Context) error {
	err := r.withRetry(ctx, "ensure lookup indexes", func(ctx context.Context) error {
		session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: r.database})
		defer session.Close(ctx)

		result, err := session.Run(ctx, contentIDIndexQuery, nil)
		if err != nil {
			return err
		}
		_, err = result.Consume(ctx)
		return err
	})
	if err != nil {
		return err
	}

	r.logger.Debug("Lookup indexes ensured")
	return nil
}
