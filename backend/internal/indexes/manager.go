package indexes

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"threadgraph/backend/internal/graph"
	apperrors "threadgraph/backend/pkg/errors"
	"threadgraph/backend/pkg/logger"
)

// Definition declares one managed vector index
type Definition struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Property   string `json:"property"`
	Dimensions int    `json:"dimensions"`
	Similarity string `json:"similarity"`
}

func (d Definition) configString() string {
	return fmt.Sprintf("%s.%s %dd %s", d.Label, d.Property, d.Dimensions, d.Similarity)
}

// Definitions returns the two indexes this system manages: one over content
// embeddings, one over topic embeddings. Both share the dimensionality and
// similarity function of the embedding model in use.
func Definitions(dimensions int, similarity string) []Definition {
	if dimensions < 1 {
		dimensions = 1024
	}
	if similarity == "" {
		similarity = "cosine"
	}
	return []Definition{
		{
			Name:       graph.ContentIndexName,
			Label:      graph.ContentLabel,
			Property:   graph.ContentEmbeddingProperty,
			Dimensions: dimensions,
			Similarity: similarity,
		},
		{
			Name:       graph.TopicIndexName,
			Label:      graph.TopicLabel,
			Property:   graph.TopicEmbeddingProperty,
			Dimensions: dimensions,
			Similarity: similarity,
		},
	}
}

// Store is the store surface index management needs. *graph.Repository
// satisfies it.
type Store interface {
	EnsureVectorIndex(ctx context.Context, name, label, property string, dimensions int, similarity string) error
	VectorIndexConfig(ctx context.Context, name string) (*graph.VectorIndexInfo, error)
	DropIndex(ctx context.Context, name string) error
	EnsureLookupIndexes(ctx context.Context) error
}

// Manager keeps the managed similarity indexes in the declared state
type Manager struct {
	store       Store
	logger      *zap.Logger
	definitions []Definition
}

// NewManager creates a manager for the given index definitions
func NewManager(store Store, definitions []Definition) *Manager {
	return &Manager{
		store:       store,
		logger:      logger.Get(),
		definitions: definitions,
	}
}

// EnsureAll asserts the lookup indexes and every managed vector index.
// Indexes already present with a matching configuration are left alone. An
// existing index whose configuration differs from the declared one is a
// conflict: the caller resolves it explicitly with RecreateAll and
// dropExisting, never by silent replacement.
func (m *Manager) EnsureAll(ctx context.Context) error {
	if err := m.store.EnsureLookupIndexes(ctx); err != nil {
		return err
	}

	for _, def := range m.definitions {
		existing, err := m.store.VectorIndexConfig(ctx, def.Name)
		if err != nil {
			return err
		}

		if existing != nil {
			if conflicts(def, existing) {
				return apperrors.NewIndexConfigConflict(def.Name, def.configString(), existingConfig(existing))
			}
			m.logger.Debug("Vector index already present",
				zap.String("name", def.Name),
				zap.String("state", existing.State),
			)
			continue
		}

		if err := m.store.EnsureVectorIndex(ctx, def.Name, def.Label, def.Property, def.Dimensions, def.Similarity); err != nil {
			return err
		}
	}
	return nil
}

// RecreateAll re-asserts the managed indexes. With dropExisting set, every
// managed index is dropped first; this is the documented path out of a
// configuration conflict.
func (m *Manager) RecreateAll(ctx context.Context, dropExisting bool) error {
	if dropExisting {
		for _, def := range m.definitions {
			if err := m.store.DropIndex(ctx, def.Name); err != nil {
				return err
			}
		}
	}
	return m.EnsureAll(ctx)
}

func conflicts(def Definition, existing *graph.VectorIndexInfo) bool {
	if existing.Dimensions != def.Dimensions {
		return true
	}
	if !strings.EqualFold(existing.Similarity, def.Similarity) {
		return true
	}
	// Label and property are only comparable when the store reported them
	if existing.Label != "" && existing.Label != def.Label {
		return true
	}
	if existing.Property != "" && existing.Property != def.Property {
		return true
	}
	return false
}

func existingConfig(info *graph.VectorIndexInfo) string {
	return fmt.Sprintf("%s.%s %dd %s", info.Label, info.Property, info.Dimensions, info.Similarity)
}
