package indexes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadgraph/backend/internal/graph"
	apperrors "threadgraph/backend/pkg/errors"
)

// fakeStore keeps index state in memory and records every mutation
type fakeStore struct {
	indexes       map[string]*graph.VectorIndexInfo
	ensured       []string
	dropped       []string
	lookupEnsured bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{indexes: make(map[string]*graph.VectorIndexInfo)}
}

func (f *fakeStore) EnsureVectorIndex(ctx context.Context, name, label, property string, dimensions int, similarity string) error {
	f.ensured = append(f.ensured, name)
	if _, ok := f.indexes[name]; !ok {
		f.indexes[name] = &graph.VectorIndexInfo{
			Name:       name,
			Label:      label,
			Property:   property,
			Dimensions: dimensions,
			Similarity: similarity,
			State:      "ONLINE",
		}
	}
	return nil
}

func (f *fakeStore) VectorIndexConfig(ctx context.Context, name string) (*graph.VectorIndexInfo, error) {
	return f.indexes[name], nil
}

func (f *fakeStore) DropIndex(ctx context.Context, name string) error {
	delete(f.indexes, name)
	f.dropped = append(f.dropped, name)
	return nil
}

func (f *fakeStore) EnsureLookupIndexes(ctx context.Context) error {
	f.lookupEnsured = true
	return nil
}

func TestDefinitionsDeclareBothManagedIndexes(t *testing.T) {
	defs := Definitions(1024, "cosine")

	require.Len(t, defs, 2)
	assert.Equal(t, graph.ContentIndexName, defs[0].Name)
	assert.Equal(t, graph.ContentLabel, defs[0].Label)
	assert.Equal(t, graph.ContentEmbeddingProperty, defs[0].Property)
	assert.Equal(t, graph.TopicIndexName, defs[1].Name)
	assert.Equal(t, graph.TopicLabel, defs[1].Label)
	assert.Equal(t, graph.TopicEmbeddingProperty, defs[1].Property)
}

func TestDefinitionsFallBackToModelDefaults(t *testing.T) {
	defs := Definitions(0, "")

	assert.Equal(t, 1024, defs[0].Dimensions)
	assert.Equal(t, "cosine", defs[0].Similarity)
}

func TestEnsureAllCreatesMissingIndexes(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, Definitions(1024, "cosine"))

	require.NoError(t, m.EnsureAll(context.Background()))

	assert.True(t, store.lookupEnsured, "lookup indexes are asserted before the vector indexes")
	assert.Equal(t, []string{graph.ContentIndexName, graph.TopicIndexName}, store.ensured)
	assert.Equal(t, 1024, store.indexes[graph.ContentIndexName].Dimensions)
	assert.Equal(t, "cosine", store.indexes[graph.TopicIndexName].Similarity)
}

func TestEnsureAllLeavesMatchingIndexesAlone(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, Definitions(1024, "cosine"))

	require.NoError(t, m.EnsureAll(context.Background()))
	require.NoError(t, m.EnsureAll(context.Background()))

	assert.Len(t, store.ensured, 2, "a matching index must not be re-created")
	assert.Empty(t, store.dropped)
}

func TestEnsureAllToleratesCaseDifferentSimilarity(t *testing.T) {
	store := newFakeStore()
	store.indexes[graph.ContentIndexName] = &graph.VectorIndexInfo{
		Name:       graph.ContentIndexName,
		Label:      graph.ContentLabel,
		Property:   graph.ContentEmbeddingProperty,
		Dimensions: 1024,
		Similarity: "COSINE",
		State:      "ONLINE",
	}
	m := NewManager(store, Definitions(1024, "cosine"))

	require.NoError(t, m.EnsureAll(context.Background()))
	assert.Equal(t, []string{graph.TopicIndexName}, store.ensured)
}

func TestEnsureAllRejectsConflictingConfiguration(t *testing.T) {
	store := newFakeStore()
	store.indexes[graph.ContentIndexName] = &graph.VectorIndexInfo{
		Name:       graph.ContentIndexName,
		Label:      graph.ContentLabel,
		Property:   graph.ContentEmbeddingProperty,
		Dimensions: 768,
		Similarity: "cosine",
		State:      "ONLINE",
	}
	m := NewManager(store, Definitions(1024, "cosine"))

	err := m.EnsureAll(context.Background())
	require.Error(t, err)

	assert.True(t, apperrors.IsIndexConflict(err))
	assert.Contains(t, err.Error(), "768")
	assert.Contains(t, err.Error(), "1024")
	assert.Empty(t, store.ensured, "a conflicting index must never be silently replaced")
	assert.Empty(t, store.dropped)
}

func TestRecreateAllDropsBeforeEnsuring(t *testing.T) {
	store := newFakeStore()
	store.indexes[graph.ContentIndexName] = &graph.VectorIndexInfo{
		Name:       graph.ContentIndexName,
		Dimensions: 768,
		Similarity: "cosine",
	}
	m := NewManager(store, Definitions(1024, "cosine"))

	require.NoError(t, m.RecreateAll(context.Background(), true))

	assert.Equal(t, []string{graph.ContentIndexName, graph.TopicIndexName}, store.dropped)
	assert.Equal(t, 1024, store.indexes[graph.ContentIndexName].Dimensions)
}

func TestRecreateAllWithoutDropStillConflicts(t *testing.T) {
	store := newFakeStore()
	store.indexes[graph.ContentIndexName] = &graph.VectorIndexInfo{
		Name:       graph.ContentIndexName,
		Dimensions: 768,
		Similarity: "cosine",
	}
	m := NewManager(store, Definitions(1024, "cosine"))

	err := m.RecreateAll(context.Background(), false)
	require.Error(t, err)
	assert.True(t, apperrors.IsIndexConflict(err))
}
