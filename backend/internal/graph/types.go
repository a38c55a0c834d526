package graph

// ============================================================================
// Graph Types
// ============================================================================

// Node labels and relationship types used by the reconstruction core. The
// names match what the ingestion pipeline writes, so this module can operate
// on existing stores.
const (
	ContentLabel = "RedditContent"
	TopicLabel   = "Topic"

	ReplyRelationship  = "REPLIES_TO"
	ThreadRelationship = "BELONGS_TO_THREAD"

	ContentEmbeddingProperty = "content_embedding"
	TopicEmbeddingProperty   = "embedding"

	ContentIndexName = "reddit_content_embeddings"
	TopicIndexName   = "topic_embeddings"

	// IDSeparator joins the discriminator and local suffix inside node ids.
	// Reference resolution anchors prefix matches at this separator.
	IDSeparator = "_"
)

// ContentRef pairs a content node id with one raw reference stored on it
type ContentRef struct {
	ID  string `json:"id"`
	Ref string `json:"ref"`
}

// VectorIndexInfo describes a vector index as reported by the store
type VectorIndexInfo struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Property   string `json:"property"`
	Dimensions int    `json:"dimensions"`
	Similarity string `json:"similarity"`
	State      string `json:"state"`
}

// SimilarContent is a nearest-neighbor hit over content embeddings
type SimilarContent struct {
	ID    string  `json:"id"`
	Text  string  `json:"text,omitempty"`
	Score float64 `json:"score"`
}

// SimilarTopic is a nearest-neighbor hit over topic embeddings
type SimilarTopic struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}
