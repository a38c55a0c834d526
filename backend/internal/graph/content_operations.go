package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Content and Relationship Operations
// ============================================================================

// CountContent returns the number of content nodes in the store
func (r *Repository) CountContent(ctx context.Context) (int64, error) {
	var total int64
	err := r.withRetry(ctx, "count content", func(ctx context.Context) error {
		session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: r.database})
		defer session.Close(ctx)

		result, err := session.Run(ctx, countContentQuery, nil)
		if err != nil {
			return err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return err
		}
		total = getInt64FromRecord(record, "total")
		return nil
	})
	return total, err
}

// ListReplyRefs returns one page of content nodes carrying a usable parent
// reference (non-empty and different from the node's own id), ordered by id
func (r *Repository) ListReplyRefs(ctx context.Context, skip, limit int) ([]ContentRef, error) {
	return r.listRefs(ctx, "list reply references", listReplyRefsQuery, skip, limit)
}

// ListThreadRefs returns one page of content nodes carrying a usable thread
// reference, ordered by id
func (r *Repository) ListThreadRefs(ctx context.Context, skip, limit int) ([]ContentRef, error) {
	return r.listRefs(ctx, "list thread references", listThreadRefsQuery, skip, limit)
}

func (r *Repository) listRefs(ctx context.Context, operation, query string, skip, limit int) ([]ContentRef, error) {
	if limit < 1 {
		limit = 1000
	}
	if skip < 0 {
		skip = 0
	}

	var refs []ContentRef
	err := r.withRetry(ctx, operation, func(ctx context.Context) error {
		session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: r.database})
		defer session.Close(ctx)

		result, err := session.Run(ctx, query, map[string]interface{}{
			"skip":  skip,
			"limit": limit,
		})
		if err != nil {
			return err
		}

		refs = nil
		for result.Next(ctx) {
			record := result.Record()
			refs = append(refs, ContentRef{
				ID:  getStringFromRecord(record, "id"),
				Ref: getStringFromRecord(record, "ref"),
			})
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// ResolveReference finds candidate nodes for a reference. A node whose id
// equals the raw reference wins outright; otherwise every node whose id
// starts with the fragment followed by the id separator qualifies. The node
// itself is never a candidate. Results are ordered by id.
func (r *Repository) ResolveReference(ctx context.Context, selfID, reference, fragment string) ([]string, error) {
	if fragment == "" {
		return nil, nil
	}

	var candidates []string
	err := r.withRetry(ctx, "resolve reference", func(ctx context.Context) error {
		session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: r.database})
		defer session.Close(ctx)

		result, err := session.Run(ctx, resolveReferenceQuery, map[string]interface{}{
			"selfID":    selfID,
			"reference": reference,
			"prefix":    fragment + IDSeparator,
		})
		if err != nil {
			return err
		}

		candidates = nil
		for result.Next(ctx) {
			candidates = append(candidates, getStringFromRecord(result.Record(), "id"))
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}

	// An exact id hit means the reference names a real node; prefer it over
	// prefix fan-out so mixed id schemes resolve deterministically.
	for _, id := range candidates {
		if id == reference {
			return []string{id}, nil
		}
	}
	return candidates, nil
}

// MergeReplyEdge creates a REPLIES_TO edge from child to parent if one does
// not already exist. Returns whether an edge was actually created. A
// self-referencing pair is a no-op, not an error.
func (r *Repository) MergeReplyEdge(ctx context.Context, childID, parentID string) (bool, error) {
	return r.mergeEdge(ctx, "merge reply edge", mergeReplyEdgeQuery, ReplyRelationship, map[string]interface{}{
		"childID":  childID,
		"parentID": parentID,
	}, childID, parentID)
}

// MergeThreadEdge creates a BELONGS_TO_THREAD edge from comment to thread
// root if one does not already exist. Same contract as MergeReplyEdge.
func (r *Repository) MergeThreadEdge(ctx context.Context, commentID, threadID string) (bool, error) {
	return r.mergeEdge(ctx, "merge thread edge", mergeThreadEdgeQuery, ThreadRelationship, map[string]interface{}{
		"commentID": commentID,
		"threadID":  threadID,
	}, commentID, threadID)
}

func (r *Repository) mergeEdge(ctx context.Context, operation, query, relType string, params map[string]interface{}, fromID, toID string) (bool, error) {
	if fromID == toID {
		return false, nil
	}

	var created bool
	err := r.withRetry(ctx, operation, func(ctx context.Context) error {
		session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: r.database})
		defer session.Close(ctx)

		result, err := session.Run(ctx, query, params)
		if err != nil {
			return err
		}
		summary, err := result.Consume(ctx)
		if err != nil {
			return err
		}
		created = summary.Counters().RelationshipsCreated() > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	if created {
		r.logger.Debug("Edge created",
			zap.String("type", relType),
			zap.String("from", fromID),
			zap.String("to", toID),
		)
	}
	return created, nil
}
