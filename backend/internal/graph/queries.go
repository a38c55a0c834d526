package graph

// Cypher used by the repository. Reference resolution is anchored at the id
// separator so a fragment "abc" matches "abc_1" but never "abcd_1"; an exact
// match on the raw reference is also accepted for stores whose node ids keep
// the full reference form.
const (
	countContentQuery = `
		MATCH (c:RedditContent)
		RETURN count(c) AS total
	`

	listReplyRefsQuery = `
		MATCH (child:RedditContent)
		WHERE child.parent_id IS NOT NULL
		AND child.parent_id <> ""
		AND child.parent_id <> child.id
		RETURN child.id AS id, child.parent_id AS ref
		ORDER BY child.id
		SKIP $skip LIMIT $limit
	`

	listThreadRefsQuery = `
		MATCH (comment:RedditContent)
		WHERE comment.link_id IS NOT NULL
		AND comment.link_id <> ""
		AND comment.link_id <> comment.id
		RETURN comment.id AS id, comment.link_id AS ref
		ORDER BY comment.id
		SKIP $skip LIMIT $limit
	`

	resolveReferenceQuery = `
		MATCH (candidate:RedditContent)
		WHERE (candidate.id = $reference OR candidate.id STARTS WITH $prefix)
		AND candidate.id <> $selfID
		RETURN candidate.id AS id
		ORDER BY candidate.id
	`

	mergeReplyEdgeQuery = `
		MATCH (child:RedditContent {id: $childID})
		MATCH (parent:RedditContent {id: $parentID})
		WHERE child.id <> parent.id
		MERGE (child)-[:REPLIES_TO]->(parent)
	`

	mergeThreadEdgeQuery = `
		MATCH (comment:RedditContent {id: $commentID})
		MATCH (thread:RedditContent {id: $threadID})
		WHERE comment.id <> thread.id
		MERGE (comment)-[:BELONGS_TO_THREAD]->(thread)
	`

	showVectorIndexQuery = `
		SHOW VECTOR INDEXES YIELD name, labelsOrTypes, properties, options, state
		WHERE name = $name
		RETURN name, labelsOrTypes, properties, options, state
	`

	contentIDIndexQuery = `
		CREATE INDEX reddit_content_id IF NOT EXISTS
		FOR (c:RedditContent)
		ON (c.id)
	`

	querySimilarContentQuery = `
		CALL db.index.vector.queryNodes($indexName, $k, $embedding)
		YIELD node, score
		RETURN node.id AS id, coalesce(node.text, '') AS text, score
		ORDER BY score DESC
	`

	querySimilarTopicsQuery = `
		CALL db.index.vector.queryNodes($indexName, $k, $embedding)
		YIELD node, score
		RETURN coalesce(node.name, '') AS name, score
		ORDER BY score DESC
	`

	// Index names are schema identifiers and cannot be query parameters, so
	// these two are format strings completed by the index operations.
	createVectorIndexQueryFmt = `
		CREATE VECTOR INDEX %s IF NOT EXISTS
		FOR (n:%s)
		ON n.%s
		OPTIONS {
			indexConfig: {
				` + "`vector.dimensions`" + `: %d,
				` + "`vector.similarity_function`" + `: '%s'
			}
		}
	`

	dropIndexQueryFmt = `DROP INDEX %s IF EXISTS`
)
