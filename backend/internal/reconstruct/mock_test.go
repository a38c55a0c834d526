package reconstruct

import (
	"context"
	"sort"
	"strings"
	"sync"

	"threadgraph/backend/internal/graph"
)

// fakeNode carries the content node properties reconstruction reads
type fakeNode struct {
	ID        string
	ParentRef string
	ThreadRef string
}

// fakeGraph is an in-memory stand-in for the repository. Listing, resolution
// and merging follow the same rules as the store queries they replace.
type fakeGraph struct {
	mu          sync.Mutex
	nodes       []fakeNode
	replyEdges  map[[2]string]bool
	threadEdges map[[2]string]bool

	resolveCalls int
	failResolve  map[string]error // raw reference -> error to return
	listErr      error
}

func newFakeGraph(nodes ...fakeNode) *fakeGraph {
	return &fakeGraph{
		nodes:       nodes,
		replyEdges:  make(map[[2]string]bool),
		threadEdges: make(map[[2]string]bool),
		failResolve: make(map[string]error),
	}
}

func (f *fakeGraph) CountContent(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.nodes)), nil
}

func (f *fakeGraph) ListReplyRefs(ctx context.Context, skip, limit int) ([]graph.ContentRef, error) {
	return f.list(skip, limit, func(n fakeNode) string { return n.ParentRef })
}

func (f *fakeGraph) ListThreadRefs(ctx context.Context, skip, limit int) ([]graph.ContentRef, error) {
	return f.list(skip, limit, func(n fakeNode) string { return n.ThreadRef })
}

func (f *fakeGraph) list(skip, limit int, refOf func(fakeNode) string) ([]graph.ContentRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	var refs []graph.ContentRef
	for _, n := range f.nodes {
		ref := refOf(n)
		if ref == "" || ref == n.ID {
			continue
		}
		refs = append(refs, graph.ContentRef{ID: n.ID, Ref: ref})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })

	if skip >= len(refs) {
		return nil, nil
	}
	refs = refs[skip:]
	if limit < len(refs) {
		refs = refs[:limit]
	}
	return refs, nil
}

func (f *fakeGraph) ResolveReference(ctx context.Context, selfID, reference, fragment string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resolveCalls++
	if err, ok := f.failResolve[reference]; ok {
		return nil, err
	}
	if fragment == "" {
		return nil, nil
	}

	prefix := fragment + graph.IDSeparator
	var candidates []string
	for _, n := range f.nodes {
		if n.ID == selfID {
			continue
		}
		if n.ID == reference || strings.HasPrefix(n.ID, prefix) {
			candidates = append(candidates, n.ID)
		}
	}
	sort.Strings(candidates)

	for _, id := range candidates {
		if id == reference {
			return []string{id}, nil
		}
	}
	return candidates, nil
}

func (f *fakeGraph) MergeReplyEdge(ctx context.Context, childID, parentID string) (bool, error) {
	return f.merge(f.replyEdges, childID, parentID)
}

func (f *fakeGraph) MergeThreadEdge(ctx context.Context, commentID, threadID string) (bool, error) {
	return f.merge(f.threadEdges, commentID, threadID)
}

func (f *fakeGraph) merge(edges map[[2]string]bool, fromID, toID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if fromID == toID {
		return false, nil
	}
	if !f.has(fromID) || !f.has(toID) {
		return false, nil
	}

	key := [2]string{fromID, toID}
	if edges[key] {
		return false, nil
	}
	edges[key] = true
	return true, nil
}

func (f *fakeGraph) has(id string) bool {
	for _, n := range f.nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func (f *fakeGraph) replyEdgeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.replyEdges)
}

func (f *fakeGraph) threadEdgeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.threadEdges)
}
