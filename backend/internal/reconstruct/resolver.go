package reconstruct

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// cachedResolver memoizes candidate lookups for the life of a single pass.
// Thread references in particular repeat heavily (every comment in a thread
// carries the same one), so concurrent lookups for the same reference are
// collapsed into one query and served from the cache afterwards. The cache
// holds unfiltered candidate sets; self-exclusion happens per node because
// two nodes sharing a reference exclude different ids.
type cachedResolver struct {
	store Graph
	group singleflight.Group

	mu    sync.Mutex
	cache map[string][]string
}

func newCachedResolver(store Graph) *cachedResolver {
	return &cachedResolver{
		store: store,
		cache: make(map[string][]string),
	}
}

// resolve returns the candidate ids for a node's reference, excluding the
// node itself
func (cr *cachedResolver) resolve(ctx context.Context, selfID, reference, fragment string) ([]string, error) {
	key := reference + "\x00" + fragment

	cr.mu.Lock()
	cached, ok := cr.cache[key]
	cr.mu.Unlock()

	if !ok {
		v, err, _ := cr.group.Do(key, func() (interface{}, error) {
			candidates, err := cr.store.ResolveReference(ctx, "", reference, fragment)
			if err != nil {
				return nil, err
			}
			cr.mu.Lock()
			cr.cache[key] = candidates
			cr.mu.Unlock()
			return candidates, nil
		})
		if err != nil {
			return nil, err
		}
		cached = v.([]string)
	}

	filtered := make([]string, 0, len(cached))
	for _, id := range cached {
		if id != selfID {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}
