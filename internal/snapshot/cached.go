package snapshot

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/ir"
)

// Cached is a read-through cache over a snapshot.
//
// Concurrent misses for the same key are collapsed into one upstream call.
// Errors are never cached, so a later call retries. LeafEntities and
// LastModified are passed through.
//
// Thread Safety: All methods are safe for concurrent use.
type Cached struct {
	inner engine.Snapshot
	group singleflight.Group

	mu        sync.RWMutex
	entities  map[ir.ID]*ir.Entity
	parents   map[ir.ID][]ir.Entity
	sequences map[seqKey][]ir.EditRecord
	inferred  map[ir.ID]bool

	hits   atomic.Int64
	misses atomic.Int64
}

type seqKey struct {
	id   ir.ID
	kind ir.EditKind
}

// NewCached wraps inner.
func NewCached(inner engine.Snapshot) *Cached {
	return &Cached{
		inner:     inner,
		entities:  make(map[ir.ID]*ir.Entity),
		parents:   make(map[ir.ID][]ir.Entity),
		sequences: make(map[seqKey][]ir.EditRecord),
		inferred:  make(map[ir.ID]bool),
	}
}

// Stats returns cache hits and misses so far.
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Entity implements engine.Source.
func (c *Cached) Entity(ctx context.Context, id ir.ID) (*ir.Entity, error) {
	return load(c, c.entities, id, fmt.Sprintf("entity/%d", id), func() (*ir.Entity, error) {
		return c.inner.Entity(ctx, id)
	})
}

// Parents implements engine.Source.
func (c *Cached) Parents(ctx context.Context, id ir.ID) ([]ir.Entity, error) {
	return load(c, c.parents, id, fmt.Sprintf("parents/%d", id), func() ([]ir.Entity, error) {
		return c.inner.Parents(ctx, id)
	})
}

// EditSequence implements engine.Source.
func (c *Cached) EditSequence(ctx context.Context, id ir.ID, kind ir.EditKind) ([]ir.EditRecord, error) {
	key := seqKey{id: id, kind: kind}
	return load(c, c.sequences, key, fmt.Sprintf("%s/%d", kind, id), func() ([]ir.EditRecord, error) {
		return c.inner.EditSequence(ctx, id, kind)
	})
}

// IsInferred implements engine.Source.
func (c *Cached) IsInferred(ctx context.Context, id ir.ID) (bool, error) {
	return load(c, c.inferred, id, fmt.Sprintf("inferred/%d", id), func() (bool, error) {
		return c.inner.IsInferred(ctx, id)
	})
}

// LeafEntities implements engine.Snapshot.
func (c *Cached) LeafEntities(ctx context.Context) ([]ir.Entity, error) {
	return c.inner.LeafEntities(ctx)
}

// LastModified implements engine.Snapshot.
func (c *Cached) LastModified(ctx context.Context, id ir.ID) (*ir.EditRecord, error) {
	return c.inner.LastModified(ctx, id)
}

func load[K comparable, V any](c *Cached, cache map[K]V, key K, flightKey string, fetch func() (V, error)) (V, error) {
	c.mu.RLock()
	v, ok := cache[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return v, nil
	}

	res, err, _ := c.group.Do(flightKey, func() (any, error) {
		// Double-check inside the flight: an earlier flight may have filled it.
		c.mu.RLock()
		v, ok := cache[key]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}

		c.misses.Add(1)
		v, err := fetch()
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		cache[key] = v
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}
