package client

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/unihub/unihub-client/observable"
)

// Cache is a last-known-good collection: the most recent successfully
// fetched items, served in place of an error when a refresh fails. A
// session-scoped cache additionally clears itself when the session expires
// and serves nothing while no session exists.
type Cache[T any] struct {
	resource string
	items    *observable.Value[[]T]
}

func newCache[T any](resource string) *Cache[T] {
	return &Cache[T]{resource: resource, items: observable.New([]T(nil))}
}

// Items returns the cached collection.
func (c *Cache[T]) Items() []T { return c.items.Peek() }

// Observe registers an observer on the collection.
func (c *Cache[T]) Observe(cb func([]T)) (cancel func()) { return c.items.Observe(cb) }

func (c *Cache[T]) clear() { c.items.Set(nil) }

// refresh runs fetch and applies the retention policy: success replaces the
// items; a server or transport failure keeps the previous items and returns
// them; anything else (unauthorized, unauthenticated, cancellation)
// propagates. The 401 session side effect happens inside the fetch itself.
func (c *Cache[T]) refresh(ctx context.Context, fetch func(context.Context) ([]T, error)) ([]T, error) {
	fresh, err := fetch(ctx)
	if err == nil {
		c.items.Set(fresh)
		return fresh, nil
	}
	if IsRecoverableRead(err) {
		cacheFallbacksTotal.WithLabelValues(c.resource).Inc()
		log.Warn().Err(err).Str("resource", c.resource).Msg("refresh failed, serving cached items")
		return c.items.Peek(), nil
	}
	return nil, err
}
