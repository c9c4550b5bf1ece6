package ai

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	embedCacheSize = 2048
	embedCacheTTL  = 15 * time.Minute
)

type cachedEmbedder struct {
	inner IEmbedder
	cache *expirable.LRU[string, []float32]
}

// NewCachedEmbedder wraps an embedder with a bounded TTL cache keyed on the
// raw input text. Repeated questions skip the network round trip.
func NewCachedEmbedder(inner IEmbedder) IEmbedder {
	return &cachedEmbedder{
		inner: inner,
		cache: expirable.NewLRU[string, []float32](embedCacheSize, nil, embedCacheTTL),
	}
}

func (e *cachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if values, ok := e.cache.Get(text); ok {
		return values, nil
	}
	values, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(text, values)
	return values, nil
}

func (e *cachedEmbedder) ModelName() string {
	return e.inner.ModelName()
}
