package ai

import (
	"context"
	"time"

	"llmsecbot/internal/cache"
)

type cachedSummarizer struct {
	inner Summarizer
	cache *cache.Cache
	ttl   time.Duration
}

// WithCache wraps a summarizer so identical bodies inside one run hit the
// completion endpoint only once. Errors are never cached.
func WithCache(inner Summarizer, c *cache.Cache, ttl time.Duration) Summarizer {
	return &cachedSummarizer{inner: inner, cache: c, ttl: ttl}
}

func (s *cachedSummarizer) Summarize(ctx context.Context, body string) (string, error) {
	key := cache.Key(body)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	out, err := s.inner.Summarize(ctx, body)
	if err != nil {
		return "", err
	}
	s.cache.Set(key, out, s.ttl)
	return out, nil
}
