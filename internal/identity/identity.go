// Package identity resolves the opaque operator identity used as a
// persistence key. Absence of an identity is a soft condition: persistence
// degrades to a no-op, never a hard failure.
package identity

import (
	"context"
	"errors"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrNoIdentity signals that no operator identity is configured.
var ErrNoIdentity = errors.New("no operator identity available")

// Provider defines identity resolution.
type Provider interface {
	// OperatorID returns the opaque operator identifier, or ErrNoIdentity.
	OperatorID(ctx context.Context) (string, error)
}

// EnvProvider reads the identity from an environment variable on every
// resolution.
type EnvProvider struct {
	// Var is the environment variable holding the operator id.
	Var string
}

// OperatorID resolves the identity from the environment.
func (p EnvProvider) OperatorID(ctx context.Context) (string, error) {
	if p.Var == "" {
		return "", ErrNoIdentity
	}
	id := os.Getenv(p.Var)
	if id == "" {
		return "", ErrNoIdentity
	}
	return id, nil
}

const cacheKey = "operator-id"

// CachedProvider memoizes another provider's resolution for a TTL, so a
// slow or flaky upstream is consulted at most once per window. Negative
// results are not cached: an identity appearing mid-session takes effect on
// the next resolution.
type CachedProvider struct {
	upstream Provider
	cache    *gocache.Cache
}

// NewCachedProvider wraps upstream with a TTL cache.
func NewCachedProvider(upstream Provider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedProvider{
		upstream: upstream,
		cache:    gocache.New(ttl, 2*ttl),
	}
}

// OperatorID returns the cached identity, consulting upstream on a miss.
func (p *CachedProvider) OperatorID(ctx context.Context) (string, error) {
	if v, found := p.cache.Get(cacheKey); found {
		return v.(string), nil
	}

	id, err := p.upstream.OperatorID(ctx)
	if err != nil {
		return "", err
	}
	p.cache.SetDefault(cacheKey, id)
	return id, nil
}
