package cache

import (
    "context"
    "errors"
    "time"

    pkgcache "CoinPulse/pkg/cache"
)

// BytesCache stores rendered responses with a TTL.
type BytesCache interface {
    GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
    SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Responses keeps rendered API responses in a cache.Service: Redis when
// replicas share it, memory otherwise.
type Responses struct {
    store pkgcache.Service
}

func NewResponses(store pkgcache.Service) *Responses {
    return &Responses{store: store}
}

// GetBytes reports a miss as ok=false with a nil error.
func (r *Responses) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
    var b []byte
    err := r.store.Get(ctx, key, &b)
    switch {
    case errors.Is(err, pkgcache.ErrCacheMiss):
        return nil, false, nil
    case err != nil:
        return nil, false, err
    }
    return b, true, nil
}

func (r *Responses) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
    return r.store.Set(ctx, key, value, ttl)
}

var _ BytesCache = (*Responses)(nil)
