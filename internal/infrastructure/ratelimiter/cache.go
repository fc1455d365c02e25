package ratelimiter

import (
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// GetterSetter stores the remaining token count of each source. A zero
// expiration keeps the entry until it is overwritten.
type GetterSetter interface {
	Get(key string) (int, error)
	Set(key string, value int) error
	SetWithExpiration(key string, value int, expiration time.Duration) error
	Close() error
}

var (
	_ GetterSetter = (*InMemory)(nil)
	_ GetterSetter = (*Redis)(nil)
)
