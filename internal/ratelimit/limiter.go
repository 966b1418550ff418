package ratelimit

import "context"

// RateLimiter bounds provider send throughput for a named resource.
type RateLimiter interface {
	Allow(ctx context.Context, resource string) (bool, error)
	Wait(ctx context.Context, resource string) error
}
