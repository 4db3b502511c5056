package llm

import (
	"context"
	"fmt"
)

// Waiter blocks until a call to the keyed endpoint may proceed.
// worker.Limiter satisfies it.
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

type rateLimited struct {
	Provider
	waiter   Waiter
	endpoint string
}

// WithRateLimit wraps p so every Generate call first waits for clearance
// on endpoint. A nil waiter returns p unchanged.
func WithRateLimit(p Provider, waiter Waiter, endpoint string) Provider {
	if waiter == nil {
		return p
	}
	return &rateLimited{Provider: p, waiter: waiter, endpoint: endpoint}
}

func (r *rateLimited) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if err := r.waiter.Wait(ctx, r.endpoint); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.Provider.Generate(ctx, req)
}
