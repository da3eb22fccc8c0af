package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Throttle paces the crawl with randomized delays: a short one between
// item pages and a longer one between listing pages. Both draws come
// from a [min,max) uniform range so request timing never looks fixed.
type Throttle struct {
	mu          sync.Mutex
	itemMin     time.Duration
	itemMax     time.Duration
	pageMin     time.Duration
	pageMax     time.Duration
	lastRequest time.Time
}

func New(itemMin, itemMax, pageMin, pageMax time.Duration) *Throttle {
	return &Throttle{
		itemMin: itemMin,
		itemMax: itemMax,
		pageMin: pageMin,
		pageMax: pageMax,
	}
}

// WaitItem blocks for the randomized item-to-item delay, minus whatever
// time already passed since the last request.
func (t *Throttle) WaitItem(ctx context.Context) error {
	return t.wait(ctx, t.itemMin, t.itemMax)
}

// WaitPage blocks for the randomized page-to-page delay.
func (t *Throttle) WaitPage(ctx context.Context) error {
	return t.wait(ctx, t.pageMin, t.pageMax)
}

func (t *Throttle) wait(ctx context.Context, min, max time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delay := draw(min, max)
	if elapsed := time.Since(t.lastRequest); elapsed < delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay - elapsed):
		}
	}

	t.lastRequest = time.Now()
	return nil
}

func draw(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
