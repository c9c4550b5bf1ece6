package service

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const effectTimeout = 10 * time.Second

// Effects runs fire-and-forget side work (analytics, title persistence,
// outbound mail) off the request path. A failed submit degrades to inline
// execution so the effect is never silently dropped.
type Effects struct {
	pool *ants.Pool
}

func NewEffects(size int) (*Effects, error) {
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &Effects{pool: pool}, nil
}

// Go schedules fn with its own timeout, detached from the caller's context.
func (e *Effects) Go(name string, fn func(ctx context.Context) error) {
	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logutil.GetLogger(ctx).Error("background effect failed",
				zap.String("effect", name), zap.Error(err))
		}
	}
	if err := e.pool.Submit(task); err != nil {
		task()
	}
}

func (e *Effects) Close() {
	e.pool.Release()
}
