package service

import (
	"context"
	"sync"
	"time"

	"github.com/ppiankov/hoverlex/internal/model"
	"github.com/rs/zerolog"
)

// AsyncDispatcher runs each lookup on its own goroutine and reports the
// answer through the callback. Superseded lookups are not cancelled.
type AsyncDispatcher struct {
	svc     Service
	ctx     context.Context
	timeout time.Duration
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewAsyncDispatcher creates a dispatcher for svc. Lookups are bound to ctx
// and each one is limited to timeout when timeout is positive.
func NewAsyncDispatcher(ctx context.Context, svc Service, timeout time.Duration, log zerolog.Logger) *AsyncDispatcher {
	if ctx == nil {
		ctx = context.Background()
	}
	return &AsyncDispatcher{svc: svc, ctx: ctx, timeout: timeout, log: log}
}

// Dispatch starts the lookup and returns immediately
func (d *AsyncDispatcher) Dispatch(req model.LookupRequest, done func(*model.LookupResponse, error)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if d.svc == nil {
			done(nil, ErrDisabled)
			return
		}

		ctx := d.ctx
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}

		start := time.Now()
		resp, err := d.svc.Lookup(ctx, req)
		if err != nil {
			d.log.Warn().Err(err).Str("text", req.Text).Msg("lookup failed")
		} else {
			d.log.Debug().Str("text", req.Text).Int("match", resp.MatchLength).Dur("took", time.Since(start)).Msg("lookup answered")
		}
		done(resp, err)
	}()
}

// Wait blocks until every dispatched lookup has called back
func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}
