package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/2019UGEC100/limitbook/pkg/model"
)

// pruner is the single long-running end-of-day maintenance task. It
// sleeps until the configured cutoff wall-clock time, then cancels every
// currently-resting GOODFORDAY order as a single batch. The timed wait
// is a time.Timer raced against ctx.Done() in a select, so it never
// holds the book mutex while sleeping.
type pruner struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// cutoffSlack is a small buffer added past the computed cutoff instant,
// so the pruner wakes slightly after the cutoff rather than racing it.
const cutoffSlack = 100 * time.Millisecond

func startPruner(ob *OrderBook, cfg Config, logger *zap.Logger) *pruner {
	ctx, cancel := context.WithCancel(context.Background())
	p := &pruner{cancel: cancel}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			till := nextCutoff(time.Now(), cfg.CutoffHour, cfg.Location).Add(cutoffSlack).Sub(time.Now())
			timer := time.NewTimer(till)

			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			ids := ob.collectGoodForDayOrders()
			if len(ids) > 0 {
				ob.CancelOrders(ids)
				ob.metrics.orderPruneTotal.Add(float64(len(ids)))
				logger.Info("pruned GOODFORDAY orders", zap.Int("count", len(ids)))
			}
		}
	}()

	return p
}

// stop cancels the pruner's context and waits for its goroutine to
// exit. Safe to call more than once.
func (p *pruner) stop() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}

// nextCutoff computes the next occurrence of hour:00:00 in loc strictly
// after now; if now is at or past today's cutoff, it targets tomorrow.
func nextCutoff(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	cutoff := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !local.Before(cutoff) {
		cutoff = cutoff.AddDate(0, 0, 1)
	}
	return cutoff
}

// collectGoodForDayOrders gathers the ids of every currently-resting
// GOODFORDAY order under the book lock.
func (ob *OrderBook) collectGoodForDayOrders() []model.OrderID {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	ids := make([]model.OrderID, 0)
	for id, entry := range ob.index.entries {
		if entry.order.Type == model.GoodForDay {
			ids = append(ids, id)
		}
	}
	return ids
}
