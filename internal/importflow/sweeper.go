package importflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

// SweepResult summarizes one sweep.
type SweepResult struct {
	Scanned  int
	Removed  int
	TimedOut int
}

// Sweeper evicts transactions past their ttl instead of waiting for the store's own
// (lazy) expiry. With a subscribed change feed the reaper sees the removals there; without
// one, set a Reaper and each removal is reaped in-process.
type Sweeper struct {
	store   SweepStore
	reaper  *Reaper
	limit   int32
	log     *logger.Logger
	nowFunc func() time.Time
}

func NewSweeper(store SweepStore, reaper *Reaper, limit int32, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.NewNop()
	}
	return &Sweeper{store: store, reaper: reaper, limit: limit, log: log, nowFunc: time.Now}
}

func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	expired, err := s.store.ListExpired(ctx, s.nowFunc(), s.limit)
	if err != nil {
		return res, fmt.Errorf("list expired transactions: %w", err)
	}
	res.Scanned = len(expired)

	var errs []error
	for _, rec := range expired {
		rctx := logger.WithTransactionID(ctx, rec.TransactionID)

		old, err := s.store.Delete(rctx, rec.TransactionID, rec.Status)
		if isConditionFailed(err) || isNotFound(err) {
			// status moved or already evicted; the next sweep sees the fresh state
			s.log.Debug(rctx, "expired transaction changed before removal", "status", rec.Status)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", rec.TransactionID, err))
			continue
		}
		res.Removed++

		if s.reaper == nil {
			continue
		}
		img, err := ImageOf(*old)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		status, err := s.reaper.Reap(rctx, StoreChange{Kind: ChangeRemove, Before: img})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if status == transactions.StatusTimeout {
			res.TimedOut++
		}
	}

	s.log.Info(ctx, "sweep finished", "scanned", res.Scanned, "removed", res.Removed, "timed_out", res.TimedOut)
	return res, errors.Join(errs...)
}
