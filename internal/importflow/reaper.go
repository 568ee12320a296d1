package importflow

import (
	"context"
	"fmt"

	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

// Reaper turns removal of an unresolved transaction into a TIMEOUT push.
type Reaper struct {
	deps Deps
}

func NewReaper(deps Deps) *Reaper {
	return &Reaper{deps: deps}
}

// Reap handles one change. It returns "" when the change is not a transaction removal,
// the stored status when the removal was ordinary garbage collection, and TIMEOUT otherwise.
func (r *Reaper) Reap(ctx context.Context, change StoreChange) (transactions.Status, error) {
	if change.Kind != ChangeRemove {
		return "", nil
	}
	if change.Before == nil {
		return "", fmt.Errorf("%w: removal without old image", ErrMalformedTrigger)
	}
	if !change.Before.IsTransaction() {
		return "", nil
	}

	rec, err := change.Before.Transaction()
	if err != nil {
		return "", err
	}
	log := r.deps.logger()
	ctx = logger.WithConnectionID(logger.WithTransactionID(ctx, rec.TransactionID), rec.ConnectionID)

	// Only GENERATED and RECEIVED count as unresolved.
	if rec.Status.IsTerminal() {
		log.Debug(ctx, "resolved transaction expired", "status", rec.Status)
		return rec.Status, nil
	}

	log.Info(ctx, "invoice import timed out", "last_status", rec.Status)
	r.deps.Notifier.SendStatus(ctx, rec.TransactionID, rec.ConnectionID, transactions.StatusTimeout)
	r.deps.Notifier.Disconnect(ctx, rec.ConnectionID)
	r.deps.recordOutcome(ctx, transactions.StatusTimeout)
	return transactions.StatusTimeout, nil
}
