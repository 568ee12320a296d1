package importflow

import (
	"context"
	"fmt"

	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

// Canceller handles client abort requests. The requesting connection is always closed.
type Canceller struct {
	deps Deps
}

func NewCanceller(deps Deps) *Canceller {
	return &Canceller{deps: deps}
}

// Cancel moves a GENERATED transaction to CANCELLED and returns the status pushed.
func (c *Canceller) Cancel(ctx context.Context, transactionID, connectionID string) (transactions.Status, error) {
	log := c.deps.logger()
	ctx = logger.WithTransactionID(ctx, transactionID)
	defer c.deps.Notifier.Disconnect(ctx, connectionID)

	rec, err := c.deps.Transactions.Get(ctx, transactionID)
	if isNotFound(err) {
		log.Info(ctx, "cancel requested for unknown transaction", "connection_id", connectionID)
		c.deps.Notifier.SendStatus(ctx, transactionID, connectionID, transactions.StatusNotFound)
		c.deps.recordOutcome(ctx, transactions.StatusNotFound)
		return transactions.StatusNotFound, nil
	}
	if err != nil {
		return "", fmt.Errorf("get transaction: %w", err)
	}

	if rec.Status != transactions.StatusGenerated {
		log.Warn(ctx, "can't cancel an ongoing or finished import", "status", rec.Status)
		c.deps.Notifier.SendStatus(ctx, transactionID, rec.ConnectionID, rec.Status)
		return rec.Status, nil
	}

	if _, err := c.deps.Transactions.UpdateStatus(ctx, transactionID, transactions.StatusGenerated, transactions.StatusCancelled); err != nil {
		if isConditionFailed(err) {
			return c.deps.replay(ctx, transactionID, connectionID)
		}
		return "", fmt.Errorf("mark cancelled: %w", err)
	}

	c.deps.Notifier.SendStatus(ctx, transactionID, rec.ConnectionID, transactions.StatusCancelled)
	c.deps.recordOutcome(ctx, transactions.StatusCancelled)
	log.Info(ctx, "import cancelled", "connection_id", connectionID)
	return transactions.StatusCancelled, nil
}
