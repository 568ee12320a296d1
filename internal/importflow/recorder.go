package importflow

import (
	"context"
	"fmt"
	"time"

	"github.com/imrishuroy/go-invoice-importflow/internal/analytics"
	"github.com/imrishuroy/go-invoice-importflow/internal/invoices"
	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
)

// Recorder appends an INVOICE_CREATED audit event for every inserted invoice item.
type Recorder struct {
	events EventStore
	ttl    time.Duration
	log    *logger.Logger
}

func NewRecorder(events EventStore, ttl time.Duration, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Recorder{events: events, ttl: ttl, log: log}
}

// Record returns the appended event, or nil when the change is not an invoice insert.
func (r *Recorder) Record(ctx context.Context, change StoreChange) (*analytics.Event, error) {
	if change.Kind != ChangeInsert {
		return nil, nil
	}
	if change.After == nil {
		return nil, fmt.Errorf("%w: insert without new image", ErrMalformedTrigger)
	}
	if change.After.IsTransaction() {
		r.log.Debug(ctx, "invoice transaction event received")
		return nil, nil
	}
	if !change.After.IsInvoice() {
		return nil, nil
	}

	inv, err := change.After.Invoice()
	if err != nil {
		return nil, err
	}
	ctx = logger.WithTransactionID(ctx, inv.TransactionID)

	ev, err := r.events.Append(ctx, analytics.Event{
		PK:        invoices.PartitionPrefix + inv.InvoiceNumber,
		EventType: analytics.EventInvoiceCreated,
		Email:     inv.Customer(),
		Info: analytics.Info{
			Transaction: inv.TransactionID,
			ProductID:   inv.ProductID,
			Quantity:    inv.Quantity,
		},
	}, r.ttl)
	if err != nil {
		return nil, fmt.Errorf("append invoice event: %w", err)
	}
	r.log.Info(ctx, "invoice event recorded", "event", ev.SK)
	return ev, nil
}
