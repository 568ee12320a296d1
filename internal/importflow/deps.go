// Package importflow drives invoice-import transactions from GENERATED to a terminal
// status. Three unsynchronized sources (client control messages, object arrivals, store
// removals) race on the same record; conditional status updates pick the winner and the
// losers replay the stored status to the client.
package importflow

import (
	"context"
	"time"

	"github.com/imrishuroy/go-invoice-importflow/internal/analytics"
	"github.com/imrishuroy/go-invoice-importflow/internal/invoices"
	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

// TransactionStore is the durable record store; UpdateStatus is the only coordination primitive.
type TransactionStore interface {
	Get(ctx context.Context, transactionID string) (*transactions.Record, error)
	Create(ctx context.Context, rec transactions.Record) (*transactions.Record, error)
	UpdateStatus(ctx context.Context, transactionID string, expected, newStatus transactions.Status) (*transactions.Record, error)
}

// SweepStore is what the expiry sweeper needs from the transaction store.
type SweepStore interface {
	ListExpired(ctx context.Context, now time.Time, limit int32) ([]transactions.Record, error)
	Delete(ctx context.Context, transactionID string, expected transactions.Status) (*transactions.Record, error)
}

type InvoiceStore interface {
	Put(ctx context.Context, inv invoices.Invoice) error
}

type EventStore interface {
	Append(ctx context.Context, ev analytics.Event, ttl time.Duration) (*analytics.Event, error)
}

// ObjectStore issues write targets and reads/removes uploaded objects.
type ObjectStore interface {
	IssueWriteTarget(ctx context.Context, key string, ttl time.Duration) (string, error)
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
}

// Notifier is the best-effort push channel.
type Notifier interface {
	Send(ctx context.Context, connectionID string, payload []byte) bool
	SendStatus(ctx context.Context, transactionID, connectionID string, status transactions.Status) bool
	Disconnect(ctx context.Context, connectionID string) bool
}

type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, status string) error
}

// Deps groups the collaborators shared by the handlers.
type Deps struct {
	Transactions TransactionStore
	Invoices     InvoiceStore
	Objects      ObjectStore
	Notifier     Notifier
	Metrics      OutcomeRecorder
	Log          *logger.Logger
}

func (d Deps) logger() *logger.Logger {
	if d.Log == nil {
		return logger.NewNop()
	}
	return d.Log
}

// recordOutcome publishes a terminal outcome; failures only get logged.
func (d Deps) recordOutcome(ctx context.Context, status transactions.Status) {
	if d.Metrics == nil {
		return
	}
	if err := d.Metrics.RecordOutcome(ctx, string(status)); err != nil {
		d.logger().Warn(ctx, "record outcome metric failed", "status", status, "error", err)
	}
}

// replay re-reads the record after a lost race and pushes whatever status it holds now.
// If the record has vanished in the meantime, NOT_FOUND goes to fallbackConn.
func (d Deps) replay(ctx context.Context, transactionID, fallbackConn string) (transactions.Status, error) {
	rec, err := d.Transactions.Get(ctx, transactionID)
	switch {
	case err == nil:
		d.logger().Info(ctx, "lost status race, replaying stored status", "status", rec.Status)
		d.Notifier.SendStatus(ctx, transactionID, rec.ConnectionID, rec.Status)
		return rec.Status, nil
	case isNotFound(err):
		d.Notifier.SendStatus(ctx, transactionID, fallbackConn, transactions.StatusNotFound)
		return transactions.StatusNotFound, nil
	default:
		return "", err
	}
}
