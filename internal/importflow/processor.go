package importflow

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/imrishuroy/go-invoice-importflow/internal/invoices"
	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
	"github.com/imrishuroy/go-invoice-importflow/internal/validation"
)

// Processor validates, parses and commits an arrived object.
type Processor struct {
	deps    Deps
	parser  *invoices.Parser
	nowFunc func() time.Time
}

func NewProcessor(deps Deps, parser *invoices.Parser) *Processor {
	if parser == nil {
		parser = invoices.NewParser(nil)
	}
	return &Processor{deps: deps, parser: parser, nowFunc: time.Now}
}

// Process handles one arrival and returns the status pushed to the client.
// Redelivery of an already-resolved arrival only replays the stored status.
func (p *Processor) Process(ctx context.Context, ev ObjectArrived) (transactions.Status, error) {
	if ev.Key == "" || ev.Bucket == "" {
		return "", fmt.Errorf("%w: object arrival without bucket/key", ErrMalformedTrigger)
	}
	log := p.deps.logger()
	ctx = logger.WithTransactionID(ctx, ev.Key)

	rec, err := p.deps.Transactions.Get(ctx, ev.Key)
	if isNotFound(err) {
		log.Warn(ctx, "object arrived for unknown transaction", "bucket", ev.Bucket)
		if ev.ConnectionID != "" {
			p.deps.Notifier.SendStatus(ctx, ev.Key, ev.ConnectionID, transactions.StatusNotFound)
		}
		p.deps.recordOutcome(ctx, transactions.StatusNotFound)
		return transactions.StatusNotFound, nil
	}
	if err != nil {
		return "", fmt.Errorf("get transaction: %w", err)
	}
	ctx = logger.WithConnectionID(ctx, rec.ConnectionID)

	if rec.Status != transactions.StatusGenerated {
		log.Info(ctx, "transaction already resolved, replaying status", "status", rec.Status)
		p.deps.Notifier.SendStatus(ctx, rec.TransactionID, rec.ConnectionID, rec.Status)
		return rec.Status, nil
	}

	if _, err := p.deps.Transactions.UpdateStatus(ctx, rec.TransactionID, transactions.StatusGenerated, transactions.StatusReceived); err != nil {
		if isConditionFailed(err) {
			return p.deps.replay(ctx, rec.TransactionID, rec.ConnectionID)
		}
		return "", fmt.Errorf("mark received: %w", err)
	}
	p.deps.Notifier.SendStatus(ctx, rec.TransactionID, rec.ConnectionID, transactions.StatusReceived)

	body, err := p.deps.Objects.Get(ctx, ev.Bucket, ev.Key)
	if err != nil {
		return "", fmt.Errorf("fetch object: %w", err)
	}

	file, err := p.parser.Parse(body)
	if err != nil {
		log.Warn(ctx, "invoice rejected", "error", err)
		return p.reject(ctx, rec, ev)
	}
	return p.commit(ctx, rec, ev, file)
}

// reject resolves RECEIVED -> INVOICE_NUMBER_INVALID and closes the client connection.
func (p *Processor) reject(ctx context.Context, rec *transactions.Record, ev ObjectArrived) (transactions.Status, error) {
	p.cleanup(ctx, ev)

	if _, err := p.deps.Transactions.UpdateStatus(ctx, rec.TransactionID, transactions.StatusReceived, transactions.StatusInvoiceNumberInvalid); err != nil {
		if isConditionFailed(err) {
			return p.deps.replay(ctx, rec.TransactionID, rec.ConnectionID)
		}
		return "", fmt.Errorf("mark invoice number invalid: %w", err)
	}

	p.deps.Notifier.SendStatus(ctx, rec.TransactionID, rec.ConnectionID, transactions.StatusInvoiceNumberInvalid)
	p.deps.Notifier.Disconnect(ctx, rec.ConnectionID)
	p.deps.recordOutcome(ctx, transactions.StatusInvoiceNumberInvalid)
	return transactions.StatusInvoiceNumberInvalid, nil
}

// commit persists the invoice and removes the object concurrently; the transition and
// the push happen only once the invoice write has succeeded.
func (p *Processor) commit(ctx context.Context, rec *transactions.Record, ev ObjectArrived, file *validation.InvoiceFile) (transactions.Status, error) {
	inv := invoices.FromFile(file, rec.TransactionID, p.nowFunc().UnixMilli())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := p.deps.Invoices.Put(gctx, inv); err != nil {
			return fmt.Errorf("persist invoice: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		p.cleanup(gctx, ev)
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	if _, err := p.deps.Transactions.UpdateStatus(ctx, rec.TransactionID, transactions.StatusReceived, transactions.StatusProcessed); err != nil {
		if isConditionFailed(err) {
			return p.deps.replay(ctx, rec.TransactionID, rec.ConnectionID)
		}
		return "", fmt.Errorf("mark processed: %w", err)
	}

	p.deps.Notifier.SendStatus(ctx, rec.TransactionID, rec.ConnectionID, transactions.StatusProcessed)
	p.deps.recordOutcome(ctx, transactions.StatusProcessed)
	p.deps.logger().Info(ctx, "invoice imported", "invoice_number", inv.InvoiceNumber, "customer", file.CustomerName)
	return transactions.StatusProcessed, nil
}

// cleanup deletes the temporary object; failures are left to the bucket lifecycle rule.
func (p *Processor) cleanup(ctx context.Context, ev ObjectArrived) {
	if err := p.deps.Objects.Delete(ctx, ev.Bucket, ev.Key); err != nil {
		p.deps.logger().Warn(ctx, "delete uploaded object failed", "bucket", ev.Bucket, "error", err)
	}
}
