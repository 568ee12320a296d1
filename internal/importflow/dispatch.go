package importflow

import (
	"context"
	"fmt"

	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
	"github.com/imrishuroy/go-invoice-importflow/internal/validation"
)

// Dispatcher routes triggers to the handler for their variant. Handlers left nil make
// the matching triggers fail with ErrUnroutable.
type Dispatcher struct {
	Issuer    *Issuer
	Processor *Processor
	Canceller *Canceller
	Reaper    *Reaper
	Recorder  *Recorder
}

var controlValidator = validation.New()

// Dispatch handles one trigger. Only malformed or unroutable triggers and
// infrastructure failures are returned as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, t Trigger) error {
	switch t := t.(type) {
	case ClientControlMessage:
		return d.control(ctx, t)

	case ObjectArrived:
		if d.Processor == nil {
			return fmt.Errorf("%w: object arrival", ErrUnroutable)
		}
		_, err := d.Processor.Process(ctx, t)
		return err

	case StoreChange:
		return d.change(ctx, t)

	default:
		return fmt.Errorf("%w: unknown trigger %T", ErrMalformedTrigger, t)
	}
}

func (d *Dispatcher) control(ctx context.Context, msg ClientControlMessage) error {
	if msg.ConnectionID == "" {
		return fmt.Errorf("%w: control message without connection", ErrMalformedTrigger)
	}
	if err := controlValidator.Struct(validation.ControlMessage{Action: msg.Action, TransactionID: msg.TransactionID}); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTrigger, validation.ErrorsToMap(err))
	}
	ctx = logger.WithRequestID(logger.WithConnectionID(ctx, msg.ConnectionID), msg.RequestID)

	switch msg.Action {
	case validation.ActionGetImportURL:
		if d.Issuer == nil {
			return fmt.Errorf("%w: %s", ErrUnroutable, msg.Action)
		}
		_, err := d.Issuer.Issue(ctx, msg.ConnectionID, msg.RequestID)
		return err
	case validation.ActionCancelImport:
		if d.Canceller == nil {
			return fmt.Errorf("%w: %s", ErrUnroutable, msg.Action)
		}
		_, err := d.Canceller.Cancel(ctx, msg.TransactionID, msg.ConnectionID)
		return err
	}
	return fmt.Errorf("%w: action %q", ErrMalformedTrigger, msg.Action)
}

func (d *Dispatcher) change(ctx context.Context, change StoreChange) error {
	switch change.Kind {
	case ChangeRemove:
		if d.Reaper == nil {
			return fmt.Errorf("%w: store removal", ErrUnroutable)
		}
		_, err := d.Reaper.Reap(ctx, change)
		return err
	case ChangeInsert:
		if d.Recorder == nil {
			return nil
		}
		_, err := d.Recorder.Record(ctx, change)
		return err
	case ChangeModify:
		return nil
	}
	return fmt.Errorf("%w: change kind %q", ErrMalformedTrigger, change.Kind)
}
