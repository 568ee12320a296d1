package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-invoice-importflow/internal/importflow"
	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
	"github.com/imrishuroy/go-invoice-importflow/internal/triggers"
)

type dispatcher interface {
	Dispatch(ctx context.Context, t importflow.Trigger) error
}

// Handler receives object arrivals, either straight from S3 or queued on SQS.
type Handler struct {
	dispatch dispatcher
	log      *logger.Logger
}

func NewHandler(d dispatcher, log *logger.Logger) *Handler {
	return &Handler{dispatch: d, log: log}
}

type envelope struct {
	Records []struct {
		EventSource string `json:"eventSource"`
	} `json:"Records"`
}

// Handle decodes the payload by its event source. SQS batches report per-message failures
// so only failed messages are redelivered.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (*events.SQSEventResponse, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", importflow.ErrMalformedTrigger, err)
	}
	if len(env.Records) == 0 {
		h.log.Info(ctx, "empty event")
		return nil, nil
	}

	switch env.Records[0].EventSource {
	case "aws:sqs":
		var ev events.SQSEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: sqs event: %v", importflow.ErrMalformedTrigger, err)
		}
		return h.handleSQS(ctx, ev), nil
	case "aws:s3":
		var ev events.S3Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: s3 event: %v", importflow.ErrMalformedTrigger, err)
		}
		return nil, h.handleS3(ctx, ev)
	}
	return nil, fmt.Errorf("%w: event source %q", importflow.ErrMalformedTrigger, env.Records[0].EventSource)
}

func (h *Handler) handleS3(ctx context.Context, ev events.S3Event) error {
	arrivals, err := triggers.FromS3(ev)
	if err != nil {
		return err
	}
	var errs []error
	for _, a := range arrivals {
		if err := h.dispatch.Dispatch(ctx, a); err != nil {
			h.log.Error(logger.WithTransactionID(ctx, a.Key), "object arrival failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *Handler) handleSQS(ctx context.Context, ev events.SQSEvent) *events.SQSEventResponse {
	resp := &events.SQSEventResponse{}
	for _, msg := range ev.Records {
		arrivals, err := triggers.FromSQS(events.SQSEvent{Records: []events.SQSMessage{msg}})
		if err == nil {
			for _, a := range arrivals {
				if err = h.dispatch.Dispatch(ctx, a); err != nil {
					break
				}
			}
		}
		if err != nil {
			h.log.Error(ctx, "queued arrival failed", "message_id", msg.MessageId, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: msg.MessageId})
		}
	}
	return resp
}
