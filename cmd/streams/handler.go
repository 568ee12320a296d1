package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-invoice-importflow/internal/importflow"
	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
	"github.com/imrishuroy/go-invoice-importflow/internal/triggers"
)

type dispatcher interface {
	Dispatch(ctx context.Context, t importflow.Trigger) error
}

// Handler consumes the invoices table change feed.
type Handler struct {
	dispatch dispatcher
	log      *logger.Logger
}

func NewHandler(d dispatcher, log *logger.Logger) *Handler {
	return &Handler{dispatch: d, log: log}
}

// Handle dispatches each stream record; failed records are reported so the batch is retried from there.
func (h *Handler) Handle(ctx context.Context, ev events.DynamoDBEvent) (events.DynamoDBEventResponse, error) {
	var resp events.DynamoDBEventResponse
	for _, rec := range ev.Records {
		changes, err := triggers.FromDynamoDB(events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{rec}})
		if err == nil {
			for _, change := range changes {
				if err = h.dispatch.Dispatch(ctx, change); err != nil {
					break
				}
			}
		}
		if err != nil {
			h.log.Error(ctx, "stream record failed", "event_id", rec.EventID, "event", rec.EventName, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.DynamoDBBatchItemFailure{
				ItemIdentifier: rec.Change.SequenceNumber,
			})
			// stream order matters: stop at the first failure
			break
		}
	}
	return resp, nil
}
