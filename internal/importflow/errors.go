package importflow

import (
	"errors"

	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

// ErrMalformedTrigger fails the invocation so the trigger source can retry or dead-letter it.
var ErrMalformedTrigger = errors.New("malformed trigger payload")

// ErrUnroutable is returned when a trigger has no handler wired in this entrypoint.
var ErrUnroutable = errors.New("no handler for trigger")

func isNotFound(err error) bool {
	return errors.Is(err, transactions.ErrNotFound)
}

func isConditionFailed(err error) bool {
	return errors.Is(err, transactions.ErrConditionFailed)
}
