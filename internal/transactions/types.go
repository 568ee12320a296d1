package transactions

import "time"

// Status is the lifecycle state of an import transaction.
type Status string

// Stored statuses.
const (
	StatusGenerated            Status = "GENERATED"
	StatusReceived             Status = "RECEIVED"
	StatusProcessed            Status = "PROCESSED"
	StatusCancelled            Status = "CANCELLED"
	StatusInvoiceNumberInvalid Status = "INVOICE_NUMBER_INVALID"
)

// Response-only statuses; never persisted.
const (
	StatusNotFound Status = "NOT_FOUND"
	StatusTimeout  Status = "TIMEOUT"
)

// PartitionKey is the fixed partition holding every transaction item.
const PartitionKey = "#transaction"

// IsTerminal reports whether no further transition is accepted from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusProcessed, StatusCancelled, StatusInvoiceNumberInvalid, StatusNotFound, StatusTimeout:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusGenerated: {StatusReceived, StatusCancelled},
	StatusReceived:  {StatusProcessed, StatusInvoiceNumberInvalid},
}

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Record is the transaction item stored in the invoices table.
type Record struct {
	PK            string `dynamodbav:"pk"` // always PartitionKey
	TransactionID string `dynamodbav:"sk"`
	Status        Status `dynamodbav:"status"`
	CreatedAt     int64  `dynamodbav:"created_at"` // epoch millis
	TTL           int64  `dynamodbav:"ttl"`        // epoch seconds, DynamoDB TTL attribute
	ConnectionID  string `dynamodbav:"connection_id"`
	RequestID     string `dynamodbav:"request_id"`
	ExpiresIn     int    `dynamodbav:"expires_in"` // processing window, seconds
	Endpoint      string `dynamodbav:"endpoint"`
}

// ExpiresAt is the absolute instant the store may evict the record.
func (r Record) ExpiresAt() time.Time {
	return time.Unix(r.TTL, 0)
}
