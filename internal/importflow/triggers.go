package importflow

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-invoice-importflow/internal/invoices"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

// Trigger is one of ClientControlMessage, ObjectArrived or StoreChange.
type Trigger interface {
	trigger()
}

// ClientControlMessage is a request received on the control channel.
type ClientControlMessage struct {
	Action        string
	TransactionID string
	ConnectionID  string
	RequestID     string
}

// ObjectArrived reports a new object at the write target. ConnectionID is set only when
// the source knows which connection produced the object.
type ObjectArrived struct {
	Bucket       string
	Key          string
	ConnectionID string
}

type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeModify ChangeKind = "MODIFY"
	ChangeRemove ChangeKind = "REMOVE"
)

// Image is a raw item as seen by the change feed.
type Image map[string]types.AttributeValue

// StoreChange is a single change-feed record.
type StoreChange struct {
	Kind   ChangeKind
	Before Image
	After  Image
}

func (ClientControlMessage) trigger() {}
func (ObjectArrived) trigger()        {}
func (StoreChange) trigger()          {}

// Partition returns the item's partition key, or "".
func (img Image) Partition() string {
	if s, ok := img["pk"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

// IsTransaction reports whether the image is a transaction item.
func (img Image) IsTransaction() bool {
	return img.Partition() == transactions.PartitionKey
}

// IsInvoice reports whether the image is a committed invoice item.
func (img Image) IsInvoice() bool {
	return strings.HasPrefix(img.Partition(), invoices.PartitionPrefix)
}

func (img Image) Transaction() (*transactions.Record, error) {
	var rec transactions.Record
	if err := attributevalue.UnmarshalMap(img, &rec); err != nil {
		return nil, fmt.Errorf("%w: decode transaction image: %v", ErrMalformedTrigger, err)
	}
	if rec.TransactionID == "" {
		return nil, fmt.Errorf("%w: transaction image without id", ErrMalformedTrigger)
	}
	return &rec, nil
}

func (img Image) Invoice() (*invoices.Invoice, error) {
	var inv invoices.Invoice
	if err := attributevalue.UnmarshalMap(img, &inv); err != nil {
		return nil, fmt.Errorf("%w: decode invoice image: %v", ErrMalformedTrigger, err)
	}
	return &inv, nil
}

// ImageOf marshals a transaction record into a change-feed image.
func ImageOf(rec transactions.Record) (Image, error) {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction image: %w", err)
	}
	return Image(item), nil
}
