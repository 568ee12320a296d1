// Package analytics stores short-lived audit events derived from store mutations.
package analytics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/imrishuroy/go-invoice-importflow/internal/aws"
)

// EventInvoiceCreated is appended when an invoice item is inserted.
const EventInvoiceCreated = "INVOICE_CREATED"

// Info is the snapshot of the triggering record.
type Info struct {
	Transaction string `dynamodbav:"transaction"`
	ProductID   string `dynamodbav:"product_id"`
	Quantity    int    `dynamodbav:"quantity"`
}

// Event is an immutable audit entry keyed by (subject, type#timestamp).
type Event struct {
	PK        string `dynamodbav:"pk"`
	SK        string `dynamodbav:"sk"`
	EventType string `dynamodbav:"event_type"`
	Email     string `dynamodbav:"email"`
	CreatedAt int64  `dynamodbav:"created_at"` // epoch millis
	TTL       int64  `dynamodbav:"ttl"`
	Info      Info   `dynamodbav:"info"`
}

// Store appends events to the events table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{client: client, tableName: tableName, nowFunc: time.Now}
}

// Append writes ev, stamping CreatedAt/SK when unset and TTL from ttl.
func (s *Store) Append(ctx context.Context, ev Event, ttl time.Duration) (*Event, error) {
	now := s.nowFunc()
	if ev.CreatedAt == 0 {
		ev.CreatedAt = now.UnixMilli()
	}
	if ev.SK == "" {
		ev.SK = ev.EventType + "#" + strconv.FormatInt(ev.CreatedAt, 10)
	}
	ev.TTL = now.Add(ttl).Unix()

	item, err := attributevalue.MarshalMap(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(sk)"),
	}); err != nil {
		return nil, fmt.Errorf("put event: %w", err)
	}
	return &ev, nil
}
