package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-invoice-importflow/internal/aws/awstest"
)

func TestAppend(t *testing.T) {
	mock := awstest.NewDynamo()
	store := NewStore(mock, "events")
	now := time.UnixMilli(1700000000123)
	store.nowFunc = func() time.Time { return now }

	ev, err := store.Append(context.Background(), Event{
		PK:        "#invoice_INV-0001",
		EventType: EventInvoiceCreated,
		Email:     "alice@example.com",
		Info:      Info{Transaction: "tx-1", ProductID: "p1", Quantity: 2},
	}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "INVOICE_CREATED#1700000000123", ev.SK)
	assert.Equal(t, now.Add(time.Hour).Unix(), ev.TTL)

	item := mock.Item("events", "#invoice_INV-0001", ev.SK)
	require.NotNil(t, item)
	var got Event
	require.NoError(t, attributevalue.UnmarshalMap(item, &got))
	assert.Equal(t, "tx-1", got.Info.Transaction)
}

func TestAppend_Immutable(t *testing.T) {
	store := NewStore(awstest.NewDynamo(), "events")
	ev := Event{PK: "#invoice_X", SK: "INVOICE_CREATED#1", EventType: EventInvoiceCreated}

	_, err := store.Append(context.Background(), ev, time.Hour)
	require.NoError(t, err)
	_, err = store.Append(context.Background(), ev, time.Hour)
	assert.Error(t, err)
}
