package importflow

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

func removal(t *testing.T, status transactions.Status) StoreChange {
	t.Helper()
	img, err := ImageOf(transactions.Record{
		PK:            transactions.PartitionKey,
		TransactionID: txID,
		Status:        status,
		ConnectionID:  clientConn,
	})
	require.NoError(t, err)
	return StoreChange{Kind: ChangeRemove, Before: img}
}

func TestReap_UnresolvedTransactionTimesOut(t *testing.T) {
	for _, stored := range []transactions.Status{transactions.StatusGenerated, transactions.StatusReceived} {
		t.Run(string(stored), func(t *testing.T) {
			h := newHarness(t)

			status, err := NewReaper(h.deps).Reap(context.Background(), removal(t, stored))
			require.NoError(t, err)
			assert.Equal(t, transactions.StatusTimeout, status)
			assert.Equal(t, []transactions.Status{transactions.StatusTimeout}, h.pushed(t, clientConn))
			assert.Equal(t, []string{clientConn}, h.conns.Closed)
			assert.Equal(t, []string{"TIMEOUT"}, h.metrics.all())
		})
	}
}

func TestReap_ResolvedTransactionIsIgnored(t *testing.T) {
	for _, stored := range []transactions.Status{
		transactions.StatusProcessed,
		transactions.StatusCancelled,
		transactions.StatusInvoiceNumberInvalid,
	} {
		t.Run(string(stored), func(t *testing.T) {
			h := newHarness(t)

			status, err := NewReaper(h.deps).Reap(context.Background(), removal(t, stored))
			require.NoError(t, err)
			assert.Equal(t, stored, status)
			assert.Empty(t, h.conns.Posted[clientConn])
			assert.Empty(t, h.conns.Closed)
			assert.Empty(t, h.metrics.all())
		})
	}
}

func TestReap_ClientAlreadyGone(t *testing.T) {
	h := newHarness(t)
	img, err := ImageOf(transactions.Record{
		PK:            transactions.PartitionKey,
		TransactionID: txID,
		Status:        transactions.StatusGenerated,
		ConnectionID:  "conn-gone",
	})
	require.NoError(t, err)

	status, err := NewReaper(h.deps).Reap(context.Background(), StoreChange{Kind: ChangeRemove, Before: img})
	require.NoError(t, err)
	assert.Equal(t, transactions.StatusTimeout, status)
	assert.Empty(t, h.conns.Posted)
	assert.Empty(t, h.conns.Closed)
}

func TestReap_IgnoresOtherChanges(t *testing.T) {
	h := newHarness(t)
	r := NewReaper(h.deps)

	insert := removal(t, transactions.StatusGenerated)
	insert.Kind, insert.After, insert.Before = ChangeInsert, insert.Before, nil
	status, err := r.Reap(context.Background(), insert)
	require.NoError(t, err)
	assert.Empty(t, status)

	invoice := StoreChange{Kind: ChangeRemove, Before: Image{
		"pk": &types.AttributeValueMemberS{Value: "#invoice_acme@example.com"},
		"sk": &types.AttributeValueMemberS{Value: "INV-2024-001"},
	}}
	status, err = r.Reap(context.Background(), invoice)
	require.NoError(t, err)
	assert.Empty(t, status)
	assert.Empty(t, h.conns.Posted)
}

func TestReap_RemovalWithoutImage(t *testing.T) {
	_, err := NewReaper(newHarness(t).deps).Reap(context.Background(), StoreChange{Kind: ChangeRemove})
	assert.ErrorIs(t, err, ErrMalformedTrigger)
}
