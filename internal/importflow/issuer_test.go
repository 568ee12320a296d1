package importflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

func newTestIssuer(h *harness) *Issuer {
	iss := NewIssuer(h.deps, IssuerConfig{
		URLTTL:         300 * time.Second,
		TransactionTTL: 120 * time.Second,
		Endpoint:       "abc.execute-api.us-east-1.amazonaws.com/prod",
	})
	iss.newID = func() string { return "6f1c1f2e-4a43-4d38-9a43-0d1f5f3f7a11" }
	iss.nowFunc = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return iss
}

func TestIssue_CreatesGeneratedTransactionAndPushesTarget(t *testing.T) {
	h := newHarness(t)
	iss := newTestIssuer(h)

	target, err := iss.Issue(context.Background(), clientConn, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "6f1c1f2e-4a43-4d38-9a43-0d1f5f3f7a11", target.TransactionID)
	assert.Equal(t, 300, target.Expires)
	assert.Contains(t, target.URL, bucket)
	assert.Contains(t, target.URL, target.TransactionID)

	rec, err := h.txs.Get(context.Background(), target.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, transactions.StatusGenerated, rec.Status)
	assert.Equal(t, clientConn, rec.ConnectionID)
	assert.Equal(t, "req-1", rec.RequestID)
	assert.Equal(t, int64(1_700_000_120), rec.TTL)
	assert.Equal(t, 300, rec.ExpiresIn)

	require.Len(t, h.conns.Posted[clientConn], 1)
	var pushed UploadTarget
	require.NoError(t, json.Unmarshal(h.conns.Posted[clientConn][0], &pushed))
	assert.Equal(t, *target, pushed)
}

func TestIssue_PresignFailureCreatesNothing(t *testing.T) {
	h := newHarness(t)
	h.s3.PresignErr = errors.New("signer unavailable")

	_, err := newTestIssuer(h).Issue(context.Background(), clientConn, "req-1")
	require.Error(t, err)
	assert.Equal(t, 0, h.dynamo.Count(table))
	assert.Empty(t, h.conns.Posted[clientConn])
}

func TestIssue_CreateFailurePushesNothing(t *testing.T) {
	h := newHarness(t)
	h.dynamo.Err = errors.New("throttled")

	_, err := newTestIssuer(h).Issue(context.Background(), clientConn, "req-1")
	require.Error(t, err)
	assert.Empty(t, h.conns.Posted[clientConn])
}

func TestIssue_ClosedConnectionStillCreatesRecord(t *testing.T) {
	h := newHarness(t)

	target, err := newTestIssuer(h).Issue(context.Background(), "conn-gone", "req-1")
	require.NoError(t, err)
	assert.Equal(t, transactions.StatusGenerated, h.status(t, target.TransactionID))
}
