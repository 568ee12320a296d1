package importflow

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-invoice-importflow/internal/aws/awstest"
	"github.com/imrishuroy/go-invoice-importflow/internal/invoices"
	"github.com/imrishuroy/go-invoice-importflow/internal/notify"
	"github.com/imrishuroy/go-invoice-importflow/internal/objects"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

const (
	table      = "invoices"
	bucket     = "invoice-uploads"
	clientConn = "conn-client"
)

// outcomes collects published outcome metrics.
type outcomes struct {
	mu       sync.Mutex
	statuses []string
}

func (o *outcomes) RecordOutcome(_ context.Context, status string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
	return nil
}

func (o *outcomes) all() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.statuses...)
}

// harness wires the real stores onto in-memory AWS fakes.
type harness struct {
	dynamo  *awstest.Dynamo
	s3      *awstest.S3
	conns   *awstest.Connections
	metrics *outcomes
	txs     *transactions.Store
	deps    Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		dynamo:  awstest.NewDynamo(),
		s3:      awstest.NewS3(),
		conns:   awstest.NewConnections(clientConn),
		metrics: &outcomes{},
	}
	h.txs = transactions.NewStore(h.dynamo, table)
	h.deps = Deps{
		Transactions: h.txs,
		Invoices:     invoices.NewStore(h.dynamo, table),
		Objects:      objects.NewStore(h.s3, h.s3, bucket),
		Notifier:     notify.NewChannel(h.conns, nil),
		Metrics:      h.metrics,
	}
	return h
}

// seed stores a transaction owned by clientConn in the given status.
func (h *harness) seed(t *testing.T, id string, status transactions.Status) {
	t.Helper()
	_, err := h.txs.Create(context.Background(), transactions.Record{
		TransactionID: id,
		Status:        status,
		TTL:           time.Now().Add(2 * time.Minute).Unix(),
		ConnectionID:  clientConn,
		ExpiresIn:     300,
	})
	require.NoError(t, err)
}

func (h *harness) status(t *testing.T, id string) transactions.Status {
	t.Helper()
	rec, err := h.txs.Get(context.Background(), id)
	require.NoError(t, err)
	return rec.Status
}

// pushed decodes every status message delivered to conn, in order.
func (h *harness) pushed(t *testing.T, conn string) []transactions.Status {
	t.Helper()
	var out []transactions.Status
	for _, raw := range h.conns.Posted[conn] {
		var msg notify.StatusMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		out = append(out, msg.Status)
	}
	return out
}

// invoiceCount counts committed invoice items for customer.
func (h *harness) invoiceCount(customer string) int {
	n := 0
	for _, num := range []string{"INV-2024-001", "INV-2024-002"} {
		if h.dynamo.Item(table, invoices.CustomerKey(customer), num) != nil {
			n++
		}
	}
	return n
}

func invoiceBody(number string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"customerName":  "acme@example.com",
		"invoiceNumber": number,
		"totalValue":    1250.5,
		"productId":     "sku-42",
		"quantity":      3,
	})
	return body
}
