package importflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

// UploadTarget is pushed to the client after a getImportUrl request.
type UploadTarget struct {
	URL           string `json:"url"`
	Expires       int    `json:"expires"` // seconds the URL stays valid
	TransactionID string `json:"transactionId"`
}

type IssuerConfig struct {
	// URLTTL is how long the presigned target is valid; it is also the processing window.
	URLTTL time.Duration
	// TransactionTTL is how long the record lives before the store evicts it.
	TransactionTTL time.Duration
	// Endpoint is the push-channel endpoint recorded on the transaction.
	Endpoint string
}

// Issuer mints write targets and seeds transactions in GENERATED.
type Issuer struct {
	deps    Deps
	cfg     IssuerConfig
	newID   func() string
	nowFunc func() time.Time
}

func NewIssuer(deps Deps, cfg IssuerConfig) *Issuer {
	return &Issuer{
		deps:    deps,
		cfg:     cfg,
		newID:   uuid.NewString,
		nowFunc: time.Now,
	}
}

// Issue creates a transaction for connectionID and pushes the target to it.
// Nothing is pushed if the record cannot be created.
func (i *Issuer) Issue(ctx context.Context, connectionID, requestID string) (*UploadTarget, error) {
	log := i.deps.logger()
	id := i.newID()
	ctx = logger.WithTransactionID(ctx, id)

	url, err := i.deps.Objects.IssueWriteTarget(ctx, id, i.cfg.URLTTL)
	if err != nil {
		return nil, fmt.Errorf("issue write target: %w", err)
	}

	now := i.nowFunc()
	_, err = i.deps.Transactions.Create(ctx, transactions.Record{
		TransactionID: id,
		Status:        transactions.StatusGenerated,
		CreatedAt:     now.UnixMilli(),
		TTL:           now.Add(i.cfg.TransactionTTL).Unix(),
		ConnectionID:  connectionID,
		RequestID:     requestID,
		ExpiresIn:     int(i.cfg.URLTTL.Seconds()),
		Endpoint:      i.cfg.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	target := &UploadTarget{
		URL:           url,
		Expires:       int(i.cfg.URLTTL.Seconds()),
		TransactionID: id,
	}
	payload, err := json.Marshal(target)
	if err != nil {
		return nil, fmt.Errorf("marshal upload target: %w", err)
	}
	if !i.deps.Notifier.Send(ctx, connectionID, payload) {
		log.Warn(ctx, "upload target not delivered")
	}

	log.Info(ctx, "import url issued", "expires_in", target.Expires)
	return target, nil
}
