package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
	"github.com/imrishuroy/go-invoice-importflow/internal/validation"
)

// StatusReader reads durable transaction state.
type StatusReader interface {
	Get(ctx context.Context, transactionID string) (*transactions.Record, error)
}

// HandlerConfig groups dependencies for the imports handler.
type HandlerConfig struct {
	Transactions StatusReader
	Log          *logger.Logger
}

// ImportStatus is the polling view of a transaction.
type ImportStatus struct {
	TransactionID string              `json:"transactionId"`
	Status        transactions.Status `json:"status"`
	CreatedAt     int64               `json:"createdAt,omitempty"`
	ExpiresIn     int                 `json:"expiresIn,omitempty"`
}

// RegisterImportRoutes registers the status polling routes. Clients that missed a push
// read the stored status here.
func RegisterImportRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}

	r.GET("/imports/:transaction_id", func(c *gin.Context) {
		var uri validation.TransactionURI
		if err := validation.BindURIAndValidate(c, &uri, v); err != nil {
			// already answered 400
			return
		}
		ctx := logger.WithTransactionID(c.Request.Context(), uri.TransactionID)

		rec, err := cfg.Transactions.Get(ctx, uri.TransactionID)
		if errors.Is(err, transactions.ErrNotFound) {
			c.JSON(http.StatusNotFound, ImportStatus{TransactionID: uri.TransactionID, Status: transactions.StatusNotFound})
			return
		}
		if err != nil {
			log.Error(ctx, "read transaction status", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "status_lookup_failed"})
			return
		}

		c.JSON(http.StatusOK, ImportStatus{
			TransactionID: rec.TransactionID,
			Status:        rec.Status,
			CreatedAt:     rec.CreatedAt,
			ExpiresIn:     rec.ExpiresIn,
		})
	})
}
