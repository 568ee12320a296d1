package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/imrishuroy/go-invoice-importflow/internal/aws/awstest"
	"github.com/imrishuroy/go-invoice-importflow/internal/handlers"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := setupRouter(handlers.HandlerConfig{
		Transactions: transactions.NewStore(awstest.NewDynamo(), "invoices"),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
