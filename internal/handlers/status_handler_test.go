package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-invoice-importflow/internal/aws/awstest"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

const txID = "0b8a4a4e-8d6b-4f4a-9d52-2f1d7c3b8e01"

func newRouter(reader StatusReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterImportRoutes(r, HandlerConfig{Transactions: reader})
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestImportStatus_Found(t *testing.T) {
	store := transactions.NewStore(awstest.NewDynamo(), "invoices")
	_, err := store.Create(context.Background(), transactions.Record{
		TransactionID: txID,
		Status:        transactions.StatusReceived,
		ExpiresIn:     300,
	})
	require.NoError(t, err)

	w := get(newRouter(store), "/imports/"+txID)
	require.Equal(t, http.StatusOK, w.Code)

	var body ImportStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, txID, body.TransactionID)
	assert.Equal(t, transactions.StatusReceived, body.Status)
	assert.Equal(t, 300, body.ExpiresIn)
}

func TestImportStatus_NotFound(t *testing.T) {
	store := transactions.NewStore(awstest.NewDynamo(), "invoices")

	w := get(newRouter(store), "/imports/"+txID)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body ImportStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, transactions.StatusNotFound, body.Status)
}

func TestImportStatus_InvalidID(t *testing.T) {
	store := transactions.NewStore(awstest.NewDynamo(), "invoices")

	w := get(newRouter(store), "/imports/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_failed")
}

func TestImportStatus_StoreFailure(t *testing.T) {
	mock := awstest.NewDynamo()
	mock.Err = errors.New("throttled")

	w := get(newRouter(transactions.NewStore(mock, "invoices")), "/imports/"+txID)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
