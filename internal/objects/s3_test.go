package objects

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-invoice-importflow/internal/aws/awstest"
)

func TestIssueWriteTarget(t *testing.T) {
	fake := awstest.NewS3()
	store := NewStore(fake, fake, "invoices-bucket")

	url, err := store.IssueWriteTarget(context.Background(), "tx-1", 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://invoices-bucket.s3.amazonaws.com/tx-1?X-Amz-Expires=300", url)
	require.Len(t, fake.Presigns, 1)
	assert.Equal(t, "tx-1", *fake.Presigns[0].Key)
}

func TestIssueWriteTarget_Error(t *testing.T) {
	fake := awstest.NewS3()
	fake.PresignErr = errors.New("no credentials")
	store := NewStore(fake, fake, "b")

	_, err := store.IssueWriteTarget(context.Background(), "tx-1", time.Minute)
	assert.Error(t, err)
}

func TestGetDelete(t *testing.T) {
	fake := awstest.NewS3()
	store := NewStore(fake, fake, "b")
	fake.Put("b", "tx-1", []byte(`{"invoiceNumber":"INV-0001"}`))

	body, err := store.Get(context.Background(), "b", "tx-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"invoiceNumber":"INV-0001"}`, string(body))

	require.NoError(t, store.Delete(context.Background(), "b", "tx-1"))
	assert.False(t, fake.Has("b", "tx-1"))

	_, err = store.Get(context.Background(), "b", "tx-1")
	assert.Error(t, err)
}
