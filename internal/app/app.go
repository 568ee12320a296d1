// Package app wires configuration, logging and AWS clients into the import workflow
// for the Lambda entrypoints.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/imrishuroy/go-invoice-importflow/internal/analytics"
	"github.com/imrishuroy/go-invoice-importflow/internal/aws"
	"github.com/imrishuroy/go-invoice-importflow/internal/config"
	"github.com/imrishuroy/go-invoice-importflow/internal/importflow"
	"github.com/imrishuroy/go-invoice-importflow/internal/invoices"
	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
	"github.com/imrishuroy/go-invoice-importflow/internal/notify"
	"github.com/imrishuroy/go-invoice-importflow/internal/objects"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

// Runtime is the per-process state shared by every invocation.
type Runtime struct {
	Config  config.Config
	Log     *logger.Logger
	Clients *aws.AWSClients
}

// New loads config and builds clients. The push channel is only wired when the
// WebSocket endpoint is configured.
func New(ctx context.Context, reqs ...config.Requirement) (*Runtime, error) {
	cfg, err := config.Load(reqs...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	clients, err := aws.NewAWSClients(ctx, cfg.WSAPI)
	if err != nil {
		return nil, fmt.Errorf("init aws clients: %w", err)
	}
	return &Runtime{Config: cfg, Log: log, Clients: clients}, nil
}

func (r *Runtime) Transactions() *transactions.Store {
	return transactions.NewStore(r.Clients.DynamoDB, r.Config.Tables.Invoices)
}

func (r *Runtime) Metrics() importflow.OutcomeRecorder {
	if !r.Config.Metrics.Enabled {
		return aws.NopMetrics{}
	}
	return aws.NewMetricsPublisher(r.Clients.CloudWatch, r.Config.Metrics.Namespace)
}

// Deps builds the workflow collaborators. It needs the push channel.
func (r *Runtime) Deps() (importflow.Deps, error) {
	if r.Clients.Connections == nil {
		return importflow.Deps{}, errors.New("push channel requires INVOICE_WSAPI_ENDPOINT")
	}
	return importflow.Deps{
		Transactions: r.Transactions(),
		Invoices:     invoices.NewStore(r.Clients.DynamoDB, r.Config.Tables.Invoices),
		Objects:      objects.NewStore(r.Clients.S3, r.Clients.Presign, r.Config.Bucket),
		Notifier:     notify.NewChannel(r.Clients.Connections, r.Log),
		Metrics:      r.Metrics(),
		Log:          r.Log,
	}, nil
}

func (r *Runtime) Issuer(deps importflow.Deps) *importflow.Issuer {
	return importflow.NewIssuer(deps, importflow.IssuerConfig{
		URLTTL:         r.Config.Import.UploadURLTTL,
		TransactionTTL: r.Config.Import.TransactionTTL,
		Endpoint:       r.Config.WSAPI,
	})
}

func (r *Runtime) Recorder() *importflow.Recorder {
	return importflow.NewRecorder(analytics.NewStore(r.Clients.DynamoDB, r.Config.Tables.Events), r.Config.Analytics.EventTTL, r.Log)
}

// Invocation tags ctx with the Lambda request id, when there is one.
func Invocation(ctx context.Context) context.Context {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return logger.WithRequestID(ctx, lc.AwsRequestID)
	}
	return ctx
}
