package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-invoice-importflow/internal/app"
	"github.com/imrishuroy/go-invoice-importflow/internal/config"
	"github.com/imrishuroy/go-invoice-importflow/internal/importflow"
	"github.com/imrishuroy/go-invoice-importflow/internal/invoices"
)

func main() {
	ctx := context.Background()
	rt, err := app.New(ctx, config.RequireInvoicesTable, config.RequireBucket, config.RequireWSAPI)
	if err != nil {
		log.Fatalf("importer init: %v", err)
	}
	defer rt.Log.Sync()

	deps, err := rt.Deps()
	if err != nil {
		rt.Log.Fatal(ctx, "importer init", "error", err)
	}
	h := NewHandler(&importflow.Dispatcher{
		Processor: importflow.NewProcessor(deps, invoices.NewParser(nil)),
	}, rt.Log)

	// RUN_LOCAL=true replays a single S3 notification from LOCAL_EVENT_FILE.
	if rt.Config.RunLocal {
		path := os.Getenv("LOCAL_EVENT_FILE")
		raw, err := os.ReadFile(path)
		if err != nil {
			rt.Log.Fatal(ctx, "read local event", "path", path, "error", err)
		}
		if _, err := h.Handle(ctx, json.RawMessage(raw)); err != nil {
			rt.Log.Fatal(ctx, "local handler error", "error", err)
		}
		return
	}

	lambda.Start(func(ctx context.Context, raw json.RawMessage) (*events.SQSEventResponse, error) {
		return h.Handle(app.Invocation(ctx), raw)
	})
}
