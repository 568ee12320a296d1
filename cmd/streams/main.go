package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-invoice-importflow/internal/app"
	"github.com/imrishuroy/go-invoice-importflow/internal/config"
	"github.com/imrishuroy/go-invoice-importflow/internal/importflow"
)

func main() {
	ctx := context.Background()
	rt, err := app.New(ctx, config.RequireInvoicesTable, config.RequireEventsTable, config.RequireWSAPI)
	if err != nil {
		log.Fatalf("streams init: %v", err)
	}
	defer rt.Log.Sync()

	deps, err := rt.Deps()
	if err != nil {
		rt.Log.Fatal(ctx, "streams init", "error", err)
	}
	h := NewHandler(&importflow.Dispatcher{
		Reaper:   importflow.NewReaper(deps),
		Recorder: rt.Recorder(),
	}, rt.Log)

	lambda.Start(func(ctx context.Context, ev events.DynamoDBEvent) (events.DynamoDBEventResponse, error) {
		return h.Handle(app.Invocation(ctx), ev)
	})
}
