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
	rt, err := app.New(ctx, config.RequireInvoicesTable, config.RequireBucket, config.RequireWSAPI)
	if err != nil {
		log.Fatalf("wsapi init: %v", err)
	}
	defer rt.Log.Sync()

	deps, err := rt.Deps()
	if err != nil {
		rt.Log.Fatal(ctx, "wsapi init", "error", err)
	}
	h := NewHandler(&importflow.Dispatcher{
		Issuer:    rt.Issuer(deps),
		Canceller: importflow.NewCanceller(deps),
	}, rt.Log)

	lambda.Start(func(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
		return h.Handle(app.Invocation(ctx), req)
	})
}
