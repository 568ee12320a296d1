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
	rt, err := app.New(ctx, config.RequireInvoicesTable)
	if err != nil {
		log.Fatalf("sweeper init: %v", err)
	}
	defer rt.Log.Sync()

	// With SWEEP_NOTIFY the sweeper reaps removals itself instead of relying on the change feed.
	var reaper *importflow.Reaper
	if rt.Config.Sweep.Notify {
		deps, err := rt.Deps()
		if err != nil {
			rt.Log.Fatal(ctx, "sweeper init", "error", err)
		}
		reaper = importflow.NewReaper(deps)
	}
	sweeper := importflow.NewSweeper(rt.Transactions(), reaper, rt.Config.Sweep.Limit, rt.Log)

	if rt.Config.RunLocal {
		res, err := sweeper.Sweep(ctx)
		if err != nil {
			rt.Log.Fatal(ctx, "local sweep failed", "error", err)
		}
		rt.Log.Info(ctx, "local sweep", "result", res)
		return
	}

	lambda.Start(func(ctx context.Context, _ events.CloudWatchEvent) (importflow.SweepResult, error) {
		return sweeper.Sweep(app.Invocation(ctx))
	})
}
