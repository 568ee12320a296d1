package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-invoice-importflow/internal/app"
	"github.com/imrishuroy/go-invoice-importflow/internal/config"
	"github.com/imrishuroy/go-invoice-importflow/internal/handlers"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterImportRoutes(r, cfg)

	return r
}

func main() {
	ctx := context.Background()
	rt, err := app.New(ctx, config.RequireInvoicesTable)
	if err != nil {
		log.Fatalf("failed to init api: %v", err)
	}
	defer rt.Log.Sync()

	r := setupRouter(handlers.HandlerConfig{
		Transactions: rt.Transactions(),
		Log:          rt.Log,
	})

	// if RUN_LOCAL is true, run local HTTP server for development.
	if rt.Config.RunLocal {
		addr := ":8080"
		rt.Log.Info(ctx, "running local server", "addr", addr)
		if err := r.Run(addr); err != nil {
			rt.Log.Fatal(ctx, "failed to run local server", "error", err)
		}
		return
	}

	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(app.Invocation(ctx), req)
	})
}
