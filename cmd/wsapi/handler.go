package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-invoice-importflow/internal/importflow"
	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
	"github.com/imrishuroy/go-invoice-importflow/internal/triggers"
)

type dispatcher interface {
	Dispatch(ctx context.Context, t importflow.Trigger) error
}

// Handler serves the WebSocket control channel.
type Handler struct {
	dispatch dispatcher
	log      *logger.Logger
}

func NewHandler(d dispatcher, log *logger.Logger) *Handler {
	return &Handler{dispatch: d, log: log}
}

func ok() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	rc := req.RequestContext
	ctx = logger.WithConnectionID(ctx, rc.ConnectionID)

	switch rc.RouteKey {
	case "$connect", "$disconnect":
		h.log.Debug(ctx, "connection event", "route", rc.RouteKey)
		return ok(), nil
	}

	msg, err := triggers.FromWebsocket(req)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, err
	}
	if err := h.dispatch.Dispatch(ctx, msg); err != nil {
		h.log.Error(ctx, "control message failed", "action", msg.Action, "error", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}
	return ok(), nil
}
