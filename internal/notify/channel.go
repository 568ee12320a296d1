// Package notify pushes messages to WebSocket clients through the API Gateway
// management API. Delivery is best-effort: failures are logged and reported as false.
package notify

import (
	"context"
	"encoding/json"
	"errors"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"

	"github.com/imrishuroy/go-invoice-importflow/internal/aws"
	"github.com/imrishuroy/go-invoice-importflow/internal/logger"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

// StatusMessage is the status push sent to clients.
type StatusMessage struct {
	TransactionID string              `json:"transactionId"`
	Status        transactions.Status `json:"status"`
}

// Channel delivers payloads to connections and can close them.
type Channel struct {
	api aws.ConnectionsAPI
	log *logger.Logger
}

func NewChannel(api aws.ConnectionsAPI, log *logger.Logger) *Channel {
	if log == nil {
		log = logger.NewNop()
	}
	return &Channel{api: api, log: log}
}

// alive checks the connection before acting on it.
func (c *Channel) alive(ctx context.Context, connectionID string) bool {
	_, err := c.api.GetConnection(ctx, &apigatewaymanagementapi.GetConnectionInput{
		ConnectionId: sdkaws.String(connectionID),
	})
	if err != nil {
		c.logFailure(ctx, "connection lookup failed", connectionID, err)
		return false
	}
	return true
}

func (c *Channel) logFailure(ctx context.Context, msg, connectionID string, err error) {
	var gone *apigwtypes.GoneException
	if errors.As(err, &gone) {
		c.log.Info(ctx, "client already disconnected", "connection_id", connectionID)
		return
	}
	c.log.Warn(ctx, msg, "connection_id", connectionID, "error", err)
}

// Send posts payload to the connection.
func (c *Channel) Send(ctx context.Context, connectionID string, payload []byte) bool {
	if connectionID == "" || !c.alive(ctx, connectionID) {
		return false
	}
	_, err := c.api.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: sdkaws.String(connectionID),
		Data:         payload,
	})
	if err != nil {
		c.logFailure(ctx, "post to connection failed", connectionID, err)
		return false
	}
	return true
}

// SendJSON marshals v and sends it.
func (c *Channel) SendJSON(ctx context.Context, connectionID string, v interface{}) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		c.log.Error(ctx, "marshal push payload", "error", err)
		return false
	}
	return c.Send(ctx, connectionID, payload)
}

// SendStatus pushes {transactionId, status}.
func (c *Channel) SendStatus(ctx context.Context, transactionID, connectionID string, status transactions.Status) bool {
	ok := c.SendJSON(ctx, connectionID, StatusMessage{TransactionID: transactionID, Status: status})
	c.log.Debug(ctx, "status pushed", "transaction_id", transactionID, "connection_id", connectionID, "status", status, "delivered", ok)
	return ok
}

// Disconnect force-closes the connection.
func (c *Channel) Disconnect(ctx context.Context, connectionID string) bool {
	if connectionID == "" || !c.alive(ctx, connectionID) {
		return false
	}
	_, err := c.api.DeleteConnection(ctx, &apigatewaymanagementapi.DeleteConnectionInput{
		ConnectionId: sdkaws.String(connectionID),
	})
	if err != nil {
		c.logFailure(ctx, "delete connection failed", connectionID, err)
		return false
	}
	return true
}
