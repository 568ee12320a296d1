package awstest

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
)

// Connections fakes the WebSocket management API. Unknown connections are Gone.
type Connections struct {
	mu     sync.Mutex
	open   map[string]bool
	Posted map[string][][]byte
	Closed []string

	PostErr error
}

func NewConnections(open ...string) *Connections {
	c := &Connections{open: map[string]bool{}, Posted: map[string][][]byte{}}
	for _, id := range open {
		c.open[id] = true
	}
	return c
}

// Open marks a connection as live.
func (c *Connections) Open(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open[id] = true
}

// IsOpen reports whether the connection is still live.
func (c *Connections) IsOpen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open[id]
}

func (c *Connections) GetConnection(ctx context.Context, in *apigatewaymanagementapi.GetConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.GetConnectionOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open[*in.ConnectionId] {
		return nil, &apigwtypes.GoneException{}
	}
	return &apigatewaymanagementapi.GetConnectionOutput{}, nil
}

func (c *Connections) PostToConnection(ctx context.Context, in *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PostErr != nil {
		return nil, c.PostErr
	}
	if !c.open[*in.ConnectionId] {
		return nil, &apigwtypes.GoneException{}
	}
	c.Posted[*in.ConnectionId] = append(c.Posted[*in.ConnectionId], in.Data)
	return &apigatewaymanagementapi.PostToConnectionOutput{}, nil
}

func (c *Connections) DeleteConnection(ctx context.Context, in *apigatewaymanagementapi.DeleteConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.DeleteConnectionOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open[*in.ConnectionId] {
		return nil, &apigwtypes.GoneException{}
	}
	delete(c.open, *in.ConnectionId)
	c.Closed = append(c.Closed, *in.ConnectionId)
	return &apigatewaymanagementapi.DeleteConnectionOutput{}, nil
}
