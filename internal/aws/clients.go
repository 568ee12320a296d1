package aws

import (
	"context"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AWSClients bundles all service clients for convenience.
type AWSClients struct {
	DynamoDB    DynamoDBAPI
	S3          S3API
	Presign     PresignAPI
	Connections ConnectionsAPI
	CloudWatch  CloudWatchAPI
}

// NewAWSClients loads AWS config and returns concrete service clients that implement our interfaces.
// wsEndpoint is the WebSocket API endpoint including the stage; an empty value leaves
// Connections nil for entrypoints that never push to clients.
func NewAWSClients(ctx context.Context, wsEndpoint string) (*AWSClients, error) {
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	s3c := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != nil {
			o.UsePathStyle = true // localstack
		}
	})

	clients := &AWSClients{
		DynamoDB:   dynamodb.NewFromConfig(cfg),
		S3:         s3c,
		Presign:    s3.NewPresignClient(s3c),
		CloudWatch: cloudwatch.NewFromConfig(cfg),
	}
	if wsEndpoint != "" {
		endpoint := ConnectionsEndpoint(wsEndpoint)
		clients.Connections = apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
			o.BaseEndpoint = sdkaws.String(endpoint)
		})
	}
	return clients, nil
}

// ConnectionsEndpoint turns a WebSocket API URL (wss://id.execute-api.region.amazonaws.com/prod)
// into the HTTPS management endpoint the SDK expects.
func ConnectionsEndpoint(wsEndpoint string) string {
	e := strings.TrimSpace(wsEndpoint)
	switch {
	case strings.HasPrefix(e, "wss://"):
		e = "https://" + strings.TrimPrefix(e, "wss://")
	case strings.HasPrefix(e, "ws://"):
		e = "http://" + strings.TrimPrefix(e, "ws://")
	case !strings.HasPrefix(e, "https://") && !strings.HasPrefix(e, "http://"):
		e = "https://" + e
	}
	return strings.TrimSuffix(e, "/")
}
