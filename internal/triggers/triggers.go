// Package triggers converts Lambda event payloads into importflow triggers.
package triggers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-invoice-importflow/internal/importflow"
)

// controlBody is what clients send on the WebSocket.
type controlBody struct {
	Action        string `json:"action"`
	TransactionID string `json:"transactionId"`
}

// FromWebsocket builds a control message. The route key wins over the body's action
// so custom routes map onto the same handler.
func FromWebsocket(req events.APIGatewayWebsocketProxyRequest) (importflow.ClientControlMessage, error) {
	msg := importflow.ClientControlMessage{
		Action:       req.RequestContext.RouteKey,
		ConnectionID: req.RequestContext.ConnectionID,
		RequestID:    req.RequestContext.RequestID,
	}

	if strings.TrimSpace(req.Body) != "" {
		var body controlBody
		if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
			return msg, fmt.Errorf("%w: control body: %v", importflow.ErrMalformedTrigger, err)
		}
		msg.TransactionID = body.TransactionID
		if msg.Action == "" || msg.Action == "$default" {
			msg.Action = body.Action
		}
	}
	return msg, nil
}

// FromS3 returns one arrival per created object. Keys arrive URL-encoded.
func FromS3(ev events.S3Event) ([]importflow.ObjectArrived, error) {
	out := make([]importflow.ObjectArrived, 0, len(ev.Records))
	for _, rec := range ev.Records {
		if !strings.HasPrefix(rec.EventName, "ObjectCreated:") {
			continue
		}
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: object key %q: %v", importflow.ErrMalformedTrigger, rec.S3.Object.Key, err)
		}
		out = append(out, importflow.ObjectArrived{Bucket: rec.S3.Bucket.Name, Key: key})
	}
	return out, nil
}

// FromSQS unwraps S3 notifications queued on SQS. The s3:TestEvent sent when the
// notification is configured carries no records and yields nothing.
func FromSQS(ev events.SQSEvent) ([]importflow.ObjectArrived, error) {
	var out []importflow.ObjectArrived
	for _, msg := range ev.Records {
		var inner events.S3Event
		if err := json.Unmarshal([]byte(msg.Body), &inner); err != nil {
			return nil, fmt.Errorf("%w: sqs message %s: %v", importflow.ErrMalformedTrigger, msg.MessageId, err)
		}
		arrivals, err := FromS3(inner)
		if err != nil {
			return nil, err
		}
		out = append(out, arrivals...)
	}
	return out, nil
}

// FromDynamoDB converts stream records into store changes.
func FromDynamoDB(ev events.DynamoDBEvent) ([]importflow.StoreChange, error) {
	out := make([]importflow.StoreChange, 0, len(ev.Records))
	for _, rec := range ev.Records {
		kind := importflow.ChangeKind(rec.EventName)
		switch kind {
		case importflow.ChangeInsert, importflow.ChangeModify, importflow.ChangeRemove:
		default:
			return nil, fmt.Errorf("%w: stream event %q", importflow.ErrMalformedTrigger, rec.EventName)
		}

		before, err := ConvertImage(rec.Change.OldImage)
		if err != nil {
			return nil, err
		}
		after, err := ConvertImage(rec.Change.NewImage)
		if err != nil {
			return nil, err
		}
		out = append(out, importflow.StoreChange{Kind: kind, Before: before, After: after})
	}
	return out, nil
}
