package triggers

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-invoice-importflow/internal/importflow"
	"github.com/imrishuroy/go-invoice-importflow/internal/transactions"
)

func wsRequest(route, body string) events.APIGatewayWebsocketProxyRequest {
	return events.APIGatewayWebsocketProxyRequest{
		Body: body,
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{
			RouteKey:     route,
			ConnectionID: "conn-1",
			RequestID:    "req-1",
		},
	}
}

func TestFromWebsocket(t *testing.T) {
	msg, err := FromWebsocket(wsRequest("cancelImport", `{"action":"cancelImport","transactionId":"tx-1"}`))
	require.NoError(t, err)
	assert.Equal(t, importflow.ClientControlMessage{
		Action:        "cancelImport",
		TransactionID: "tx-1",
		ConnectionID:  "conn-1",
		RequestID:     "req-1",
	}, msg)

	msg, err = FromWebsocket(wsRequest("$default", `{"action":"getImportUrl"}`))
	require.NoError(t, err)
	assert.Equal(t, "getImportUrl", msg.Action)

	msg, err = FromWebsocket(wsRequest("getImportUrl", ""))
	require.NoError(t, err)
	assert.Equal(t, "getImportUrl", msg.Action)
	assert.Empty(t, msg.TransactionID)
}

func TestFromWebsocket_BadBody(t *testing.T) {
	_, err := FromWebsocket(wsRequest("cancelImport", "{nope"))
	assert.ErrorIs(t, err, importflow.ErrMalformedTrigger)
}

func s3Record(event, bucket, key string) events.S3EventRecord {
	return events.S3EventRecord{
		EventName: event,
		S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: bucket},
			Object: events.S3Object{Key: key},
		},
	}
}

func TestFromS3(t *testing.T) {
	arrivals, err := FromS3(events.S3Event{Records: []events.S3EventRecord{
		s3Record("ObjectCreated:Put", "uploads", "tx-1"),
		s3Record("ObjectRemoved:Delete", "uploads", "tx-2"),
		s3Record("ObjectCreated:Put", "uploads", "tx%3A3+x"),
	}})
	require.NoError(t, err)
	assert.Equal(t, []importflow.ObjectArrived{
		{Bucket: "uploads", Key: "tx-1"},
		{Bucket: "uploads", Key: "tx:3 x"},
	}, arrivals)
}

func TestFromS3_BadKeyEncoding(t *testing.T) {
	_, err := FromS3(events.S3Event{Records: []events.S3EventRecord{
		s3Record("ObjectCreated:Put", "uploads", "tx%zz"),
	}})
	assert.ErrorIs(t, err, importflow.ErrMalformedTrigger)
}

func TestFromSQS(t *testing.T) {
	arrivals, err := FromSQS(events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "m1", Body: `{"Records":[{"eventName":"ObjectCreated:Put","s3":{"bucket":{"name":"uploads"},"object":{"key":"tx-1"}}}]}`},
		{MessageId: "m2", Body: `{"Service":"Amazon S3","Event":"s3:TestEvent","Bucket":"uploads"}`},
	}})
	require.NoError(t, err)
	assert.Equal(t, []importflow.ObjectArrived{{Bucket: "uploads", Key: "tx-1"}}, arrivals)

	_, err = FromSQS(events.SQSEvent{Records: []events.SQSMessage{{MessageId: "m3", Body: "garbage"}}})
	assert.ErrorIs(t, err, importflow.ErrMalformedTrigger)
}

func TestFromDynamoDB_RemoveOfTransaction(t *testing.T) {
	changes, err := FromDynamoDB(events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{{
		EventName: "REMOVE",
		Change: events.DynamoDBStreamRecord{
			OldImage: map[string]events.DynamoDBAttributeValue{
				"pk":            events.NewStringAttribute(transactions.PartitionKey),
				"sk":            events.NewStringAttribute("tx-1"),
				"status":        events.NewStringAttribute("GENERATED"),
				"connection_id": events.NewStringAttribute("conn-1"),
				"ttl":           events.NewNumberAttribute("1700000120"),
				"expires_in":    events.NewNumberAttribute("300"),
			},
		},
	}}})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, importflow.ChangeRemove, changes[0].Kind)
	assert.Nil(t, changes[0].After)
	require.True(t, changes[0].Before.IsTransaction())

	rec, err := changes[0].Before.Transaction()
	require.NoError(t, err)
	assert.Equal(t, "tx-1", rec.TransactionID)
	assert.Equal(t, transactions.StatusGenerated, rec.Status)
	assert.Equal(t, "conn-1", rec.ConnectionID)
	assert.Equal(t, int64(1700000120), rec.TTL)
}

func TestFromDynamoDB_UnknownEvent(t *testing.T) {
	_, err := FromDynamoDB(events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{{EventName: "TRUNCATE"}}})
	assert.ErrorIs(t, err, importflow.ErrMalformedTrigger)
}

func TestConvertImage_AllTypes(t *testing.T) {
	img, err := ConvertImage(map[string]events.DynamoDBAttributeValue{
		"s":    events.NewStringAttribute("x"),
		"n":    events.NewNumberAttribute("42"),
		"bool": events.NewBooleanAttribute(true),
		"b":    events.NewBinaryAttribute([]byte("raw")),
		"null": events.NewNullAttribute(),
		"ss":   events.NewStringSetAttribute([]string{"a", "b"}),
		"ns":   events.NewNumberSetAttribute([]string{"1", "2"}),
		"bs":   events.NewBinarySetAttribute([][]byte{[]byte("q")}),
		"m": events.NewMapAttribute(map[string]events.DynamoDBAttributeValue{
			"inner": events.NewStringAttribute("y"),
		}),
		"l": events.NewListAttribute([]events.DynamoDBAttributeValue{
			events.NewNumberAttribute("7"),
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, &types.AttributeValueMemberS{Value: "x"}, img["s"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "42"}, img["n"])
	assert.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, img["bool"])
	assert.Equal(t, &types.AttributeValueMemberB{Value: []byte("raw")}, img["b"])
	assert.Equal(t, &types.AttributeValueMemberNULL{Value: true}, img["null"])
	assert.Equal(t, &types.AttributeValueMemberSS{Value: []string{"a", "b"}}, img["ss"])
	assert.Equal(t, &types.AttributeValueMemberNS{Value: []string{"1", "2"}}, img["ns"])
	assert.Equal(t, &types.AttributeValueMemberBS{Value: [][]byte{[]byte("q")}}, img["bs"])
	assert.Equal(t, &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
		"inner": &types.AttributeValueMemberS{Value: "y"},
	}}, img["m"])
	assert.Equal(t, &types.AttributeValueMemberL{Value: []types.AttributeValue{
		&types.AttributeValueMemberN{Value: "7"},
	}}, img["l"])

	nilImg, err := ConvertImage(nil)
	require.NoError(t, err)
	assert.Nil(t, nilImg)
}
