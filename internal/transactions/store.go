package transactions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/imrishuroy/go-invoice-importflow/internal/aws"
)

var (
	// ErrNotFound is returned when no transaction exists for the id.
	ErrNotFound = errors.New("transaction not found")
	// ErrAlreadyExists is returned by Create when the id is taken.
	ErrAlreadyExists = errors.New("transaction already exists")
	// ErrConditionFailed means another path changed the status first.
	ErrConditionFailed = errors.New("status mismatch/conditional failed")
	// ErrInvalidTransition is returned without touching the store.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Store encapsulates transaction operations on the invoices table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new transactions Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

func key(transactionID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: PartitionKey},
		"sk": &types.AttributeValueMemberS{Value: transactionID},
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}

// Get fetches a transaction by id. Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, transactionID string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            key(transactionID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return &rec, nil
}

// Create stores a new transaction. The id must not exist yet.
func (s *Store) Create(ctx context.Context, rec Record) (*Record, error) {
	rec.PK = PartitionKey
	if rec.CreatedAt == 0 {
		rec.CreatedAt = s.nowFunc().UnixMilli()
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(sk)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("put item: %w", err)
	}
	return &rec, nil
}

// UpdateStatus conditionally moves a transaction from expected -> newStatus.
// Returns ErrConditionFailed if the stored status no longer matches (or the item is gone).
func (s *Store) UpdateStatus(ctx context.Context, transactionID string, expected, newStatus Status) (*Record, error) {
	if !CanTransition(expected, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, expected, newStatus)
	}

	input := &dyn.UpdateItemInput{
		TableName:                &s.tableName,
		Key:                      key(transactionID),
		UpdateExpression:         aws.String("SET #s = :new"),
		ConditionExpression:      aws.String("attribute_exists(sk) AND #s = :expected"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: string(newStatus)},
			":expected": &types.AttributeValueMemberS{Value: string(expected)},
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionFailed(err) {
			return nil, ErrConditionFailed
		}
		return nil, fmt.Errorf("update item: %w", err)
	}

	var rec Record
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return &rec, nil
}

// Delete removes a transaction if its status is still expected, returning the removed image.
func (s *Store) Delete(ctx context.Context, transactionID string, expected Status) (*Record, error) {
	out, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName:                &s.tableName,
		Key:                      key(transactionID),
		ConditionExpression:      aws.String("attribute_exists(sk) AND #s = :expected"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberS{Value: string(expected)},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, ErrConditionFailed
		}
		return nil, fmt.Errorf("delete item: %w", err)
	}
	if len(out.Attributes) == 0 {
		return nil, ErrNotFound
	}

	var rec Record
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return &rec, nil
}

// ListExpired returns up to limit transactions whose ttl is at or before now.
func (s *Store) ListExpired(ctx context.Context, now time.Time, limit int32) ([]Record, error) {
	var (
		records []Record
		startAt map[string]types.AttributeValue
	)
	for {
		out, err := s.client.Query(ctx, &dyn.QueryInput{
			TableName:              &s.tableName,
			KeyConditionExpression: aws.String("pk = :pk"),
			FilterExpression:       aws.String("#ttl <= :now"),
			ExpressionAttributeNames: map[string]string{
				"#ttl": "ttl",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":  &types.AttributeValueMemberS{Value: PartitionKey},
				":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
			},
			ExclusiveStartKey: startAt,
		})
		if err != nil {
			return nil, fmt.Errorf("query expired: %w", err)
		}

		for _, item := range out.Items {
			var rec Record
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("unmarshal transaction: %w", err)
			}
			records = append(records, rec)
			if limit > 0 && int32(len(records)) >= limit {
				return records, nil
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			return records, nil
		}
		startAt = out.LastEvaluatedKey
	}
}
