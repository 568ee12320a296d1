// Package awstest provides in-memory fakes of the AWS client interfaces for unit tests.
package awstest

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Dynamo is a small in-memory DynamoDB supporting the expressions used by the stores.
// Items are keyed by table -> "pk|sk".
type Dynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	PutCalls    int
	UpdateCalls int
	DeleteCalls int

	// Err, when set, is returned from every call.
	Err error
}

func NewDynamo() *Dynamo {
	return &Dynamo{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

func (m *Dynamo) table(name string) map[string]map[string]types.AttributeValue {
	if _, ok := m.tables[name]; !ok {
		m.tables[name] = map[string]map[string]types.AttributeValue{}
	}
	return m.tables[name]
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func num(av types.AttributeValue) int64 {
	if n, ok := av.(*types.AttributeValueMemberN); ok {
		v, _ := strconv.ParseInt(n.Value, 10, 64)
		return v
	}
	return 0
}

func itemKey(item map[string]types.AttributeValue) (string, error) {
	pk, sk := str(item["pk"]), str(item["sk"])
	if pk == "" {
		return "", errors.New("missing pk")
	}
	return pk + "|" + sk, nil
}

func clone(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

// Item returns a copy of the stored item, or nil.
func (m *Dynamo) Item(table, pk, sk string) map[string]types.AttributeValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.table(table)[pk+"|"+sk]
	if !ok {
		return nil
	}
	return clone(item)
}

// Seed writes an item unconditionally.
func (m *Dynamo) Seed(table string, item map[string]types.AttributeValue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := itemKey(item)
	if err != nil {
		panic(err)
	}
	m.table(table)[k] = clone(item)
}

// Remove deletes an item unconditionally, like a TTL eviction.
func (m *Dynamo) Remove(table, pk, sk string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.table(table), pk+"|"+sk)
}

// Count returns the number of items in a table.
func (m *Dynamo) Count(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.table(table))
}

// checkCondition evaluates the condition forms the stores emit.
func checkCondition(expr *string, existing map[string]types.AttributeValue, exists bool, values map[string]types.AttributeValue) bool {
	if expr == nil {
		return true
	}
	switch *expr {
	case "attribute_not_exists(sk)":
		return !exists
	case "attribute_exists(sk) AND #s = :expected":
		return exists && str(existing["status"]) == str(values[":expected"])
	}
	return false
}

func (m *Dynamo) GetItem(ctx context.Context, in *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	k, err := itemKey(in.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table(*in.TableName)[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: clone(item)}, nil
}

func (m *Dynamo) PutItem(ctx context.Context, in *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	k, err := itemKey(in.Item)
	if err != nil {
		return nil, err
	}
	tbl := m.table(*in.TableName)
	existing, exists := tbl[k]
	if !checkCondition(in.ConditionExpression, existing, exists, in.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{}
	}
	tbl[k] = clone(in.Item)
	return &dyn.PutItemOutput{}, nil
}

func (m *Dynamo) UpdateItem(ctx context.Context, in *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	k, err := itemKey(in.Key)
	if err != nil {
		return nil, err
	}
	tbl := m.table(*in.TableName)
	existing, exists := tbl[k]
	if !checkCondition(in.ConditionExpression, existing, exists, in.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if in.UpdateExpression == nil || *in.UpdateExpression != "SET #s = :new" {
		return nil, errors.New("unsupported update expression")
	}
	updated := clone(existing)
	updated["status"] = in.ExpressionAttributeValues[":new"]
	tbl[k] = updated
	return &dyn.UpdateItemOutput{Attributes: clone(updated)}, nil
}

func (m *Dynamo) DeleteItem(ctx context.Context, in *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	k, err := itemKey(in.Key)
	if err != nil {
		return nil, err
	}
	tbl := m.table(*in.TableName)
	existing, exists := tbl[k]
	if !checkCondition(in.ConditionExpression, existing, exists, in.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{}
	}
	delete(tbl, k)
	return &dyn.DeleteItemOutput{Attributes: existing}, nil
}

// Query supports "pk = :pk" with an optional "#ttl <= :now" filter; results are ordered by sk.
func (m *Dynamo) Query(ctx context.Context, in *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	pk := str(in.ExpressionAttributeValues[":pk"])
	var items []map[string]types.AttributeValue
	for _, item := range m.table(*in.TableName) {
		if str(item["pk"]) != pk {
			continue
		}
		if in.FilterExpression != nil && *in.FilterExpression == "#ttl <= :now" {
			if num(item["ttl"]) > num(in.ExpressionAttributeValues[":now"]) {
				continue
			}
		}
		items = append(items, clone(item))
	}
	sort.Slice(items, func(i, j int) bool { return str(items[i]["sk"]) < str(items[j]["sk"]) })
	return &dyn.QueryOutput{Items: items, Count: int32(len(items))}, nil
}
