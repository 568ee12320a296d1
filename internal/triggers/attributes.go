package triggers

import (
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-invoice-importflow/internal/importflow"
)

// ConvertImage maps a stream image onto SDK attribute values. A nil image stays nil.
func ConvertImage(img map[string]events.DynamoDBAttributeValue) (importflow.Image, error) {
	if img == nil {
		return nil, nil
	}
	out := make(importflow.Image, len(img))
	for name, av := range img {
		v, err := convert(av)
		if err != nil {
			return nil, fmt.Errorf("%w: attribute %s: %v", importflow.ErrMalformedTrigger, name, err)
		}
		out[name] = v
	}
	return out, nil
}

func convert(av events.DynamoDBAttributeValue) (types.AttributeValue, error) {
	switch av.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: av.String()}, nil
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: av.Number()}, nil
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: av.Boolean()}, nil
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: av.Binary()}, nil
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: av.StringSet()}, nil
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: av.NumberSet()}, nil
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: av.BinarySet()}, nil
	case events.DataTypeMap:
		m := make(map[string]types.AttributeValue, len(av.Map()))
		for k, child := range av.Map() {
			v, err := convert(child)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case events.DataTypeList:
		l := make([]types.AttributeValue, 0, len(av.List()))
		for _, child := range av.List() {
			v, err := convert(child)
			if err != nil {
				return nil, err
			}
			l = append(l, v)
		}
		return &types.AttributeValueMemberL{Value: l}, nil
	}
	return nil, fmt.Errorf("unsupported data type %v", av.DataType())
}
