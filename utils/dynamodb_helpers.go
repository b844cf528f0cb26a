package utils

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// StringKey builds a single-attribute DynamoDB key map
func StringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// StringSetValue builds a DynamoDB string-set attribute value
func StringSetValue(values ...string) types.AttributeValue {
	return &types.AttributeValueMemberSS{Value: values}
}
