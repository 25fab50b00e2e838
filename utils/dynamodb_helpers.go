package utils

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ExtractString safely extracts a string from a DynamoDB attribute map
func ExtractString(item map[string]types.AttributeValue, field string) string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

// ExtractBool returns false when the attribute is missing or not a BOOL
func ExtractBool(item map[string]types.AttributeValue, field string) bool {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberBOOL); ok {
			return v.Value
		}
	}
	return false
}

// ExtractInt parses a numeric attribute, defaulting to 0
func ExtractInt(item map[string]types.AttributeValue, field string) int {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberN); ok {
			n, err := strconv.Atoi(v.Value)
			if err == nil {
				return n
			}
		}
	}
	return 0
}

// StringSetContains reports whether a string-set or list attribute holds value
func StringSetContains(item map[string]types.AttributeValue, field, value string) bool {
	switch attr := item[field].(type) {
	case *types.AttributeValueMemberSS:
		for _, v := range attr.Value {
			if v == value {
				return true
			}
		}
	case *types.AttributeValueMemberL:
		for _, el := range attr.Value {
			if s, ok := el.(*types.AttributeValueMemberS); ok && s.Value == value {
				return true
			}
		}
	}
	return false
}
