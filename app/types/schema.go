package types

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const schemaCreateOrder = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["items"],
  "properties": {
    "currency": { "type": "string", "pattern": "^[A-Za-z]{3}$" },
    "items": {
      "type": "array",
      "minItems": 1,
      "maxItems": 50,
      "items": {
        "type": "object",
        "required": ["productId", "variantId", "quantity"],
        "properties": {
          "productId": { "type": "string", "minLength": 1, "maxLength": 64 },
          "variantId": { "type": "string", "minLength": 1, "maxLength": 64 },
          "quantity": { "type": "integer", "minimum": 1, "maximum": 100 }
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

const schemaVerifyPayment = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["razorpay_order_id", "razorpay_payment_id", "razorpay_signature"],
  "properties": {
    "razorpay_order_id": { "type": "string", "minLength": 1, "maxLength": 128 },
    "razorpay_payment_id": { "type": "string", "minLength": 1, "maxLength": 128 },
    "razorpay_signature": { "type": "string", "minLength": 1, "maxLength": 256 },
    "orderId": { "type": ["string", "null"] }
  }
}`

var (
	createOrderSchema   = mustCompileSchema(schemaCreateOrder)
	verifyPaymentSchema = mustCompileSchema(schemaVerifyPayment)
)

func mustCompileSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("compile request schema: %v", err))
	}
	return schema
}

func validateJSONSchema(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			messages = append(messages, e.String())
		}
		return fmt.Errorf("request does not conform to schema: %s", strings.Join(messages, "; "))
	}
	return nil
}
