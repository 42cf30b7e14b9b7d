package schema

import "github.com/hamba/avro/v2"

const CartEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "cart_event",
	"fields": [
		{"name": "cart_key", "type": "string"},
		{"name": "action", "type": "string"},
		{"name": "product_id", "type": "string"},
		{"name": "line_item_id", "type": "string"},
		{"name": "quantity", "type": "long"},
		{"name": "subtotal", "type": "double"},
		{"name": "occurred_at", "type": "long"}
	]
}`

// A CartEventV1 mirrors one cart ledger mutation on the wire.
// OccurredAt is unix milliseconds.
type CartEventV1 struct {
	CartKey    string  `avro:"cart_key"`
	Action     string  `avro:"action"`
	ProductID  string  `avro:"product_id"`
	LineItemID string  `avro:"line_item_id"`
	Quantity   int     `avro:"quantity"`
	Subtotal   float64 `avro:"subtotal"`
	OccurredAt int64   `avro:"occurred_at"`
}

func CartEventV1Avro() avro.Schema {
	return avro.MustParse(CartEventSchemaTextV1)
}
