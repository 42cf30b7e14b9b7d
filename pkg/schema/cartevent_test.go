package schema

import (
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartEventV1(t *testing.T) {
	t.Run("Regular", func(t *testing.T) {
		vMarshal := CartEventV1{
			CartKey:    "local",
			Action:     "add",
			ProductID:  "3017620422003",
			LineItemID: "testLineItemID",
			Quantity:   3,
			Subtotal:   29.97,
			OccurredAt: 1756382400000,
		}

		var eventSchema avro.Schema

		require.NotPanics(t, func() {
			eventSchema = CartEventV1Avro()
		})

		data, err := avro.Marshal(eventSchema, vMarshal)
		require.NoError(t, err)

		var vUnmarshal CartEventV1
		err = avro.Unmarshal(eventSchema, data, &vUnmarshal)
		require.NoError(t, err)

		assert.Equal(t, vMarshal, vUnmarshal)
	})
}
