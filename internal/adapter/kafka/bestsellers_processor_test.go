package kafka

import (
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/strizshop/storefront/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type avroSerde struct {
	s avro.Schema
}

func (a avroSerde) Encode(v any) ([]byte, error) {
	return avro.Marshal(a.s, v)
}

func (a avroSerde) Decode(data []byte, v any) error {
	return avro.Unmarshal(a.s, data, v)
}

func TestAddCountCodec(t *testing.T) {

	t.Run("RoundTrip", func(t *testing.T) {
		codec := addCountCodec{}

		data, err := codec.Encode(addCount(42))
		require.NoError(t, err)

		v, err := codec.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, addCount(42), v)
	})

	t.Run("RejectsOtherTypes", func(t *testing.T) {
		_, err := addCountCodec{}.Encode("not a count")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidValueType)
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		_, err := addCountCodec{}.Decode([]byte("not a number"))
		assert.Error(t, err)
	})
}

func TestCartEventCodec(t *testing.T) {
	codec := newCartEventCodec(avroSerde{schema.CartEventV1Avro()})

	t.Run("RoundTrip", func(t *testing.T) {
		evt := schema.CartEventV1{
			CartKey:   "local",
			Action:    "add",
			ProductID: "p-1",
			Quantity:  2,
		}

		data, err := codec.Encode(evt)
		require.NoError(t, err)

		v, err := codec.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, evt, v)
	})

	t.Run("RejectsOtherTypes", func(t *testing.T) {
		_, err := codec.Encode(42)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidValueType)
	})
}
