package kafka

import (
	"context"

	"github.com/strizshop/storefront/internal/core/domain"
	"github.com/strizshop/storefront/internal/core/port"
	"github.com/strizshop/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.CartEventsProducer = (*CartEventsProducer)(nil)

// A CartEventsProducer publishes [domain.CartEvent] values keyed by
// product id, so downstream aggregation partitions per product.
type CartEventsProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewCartEventsProducer(opts ...ProducerOpt) (CartEventsProducer, error) {
	const op = "NewCartEventsProducer"

	if len(opts) != 2 {
		return CartEventsProducer{}, opErr(ErrTooFewOpts, op)
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return CartEventsProducer{}, opErr(err, op)
		}
	}

	opPrefix := "CartEventsProducer"
	p := producer{
		opPrefix: opPrefix,
		cl:       options.cl,
	}

	return CartEventsProducer{
		producer: p,
		encoder:  options.encoder,
		opPrefix: opPrefix,
	}, nil
}

func (p CartEventsProducer) Close() {
	p.producer.close()
}

func (p CartEventsProducer) ProduceCartEvent(
	ctx context.Context, evt domain.CartEvent,
) error {
	const op = "ProduceCartEvent"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(evt)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, &r); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

func (p CartEventsProducer) createRecord(
	evt domain.CartEvent,
) (kgo.Record, error) {
	const op = "createRecord"

	s := p.toSchema(evt)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return kgo.Record{}, opErr(err, p.opPrefix, op)
	}
	return kgo.Record{Key: []byte(s.ProductID), Value: b}, nil
}

func (CartEventsProducer) toSchema(evt domain.CartEvent) schema.CartEventV1 {
	return schema.CartEventV1{
		CartKey:    evt.CartKey,
		Action:     evt.Action,
		ProductID:  evt.ProductID,
		LineItemID: evt.LineItemID,
		Quantity:   evt.Quantity,
		Subtotal:   evt.SubtotalRaw,
		OccurredAt: evt.OccurredAt.UnixMilli(),
	}
}
