package kafka

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/lovoo/goka"
	"github.com/strizshop/storefront/internal/core/domain"
	"github.com/strizshop/storefront/pkg/schema"
)

// A cartEventCodec used for serde [schema.CartEventV1]
type cartEventCodec struct {
	serde Serde
}

func newCartEventCodec(s Serde) cartEventCodec {
	return cartEventCodec{s}
}

func (c cartEventCodec) Encode(v any) ([]byte, error) {
	const op = "cartEventCodec.Encode"
	if _, ok := v.(schema.CartEventV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c cartEventCodec) Decode(data []byte) (any, error) {
	const op = "cartEventCodec.Decode"
	var s schema.CartEventV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// An addCount is the accumulated add-to-cart total for one product.
type addCount int64

type addCountCodec struct{}

func (addCountCodec) Encode(v any) ([]byte, error) {
	const op = "addCountCodec.Encode"
	n, ok := v.(addCount)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return strconv.AppendInt([]byte(nil), int64(n), 10), nil
}

func (addCountCodec) Decode(data []byte) (any, error) {
	const op = "addCountCodec.Decode"
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return nil, opErr(err, op)
	}
	return addCount(n), nil
}

// A BestSellersProcessor folds add-to-cart events from the cart
// events stream into a per-product counter group table.
type BestSellersProcessor struct {
	gp *goka.Processor
}

func NewBestSellersProcessor(
	seedBrokers []string,
	inputStream string,
	groupTable string,
	cartEventSerde Serde,
) (BestSellersProcessor, error) {
	const op = "NewBestSellersProcessor"

	var p BestSellersProcessor

	gg := goka.DefineGroup(goka.Group(groupTable),
		goka.Input(
			goka.Stream(inputStream),
			newCartEventCodec(cartEventSerde),
			p.processFn,
		),
		goka.Persist(addCountCodec{}),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNoLogProcOpt())
	if err != nil {
		return BestSellersProcessor{}, opErr(err, op)
	}

	return BestSellersProcessor{gp}, nil
}

func (p BestSellersProcessor) Run(ctx context.Context, wg *sync.WaitGroup) {
	const op = "BestSellersProcessor.Run"
	log := slogWith(op)

	defer wg.Done()

	go p.run(ctx)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p BestSellersProcessor) Close() {
	const op = "BestSellersProcessor.Close"
	log := slogWith(op)

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

func (p BestSellersProcessor) run(ctx context.Context) {
	const op = "BestSellersProcessor.run"
	log := slogWith(op)

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p BestSellersProcessor) waitForReady(ctx context.Context) {
	const op = "BestSellersProcessor.waitForReady"
	log := slogWith(op)

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
		return
	}
}

func (BestSellersProcessor) processFn(ctx goka.Context, msg any) {
	const op = "BestSellersProcessor.processFn"
	log := slogWith(op)

	evt, _ := msg.(schema.CartEventV1)
	if evt.Action != domain.CartEventAdd || evt.ProductID == "" {
		return
	}

	var current addCount
	if v := ctx.Value(); v != nil {
		current, _ = v.(addCount)
	}

	updated := current + addCount(evt.Quantity)
	ctx.SetValue(updated)
	log.Info(
		"counted cart add",
		"productID", evt.ProductID,
		"addCount", int64(updated),
	)
}
