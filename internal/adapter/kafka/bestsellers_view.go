package kafka

import (
	"context"
	"sort"

	"github.com/lovoo/goka"
	"github.com/strizshop/storefront/internal/core/port"
)

var _ port.BestSellersProvider = (*BestSellersView)(nil)

// A BestSellersView serves the per-product add-to-cart counters
// maintained by [BestSellersProcessor].
type BestSellersView struct {
	gv *goka.View
}

func NewBestSellersView(
	seedBrokers []string, groupTable string,
) (BestSellersView, error) {
	const op = "NewBestSellersView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(groupTable)),
		addCountCodec{},
	)
	if err != nil {
		return BestSellersView{}, opErr(err, op)
	}

	return BestSellersView{gv}, nil
}

func (v BestSellersView) Run(ctx context.Context) {
	const op = "BestSellersView.Run"
	log := slogWith(op)

	err := v.gv.Run(ctx)
	if err != nil {
		log.Error("unexpected fail on run", "err", err)
	}
}

func (v BestSellersView) Count(productID string) (int64, error) {
	const op = "BestSellersView.Count"

	value, err := v.gv.Get(productID)
	if err != nil {
		return 0, opErr(err, op)
	}
	if value == nil {
		return 0, nil
	}

	n, ok := value.(addCount)
	if !ok {
		return 0, opErr(ErrInvalidValueType, op)
	}
	return int64(n), nil
}

func (v BestSellersView) Top(n int) ([]port.BestSeller, error) {
	const op = "BestSellersView.Top"

	it, err := v.gv.Iterator()
	if err != nil {
		return nil, opErr(err, op)
	}
	defer it.Release()

	var sellers []port.BestSeller
	for it.Next() {
		value, err := it.Value()
		if err != nil {
			return nil, opErr(err, op)
		}
		count, ok := value.(addCount)
		if !ok {
			return nil, opErr(ErrInvalidValueType, op)
		}
		sellers = append(sellers, port.BestSeller{
			ProductID: it.Key(),
			AddCount:  int64(count),
		})
	}

	sort.Slice(sellers, func(i, j int) bool {
		return sellers[i].AddCount > sellers[j].AddCount
	})

	if n > 0 && n < len(sellers) {
		sellers = sellers[:n]
	}
	return sellers, nil
}
