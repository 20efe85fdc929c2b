package orderbook

import (
	orderbookv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-simulator/internal/domain/snapshot/v1"
)

// LevelKey locates the level an order rests at.
type LevelKey struct {
	Side  orderbookv1.Side
	Price int64
}

// Orderbook holds the trader's resting orders of one market, grouped in
// price levels. It does no matching.
type Orderbook struct {
	Symbol string

	bidLevels map[int64]*orderbookv1.Level
	askLevels map[int64]*orderbookv1.Level
	bidPrices orderbookv1.Prices
	askPrices orderbookv1.Prices

	index    map[uint64]LevelKey
	sequence uint64
}

// NewOrderbook creates a new orderbook
func NewOrderbook(symbol string) *Orderbook {
	return &Orderbook{
		Symbol:    symbol,
		bidLevels: make(map[int64]*orderbookv1.Level),
		askLevels: make(map[int64]*orderbookv1.Level),
		index:     make(map[uint64]LevelKey),
	}
}

func (ob *Orderbook) side(side orderbookv1.Side) (map[int64]*orderbookv1.Level, *orderbookv1.Prices) {
	if side == orderbookv1.Buy {
		return ob.bidLevels, &ob.bidPrices
	}
	return ob.askLevels, &ob.askPrices
}

// AddRestingOrder appends the order at the back of its price level and
// stamps its admission sequence.
func (ob *Orderbook) AddRestingOrder(order *orderbookv1.Order) error {
	if order == nil {
		return orderbookv1.ErrNilOrder
	}
	if order.LimitPrice <= 0 {
		return orderbookv1.ErrInvalidPrice.Errorf("order %d has limit %d", order.ID, order.LimitPrice)
	}
	if _, exists := ob.index[order.ID]; exists {
		return orderbookv1.ErrDuplicateOrder.Errorf("order %d", order.ID)
	}

	ob.sequence++
	order.Sequence = ob.sequence

	level := ob.levelFor(order.Side, order.LimitPrice)
	if err := level.AddOrder(order); err != nil {
		ob.dropIfEmpty(order.Side, level)
		return err
	}

	ob.index[order.ID] = LevelKey{Side: order.Side, Price: order.LimitPrice}
	return nil
}

func (ob *Orderbook) levelFor(side orderbookv1.Side, price int64) *orderbookv1.Level {
	levels, prices := ob.side(side)
	level, ok := levels[price]
	if !ok {
		level = orderbookv1.NewLevel(price)
		levels[price] = level
		*prices = prices.Insert(price)
	}
	return level
}

func (ob *Orderbook) dropIfEmpty(side orderbookv1.Side, level *orderbookv1.Level) {
	if !level.IsEmpty() {
		return
	}
	levels, prices := ob.side(side)
	delete(levels, level.Price)
	*prices = prices.Remove(level.Price)
}

func (ob *Orderbook) lookup(id uint64) (LevelKey, *orderbookv1.Level, error) {
	key, ok := ob.index[id]
	if !ok {
		return LevelKey{}, nil, orderbookv1.ErrOrderNotFound.Errorf("order %d not resting in %s", id, ob.Symbol)
	}
	levels, _ := ob.side(key.Side)
	return key, levels[key.Price], nil
}

// RemoveOrder removes a resting order. Empty levels are deleted.
func (ob *Orderbook) RemoveOrder(id uint64) (*orderbookv1.Order, error) {
	key, level, err := ob.lookup(id)
	if err != nil {
		return nil, err
	}

	order, err := level.RemoveOrder(id)
	if err != nil {
		return nil, err
	}

	delete(ob.index, id)
	ob.dropIfEmpty(key.Side, level)
	return order, nil
}

// ReduceOrder fills qty of a resting order at ts. A fully filled order leaves
// the book. It returns the quantity actually filled.
func (ob *Orderbook) ReduceOrder(id uint64, qty float64, ts int64) (float64, error) {
	key, level, err := ob.lookup(id)
	if err != nil {
		return 0, err
	}

	filled, err := level.Fill(id, qty, ts)
	if err != nil {
		return 0, err
	}

	if order := ob.find(level, id); order == nil {
		delete(ob.index, id)
	}
	ob.dropIfEmpty(key.Side, level)
	return filled, nil
}

func (ob *Orderbook) find(level *orderbookv1.Level, id uint64) *orderbookv1.Order {
	for _, o := range level.Orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// Reprice moves a resting order to price. The order keeps its admission
// sequence and is placed among the new level's orders by that sequence.
func (ob *Orderbook) Reprice(id uint64, price int64) error {
	if price <= 0 {
		return orderbookv1.ErrInvalidPrice.Errorf("reprice to %d", price)
	}
	key, level, err := ob.lookup(id)
	if err != nil {
		return err
	}
	if key.Price == price {
		return nil
	}

	order, err := level.RemoveOrder(id)
	if err != nil {
		return err
	}
	ob.dropIfEmpty(key.Side, level)

	order.LimitPrice = price
	if err := ob.levelFor(key.Side, price).InsertOrder(order); err != nil {
		return err
	}
	ob.index[id] = LevelKey{Side: key.Side, Price: price}
	return nil
}

// Resize sets the remaining quantity of a resting order.
func (ob *Orderbook) Resize(id uint64, remaining float64) error {
	_, level, err := ob.lookup(id)
	if err != nil {
		return err
	}
	return level.Resize(id, remaining)
}

// Get returns a resting order.
func (ob *Orderbook) Get(id uint64) (*orderbookv1.Order, bool) {
	_, level, err := ob.lookup(id)
	if err != nil {
		return nil, false
	}
	order := ob.find(level, id)
	return order, order != nil
}

// LevelOf returns where the order rests.
func (ob *Orderbook) LevelOf(id uint64) (LevelKey, bool) {
	key, ok := ob.index[id]
	return key, ok
}

// BestBid returns the highest resting buy price.
func (ob *Orderbook) BestBid() (int64, bool) {
	if len(ob.bidPrices) == 0 {
		return 0, false
	}
	return ob.bidPrices[len(ob.bidPrices)-1], true
}

// BestAsk returns the lowest resting sell price.
func (ob *Orderbook) BestAsk() (int64, bool) {
	if len(ob.askPrices) == 0 {
		return 0, false
	}
	return ob.askPrices[0], true
}

// BestBidLevel returns the highest bid level, nil when there are no bids.
func (ob *Orderbook) BestBidLevel() *orderbookv1.Level {
	price, ok := ob.BestBid()
	if !ok {
		return nil
	}
	return ob.bidLevels[price]
}

// BestAskLevel returns the lowest ask level, nil when there are no asks.
func (ob *Orderbook) BestAskLevel() *orderbookv1.Level {
	price, ok := ob.BestAsk()
	if !ok {
		return nil
	}
	return ob.askLevels[price]
}

// Asks returns ask levels sorted by price (ascending)
func (ob *Orderbook) Asks() []*orderbookv1.Level {
	levels := make([]*orderbookv1.Level, 0, len(ob.askPrices))
	for _, p := range ob.askPrices {
		levels = append(levels, ob.askLevels[p])
	}
	return levels
}

// Bids returns bid levels sorted by price (descending)
func (ob *Orderbook) Bids() []*orderbookv1.Level {
	levels := make([]*orderbookv1.Level, 0, len(ob.bidPrices))
	for i := len(ob.bidPrices) - 1; i >= 0; i-- {
		levels = append(levels, ob.bidLevels[ob.bidPrices[i]])
	}
	return levels
}

// Len returns the number of resting orders.
func (ob *Orderbook) Len() int {
	return len(ob.index)
}

// AskTotalVolume returns total ask volume
func (ob *Orderbook) AskTotalVolume() float64 {
	total := 0.0
	for _, level := range ob.askLevels {
		total += level.Total
	}
	return total
}

// BidTotalVolume returns total bid volume
func (ob *Orderbook) BidTotalVolume() float64 {
	total := 0.0
	for _, level := range ob.bidLevels {
		total += level.Total
	}
	return total
}

// Clear drops every resting order. The admission sequence keeps counting.
func (ob *Orderbook) Clear() {
	ob.bidLevels = make(map[int64]*orderbookv1.Level)
	ob.askLevels = make(map[int64]*orderbookv1.Level)
	ob.bidPrices = nil
	ob.askPrices = nil
	ob.index = make(map[uint64]LevelKey)
}

// Validate checks that level caches, the sorted price index and the order
// index agree with each other.
func (ob *Orderbook) Validate() error {
	seen := 0
	for _, side := range []orderbookv1.Side{orderbookv1.Buy, orderbookv1.Sell} {
		levels, prices := ob.side(side)
		if len(levels) != len(*prices) {
			return orderbookv1.ErrLevelMismatch.Errorf("%s %s: %d levels, %d prices", ob.Symbol, side, len(levels), len(*prices))
		}
		for i, p := range *prices {
			if i > 0 && (*prices)[i-1] >= p {
				return orderbookv1.ErrLevelMismatch.Errorf("%s %s prices unsorted", ob.Symbol, side)
			}
			level, ok := levels[p]
			if !ok {
				return orderbookv1.ErrLevelMismatch.Errorf("%s %s missing level %d", ob.Symbol, side, p)
			}
			if level.IsEmpty() {
				return orderbookv1.ErrLevelMismatch.Errorf("%s %s empty level %d", ob.Symbol, side, p)
			}
			if err := level.Validate(); err != nil {
				return err
			}
			for _, o := range level.Orders {
				key, ok := ob.index[o.ID]
				if !ok || key.Side != side || key.Price != p || o.Side != side {
					return orderbookv1.ErrLevelMismatch.Errorf("order %d index mismatch", o.ID)
				}
				seen++
			}
		}
	}
	if seen != len(ob.index) {
		return orderbookv1.ErrLevelMismatch.Errorf("%s index holds %d orders, levels hold %d", ob.Symbol, len(ob.index), seen)
	}
	return nil
}

// CreateSnapshot creates a snapshot of the resting orders, bids best first
// then asks best first.
func (ob *Orderbook) CreateSnapshot() snapshotv1.OrderBookSnapshot {
	snap := snapshotv1.OrderBookSnapshot{
		Symbol: ob.Symbol,
		Orders: make([]snapshotv1.BookOrder, 0, ob.Len()),
	}
	for _, levels := range [][]*orderbookv1.Level{ob.Bids(), ob.Asks()} {
		for _, level := range levels {
			for _, order := range level.Orders {
				snap.Orders = append(snap.Orders, snapshotv1.BookOrder{
					OrderID:   order.ID,
					Side:      order.Side,
					Price:     level.Price,
					Amount:    order.Amount,
					Remaining: order.Remaining,
					Sequence:  order.Sequence,
					EntryTime: order.EntryTime,
				})
			}
		}
	}
	return snap
}
