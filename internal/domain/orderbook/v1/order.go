package orderbookv1

// Side of an order. The numeric values make 2*side-1 the settlement sign.
type Side int

const (
	// Sell side.
	Sell Side = 0
	// Buy side.
	Buy Side = 1
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Sign returns +1 for buys and -1 for sells.
func (s Side) Sign() float64 {
	return float64(2*int(s) - 1)
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// ParseSide converts "buy"/"sell" (also "bid"/"ask") into a Side.
func ParseSide(v string) (Side, bool) {
	switch v {
	case "buy", "bid", "BUY", "Buy":
		return Buy, true
	case "sell", "ask", "SELL", "Sell":
		return Sell, true
	}
	return Sell, false
}

// Status is the lifecycle state of an order.
type Status int

const (
	// StatusOpen is set at creation and while resting unfilled.
	StatusOpen Status = iota
	// StatusPartiallyFilled means some but not all of the amount has traded.
	StatusPartiallyFilled
	// StatusFilled is terminal, remaining is zero.
	StatusFilled
	// StatusCancelled is terminal, set by a processed cancel.
	StatusCancelled
	// StatusRejected is terminal, set when balance admission fails.
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusPartiallyFilled:
		return "partially_filled"
	case StatusFilled:
		return "filled"
	case StatusCancelled:
		return "cancelled"
	case StatusRejected:
		return "rejected"
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusFilled || s == StatusCancelled || s == StatusRejected
}

// Order is a trader order. Prices are integer ticks, zero when absent.
type Order struct {
	ID         uint64  `json:"id"`
	Symbol     string  `json:"symbol"`
	Side       Side    `json:"side"`
	Taker      bool    `json:"taker"`
	Amount     float64 `json:"amount"`
	Remaining  float64 `json:"remaining"`
	LimitPrice int64   `json:"limitPrice"`
	// EntryTime is the strategy decision time, before latency.
	EntryTime int64 `json:"entryTime"`
	// ArrivalTime is when the order reached the venue, zero until then.
	ArrivalTime int64 `json:"arrivalTime"`
	// EventTime is the time of the last transition, zero until the order reaches the venue.
	EventTime int64  `json:"eventTime"`
	Status    Status `json:"status"`
	// Sequence is the book admission sequence, used for time priority within a level.
	Sequence uint64 `json:"sequence"`
}

// NewMarketOrder creates a taker order.
func NewMarketOrder(id uint64, symbol string, side Side, amount float64, entryTime int64) *Order {
	return &Order{
		ID:        id,
		Symbol:    symbol,
		Side:      side,
		Taker:     true,
		Amount:    amount,
		Remaining: amount,
		EntryTime: entryTime,
		Status:    StatusOpen,
	}
}

// NewLimitOrder creates a maker order resting at limitPrice ticks.
func NewLimitOrder(id uint64, symbol string, side Side, amount float64, limitPrice int64, entryTime int64) *Order {
	return &Order{
		ID:         id,
		Symbol:     symbol,
		Side:       side,
		Amount:     amount,
		Remaining:  amount,
		LimitPrice: limitPrice,
		EntryTime:  entryTime,
		Status:     StatusOpen,
	}
}

// IsBid checks if the order is a bid (buy) order.
func (o *Order) IsBid() bool {
	return o.Side == Buy
}

// IsAsk checks if the order is an ask (sell) order.
func (o *Order) IsAsk() bool {
	return o.Side == Sell
}

// IsFilled checks if nothing remains.
func (o *Order) IsFilled() bool {
	return o.Remaining <= 0
}

// Filled returns the traded quantity.
func (o *Order) Filled() float64 {
	return o.Amount - o.Remaining
}

// Fill reduces the remaining quantity by qty at time ts and moves the status
// to PartiallyFilled or Filled. qty is clamped to the remaining quantity.
func (o *Order) Fill(qty float64, ts int64) float64 {
	if qty >= o.Remaining {
		qty = o.Remaining
	}
	o.Remaining -= qty
	o.EventTime = ts
	if o.Remaining <= 0 {
		o.Remaining = 0
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartiallyFilled
	}
	return qty
}

// Arrive records that the order reached the venue at ts.
func (o *Order) Arrive(ts int64) {
	o.ArrivalTime = ts
	o.EventTime = ts
}

// Cancel moves the order to Cancelled at time ts.
func (o *Order) Cancel(ts int64) {
	o.Status = StatusCancelled
	o.EventTime = ts
}

// Reject moves the order to Rejected at time ts.
func (o *Order) Reject(ts int64) {
	o.Status = StatusRejected
	o.EventTime = ts
}

// Clone returns a copy of the order.
func (o *Order) Clone() *Order {
	c := *o
	return &c
}
