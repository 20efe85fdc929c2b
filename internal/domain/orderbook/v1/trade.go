package orderbookv1

// Trade is an executed fill of a trader order. Price is the display price and
// Fee is charged in quote units.
type Trade struct {
	ID        uint64  `json:"id"`
	OrderID   uint64  `json:"orderID"`
	Symbol    string  `json:"symbol"`
	Side      Side    `json:"side"`
	Taker     bool    `json:"taker"`
	Amount    float64 `json:"amount"`
	Price     float64 `json:"price"`
	Fee       float64 `json:"fee"`
	EntryTime int64   `json:"entryTime"`
	EventTime int64   `json:"eventTime"`
}

// Notional returns amount times price.
func (t *Trade) Notional() float64 {
	return t.Amount * t.Price
}

// Liquidity returns "taker" or "maker".
func (t *Trade) Liquidity() string {
	if t.Taker {
		return "taker"
	}
	return "maker"
}
