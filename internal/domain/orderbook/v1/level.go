package orderbookv1

import (
	"fmt"
	"sort"
)

// Level is a price level holding resting orders in time priority.
// Count and Total cache the number of orders and the sum of their remaining quantity.
type Level struct {
	Price  int64    `json:"price"`
	Orders []*Order `json:"orders"`
	Count  int      `json:"count"`
	Total  float64  `json:"total"`
}

// NewLevel creates a new empty Level with the specified price.
func NewLevel(price int64) *Level {
	return &Level{
		Price:  price,
		Orders: make([]*Order, 0),
	}
}

// AddOrder appends an order to the back of the queue and updates the caches.
func (l *Level) AddOrder(order *Order) error {
	if err := l.checkOrder(order); err != nil {
		return err
	}

	l.Orders = append(l.Orders, order)
	l.Count++
	l.Total += order.Remaining

	return nil
}

// InsertOrder places an order by its admission sequence, so an order moved
// from another level keeps its seniority.
func (l *Level) InsertOrder(order *Order) error {
	if err := l.checkOrder(order); err != nil {
		return err
	}

	idx := sort.Search(len(l.Orders), func(i int) bool {
		return l.Orders[i].Sequence > order.Sequence
	})
	l.Orders = append(l.Orders, nil)
	copy(l.Orders[idx+1:], l.Orders[idx:])
	l.Orders[idx] = order
	l.Count++
	l.Total += order.Remaining

	return nil
}

func (l *Level) checkOrder(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	if order.Remaining <= 0 {
		return ErrInvalidSize.Errorf("order %d has remaining %f", order.ID, order.Remaining)
	}
	return nil
}

// RemoveOrder removes the order with the given id and updates the caches.
func (l *Level) RemoveOrder(id uint64) (*Order, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return nil, ErrOrderNotFound.Errorf("order %d not at level %d", id, l.Price)
	}

	order := l.Orders[idx]
	l.Orders = append(l.Orders[:idx], l.Orders[idx+1:]...)
	l.Count--
	l.Total -= order.Remaining
	if l.Count == 0 {
		l.Total = 0
	}

	return order, nil
}

// Fill trades qty of the order with the given id at time ts. A fully filled
// order is removed from the level. It returns the quantity actually filled.
func (l *Level) Fill(id uint64, qty float64, ts int64) (float64, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return 0, ErrOrderNotFound.Errorf("order %d not at level %d", id, l.Price)
	}

	order := l.Orders[idx]
	filled := order.Fill(qty, ts)
	l.Total -= filled

	if order.IsFilled() {
		l.Orders = append(l.Orders[:idx], l.Orders[idx+1:]...)
		l.Count--
	}
	if l.Count == 0 {
		l.Total = 0
	}

	return filled, nil
}

// Resize sets the remaining quantity of a resting order and keeps Total exact.
func (l *Level) Resize(id uint64, remaining float64) error {
	if remaining <= 0 {
		return ErrInvalidSize.Errorf("resize to %f", remaining)
	}
	idx := l.indexOf(id)
	if idx < 0 {
		return ErrOrderNotFound.Errorf("order %d not at level %d", id, l.Price)
	}

	order := l.Orders[idx]
	l.Total += remaining - order.Remaining
	order.Remaining = remaining

	return nil
}

func (l *Level) indexOf(id uint64) int {
	for i, o := range l.Orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// Head returns the oldest order, nil when the level is empty.
func (l *Level) Head() *Order {
	if len(l.Orders) == 0 {
		return nil
	}
	return l.Orders[0]
}

// IsEmpty checks if the level has no orders
func (l *Level) IsEmpty() bool {
	return len(l.Orders) == 0
}

// Validate performs basic validation of the level's state
func (l *Level) Validate() error {
	if l.Price <= 0 {
		return ErrLevelMismatch.Errorf("level price %d", l.Price)
	}
	if l.Count != len(l.Orders) {
		return ErrLevelMismatch.Errorf("count mismatch at %d: calculated %d, stored %d", l.Price, len(l.Orders), l.Count)
	}

	calculatedVolume := 0.0
	var lastSequence uint64
	for i, order := range l.Orders {
		if order == nil {
			return ErrNilOrder
		}
		if order.Remaining <= 0 {
			return ErrInvalidSize.Errorf("order %d has remaining %f", order.ID, order.Remaining)
		}
		if order.LimitPrice != l.Price {
			return ErrLevelMismatch.Errorf("order %d priced %d rests at %d", order.ID, order.LimitPrice, l.Price)
		}
		if i > 0 && order.Sequence < lastSequence {
			return ErrLevelMismatch.Errorf("order %d out of time priority", order.ID)
		}
		lastSequence = order.Sequence
		calculatedVolume += order.Remaining
	}

	// Check volume consistency (with small tolerance for floating point)
	const epsilon = 1e-9
	if abs(calculatedVolume-l.Total) > epsilon {
		return ErrLevelMismatch.Errorf("volume mismatch at %d: calculated %f, stored %f", l.Price, calculatedVolume, l.Total)
	}

	return nil
}

// String renders the level for debugging.
func (l *Level) String() string {
	return fmt.Sprintf("level{price=%d count=%d total=%g}", l.Price, l.Count, l.Total)
}

// Helper function for absolute value
func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
