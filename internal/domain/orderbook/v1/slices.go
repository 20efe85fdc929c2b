package orderbookv1

// Prices is an ascending slice of level prices in ticks.
type Prices []int64

// Search returns the index at which price is or would be inserted.
func (p Prices) Search(price int64) int {
	lo, hi := 0, len(p)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if p[mid] < price {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Insert adds price keeping the slice sorted. Duplicates are ignored.
func (p Prices) Insert(price int64) Prices {
	idx := p.Search(price)
	if idx < len(p) && p[idx] == price {
		return p
	}
	p = append(p, 0)
	copy(p[idx+1:], p[idx:])
	p[idx] = price
	return p
}

// Remove deletes price if present.
func (p Prices) Remove(price int64) Prices {
	idx := p.Search(price)
	if idx < len(p) && p[idx] == price {
		return append(p[:idx], p[idx+1:]...)
	}
	return p
}

// Orders is a slice of Order pointers, representing multiple orders.
type Orders []*Order

func (o Orders) Len() int           { return len(o) }
func (o Orders) Swap(i, j int)      { o[i], o[j] = o[j], o[i] }
func (o Orders) Less(i, j int) bool { return o[i].ID < o[j].ID }
