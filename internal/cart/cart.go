// Package cart implements the Redis-persisted shopping cart.
package cart

// Item is one cart line: a snapshot of the product at the time it was added
// plus the chosen quantity.
type Item struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url"`
	Stock     int     `json:"stock"`
	Quantity  int     `json:"quantity"`
}

// Cart is the full cart contents for one cart id.
type Cart struct {
	Items []Item `json:"items"`
}

// Total is the exact sum of price×quantity. No rounding happens here;
// display formatting is the caller's concern.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Count is the total number of units across all lines.
func (c Cart) Count() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
