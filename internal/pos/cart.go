package pos

// ProductRef is the slice of a catalog product the cart needs to build a
// line item. Prices are minor units.
type ProductRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// LineItem is one product entry in a cart with its quantity. Quantity is
// always at least 1; an item that would drop to zero is removed instead.
type LineItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Subtotal is unit price times quantity in minor units.
func (li LineItem) Subtotal() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

// Cart holds the working set of line items for an in-progress checkout.
// Items keep insertion order and are unique by product id. The cart is
// mechanism only: exclusivity policy lives in the catalog package and is
// enforced by the caller before AddItem.
type Cart struct {
	items []LineItem
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// AddItem adds one unit of product. Re-adding a product already in the cart
// increments its quantity rather than duplicating the entry.
func (c *Cart) AddItem(p ProductRef) {
	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
	})
}

// IncreaseQuantity adds one unit to the matching item. No-op if absent.
func (c *Cart) IncreaseQuantity(productID int64) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity++
			return
		}
	}
}

// DecreaseQuantity removes one unit from the matching item, dropping the
// item entirely when its quantity would reach zero. No-op if absent.
func (c *Cart) DecreaseQuantity(productID int64) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity--
			if c.items[i].Quantity <= 0 {
				c.items = append(c.items[:i], c.items[i+1:]...)
			}
			return
		}
	}
}

// RemoveItem removes the matching item regardless of quantity.
func (c *Cart) RemoveItem(productID int64) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart for the next customer.
func (c *Cart) Clear() {
	c.items = nil
}

// Total recomputes the cart total from the item list on every call. There is
// no cached running total that could drift.
func (c *Cart) Total() int64 {
	var total int64
	for _, li := range c.items {
		total += li.Subtotal()
	}
	return total
}

// Items returns a copy of the line items in insertion order. The cart
// exclusively owns its internal slice.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Names returns the item names in cart order, the shape the conflict
// checker consumes.
func (c *Cart) Names() []string {
	names := make([]string, len(c.items))
	for i, li := range c.items {
		names[i] = li.Name
	}
	return names
}

// Len reports how many distinct line items are in the cart.
func (c *Cart) Len() int {
	return len(c.items)
}
