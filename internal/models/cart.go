package models

// CartItem is one line of a cart.
type CartItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

// Cart is the buyer's staging list. It is a value: every operation returns a
// new Cart and leaves the receiver untouched.
type Cart struct {
	Items []CartItem `json:"items" validate:"required,min=1,dive"`
}

func (c Cart) clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}

// Add adds quantity units of a product, merging with an existing line.
func (c Cart) Add(productID string, quantity int) Cart {
	if quantity <= 0 {
		return c.clone()
	}
	out := c.clone()
	for i := range out.Items {
		if out.Items[i].ProductID == productID {
			out.Items[i].Quantity += quantity
			return out
		}
	}
	out.Items = append(out.Items, CartItem{ProductID: productID, Quantity: quantity})
	return out
}

// Remove drops the line of a product.
func (c Cart) Remove(productID string) Cart {
	out := Cart{Items: make([]CartItem, 0, len(c.Items))}
	for _, item := range c.Items {
		if item.ProductID != productID {
			out.Items = append(out.Items, item)
		}
	}
	return out
}

// SetQuantity replaces the quantity of a line; zero or less removes it.
func (c Cart) SetQuantity(productID string, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(productID)
	}
	out := c.clone()
	for i := range out.Items {
		if out.Items[i].ProductID == productID {
			out.Items[i].Quantity = quantity
		}
	}
	return out
}

// Count is the total number of units in the cart.
func (c Cart) Count() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}
