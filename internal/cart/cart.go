package cart

import "farmlink-be/internal/market"

// Cart is a per-session, set-like collection of listings keyed by listing id.
// It is not safe for concurrent use; the owning session serializes access.
type Cart struct {
	items []market.CropListing
}

// Add appends item unless a listing with the same id is already present.
// It reports whether the cart changed.
func (c *Cart) Add(item market.CropListing) bool {
	for _, existing := range c.items {
		if existing.ID == item.ID {
			return false
		}
	}
	c.items = append(c.items, item)
	return true
}

func (c *Cart) Items() []market.CropListing {
	return append([]market.CropListing(nil), c.items...)
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Clear() {
	c.items = nil
}
