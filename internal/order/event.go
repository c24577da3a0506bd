package order

import "time"

type EventType string

const (
	EventPlaced        EventType = "order.placed"
	EventStatusChanged EventType = "order.status_changed"
)

// Event is published after an order is placed or its status changes.
type Event struct {
	Type          EventType `json:"type"`
	OrderID       string    `json:"orderId"`
	ListingID     string    `json:"listingId"`
	BuyerID       string    `json:"buyerId"`
	FarmerID      string    `json:"farmerId"`
	Status        Status    `json:"status"`
	Quantity      float64   `json:"quantity"`
	TotalPrice    float64   `json:"totalPrice"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func NewEvent(t EventType, o Order, at time.Time) Event {
	return Event{
		Type:       t,
		OrderID:    o.ID,
		ListingID:  o.ListingID,
		BuyerID:    o.BuyerID,
		FarmerID:   o.FarmerID,
		Status:     o.Status,
		Quantity:   o.Quantity,
		TotalPrice: o.TotalPrice,
		OccurredAt: at,
	}
}
