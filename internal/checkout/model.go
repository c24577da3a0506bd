package checkout

import "farmlink-be/internal/order"

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCOD    PaymentMethod = "cod"
)

// AdvanceRate is the share of the total paid up front for cash on delivery.
const AdvanceRate = 0.20

func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentCOD
}

type Request struct {
	ListingID     string
	Quantity      float64
	Address       string
	PaymentMethod PaymentMethod
}

// Quote splits an order total into what is charged now and on delivery.
type Quote struct {
	Total         float64 `json:"total"`
	PayNow        float64 `json:"payNow"`
	PayOnDelivery float64 `json:"payOnDelivery"`
}

func NewQuote(pricePerUnit, quantity float64, method PaymentMethod) Quote {
	total := pricePerUnit * quantity
	if method == PaymentCOD {
		advance := total * AdvanceRate
		return Quote{Total: total, PayNow: advance, PayOnDelivery: total - advance}
	}
	return Quote{Total: total, PayNow: total}
}

type Receipt struct {
	Order         order.Order   `json:"order"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Quote         Quote         `json:"quote"`
	Instructions  []string      `json:"instructions"`
}
