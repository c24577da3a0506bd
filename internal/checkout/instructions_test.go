package checkout

import (
	"testing"

	"farmlink-be/internal/order"

	"github.com/stretchr/testify/assert"
)

func TestInstructions(t *testing.T) {
	t.Run("Fills placeholders", func(t *testing.T) {
		steps := Instructions(PaymentCOD, InstructionVars{
			"order_id":        "ord-1",
			"pay_now":         "₹500.00",
			"pay_on_delivery": "₹2000.00",
			"address":         "Dock 4",
		})

		assert.Equal(t, []string{
			"Advance of ₹500.00 received for order ord-1",
			"Keep ₹2000.00 ready in cash when the order arrives",
			"Delivery to: Dock 4",
		}, steps)
	})

	t.Run("Leaves unknown placeholders", func(t *testing.T) {
		steps := Instructions(PaymentOnline, InstructionVars{})
		assert.Contains(t, steps[0], "{{pay_now}}")
	})

	t.Run("Unknown method", func(t *testing.T) {
		assert.Nil(t, Instructions("cheque", nil))
	})
}

func TestReceiptInstructions(t *testing.T) {
	r := &Receipt{
		Order:         order.Order{ID: "ord-9", Address: "Pune"},
		PaymentMethod: PaymentOnline,
		Quote:         NewQuote(12.5, 4, PaymentOnline),
	}

	assert.Equal(t, "Payment of ₹50.00 received for order ord-9", receiptInstructions(r)[0])
}
