package checkout

import (
	"strconv"
	"strings"
)

var instructionTemplates = map[PaymentMethod][]string{
	PaymentOnline: {
		"Payment of {{pay_now}} received for order {{order_id}}",
		"The farmer will prepare your order for dispatch",
		"Delivery to: {{address}}",
	},
	PaymentCOD: {
		"Advance of {{pay_now}} received for order {{order_id}}",
		"Keep {{pay_on_delivery}} ready in cash when the order arrives",
		"Delivery to: {{address}}",
	},
}

// InstructionVars maps placeholder names (without braces) to their values.
type InstructionVars map[string]string

// Instructions returns the post-payment steps for a method, or nil for an
// unknown one.
func Instructions(method PaymentMethod, vars InstructionVars) []string {
	steps := instructionTemplates[method]
	if steps == nil {
		return nil
	}

	out := make([]string, 0, len(steps))
	for _, step := range steps {
		for key, value := range vars {
			step = strings.ReplaceAll(step, "{{"+key+"}}", value)
		}
		out = append(out, step)
	}
	return out
}

func formatAmount(v float64) string {
	return "₹" + strconv.FormatFloat(v, 'f', 2, 64)
}

func receiptInstructions(r *Receipt) []string {
	return Instructions(r.PaymentMethod, InstructionVars{
		"order_id":        r.Order.ID,
		"address":         r.Order.Address,
		"pay_now":         formatAmount(r.Quote.PayNow),
		"pay_on_delivery": formatAmount(r.Quote.PayOnDelivery),
	})
}
