package enums

import "fmt"

// PaymentMethod describes how a shopper intends to settle an order.
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodSinpe      PaymentMethod = "sinpe"
)

// DefaultPaymentMethod is preselected on the checkout form.
const DefaultPaymentMethod = PaymentMethodCreditCard

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCreditCard,
	PaymentMethodSinpe,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// Label is the customer facing name used in notifications.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentMethodSinpe:
		return "SINPE Móvil"
	case PaymentMethodCreditCard:
		return "Tarjeta de crédito"
	default:
		return string(p)
	}
}

// ParsePaymentMethod converts raw input into a PaymentMethod. Empty input
// resolves to the default method.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	if value == "" {
		return DefaultPaymentMethod, nil
	}
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
