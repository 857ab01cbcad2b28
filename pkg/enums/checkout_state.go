package enums

import "fmt"

// CheckoutState is the phase of a checkout attempt.
type CheckoutState string

const (
	CheckoutEditing    CheckoutState = "editing"
	CheckoutSubmitting CheckoutState = "submitting"
	CheckoutSucceeded  CheckoutState = "succeeded"
	CheckoutFailed     CheckoutState = "failed"
)

var validCheckoutStates = []CheckoutState{
	CheckoutEditing,
	CheckoutSubmitting,
	CheckoutSucceeded,
	CheckoutFailed,
}

func (s CheckoutState) String() string {
	return string(s)
}

func (s CheckoutState) IsValid() bool {
	for _, candidate := range validCheckoutStates {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseCheckoutState(value string) (CheckoutState, error) {
	for _, candidate := range validCheckoutStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout state %q", value)
}
