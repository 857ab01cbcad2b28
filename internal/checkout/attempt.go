package checkout

import (
	"time"

	"github.com/angelmondragon/its27-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
)

// Attempt is the state of the checkout tied to one cart.
//
//	editing -> submitting -> succeeded
//	                      -> failed -> submitting ...
type Attempt struct {
	State         enums.CheckoutState `json:"state"`
	Form          *ShippingForm       `json:"form,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Error         string              `json:"error,omitempty"`
	OrderCode     string              `json:"order_code,omitempty"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// NewAttempt starts in the editing state with the default payment method.
func NewAttempt() *Attempt {
	return &Attempt{State: enums.CheckoutEditing, PaymentMethod: enums.DefaultPaymentMethod}
}

// Editable reports whether the shopper can change the form. Failed attempts
// keep their form and error so the shopper can correct and resubmit.
func (a *Attempt) Editable() bool {
	return a.State == enums.CheckoutEditing || a.State == enums.CheckoutFailed
}

// Begin moves the attempt to submitting under the code the order will be
// stored with, so an interrupted submission can be matched to its order.
func (a *Attempt) Begin(form ShippingForm, method enums.PaymentMethod, code string, at time.Time) error {
	if a.State == enums.CheckoutSubmitting {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already in progress")
	}
	a.State = enums.CheckoutSubmitting
	a.Form = &form
	a.PaymentMethod = method
	a.Error = ""
	a.OrderCode = code
	a.UpdatedAt = at
	return nil
}

// Succeed records the placed order code.
func (a *Attempt) Succeed(code string, at time.Time) error {
	if a.State != enums.CheckoutSubmitting {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not submitting")
	}
	a.State = enums.CheckoutSucceeded
	a.OrderCode = code
	a.Error = ""
	a.UpdatedAt = at
	return nil
}

// Fail records reason and returns the attempt to an editable state. The
// reserved order code is dropped; the next Begin brings a new one.
func (a *Attempt) Fail(reason string, at time.Time) error {
	if a.State != enums.CheckoutSubmitting {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not submitting")
	}
	a.State = enums.CheckoutFailed
	a.Error = reason
	a.OrderCode = ""
	a.UpdatedAt = at
	return nil
}
