package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/its27-backend/internal/cart"
	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/angelmondragon/its27-backend/pkg/db/models"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/logger"
	"github.com/angelmondragon/its27-backend/pkg/metrics"
	"github.com/angelmondragon/its27-backend/pkg/money"
	"github.com/angelmondragon/its27-backend/pkg/whatsapp"
)

type orderWriter interface {
	Create(ctx context.Context, order *models.Order) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// Notifier is told about every order that was placed.
type Notifier interface {
	OrderPlaced(ctx context.Context, order models.Order) error
}

// PlaceOrderInput is the submitted checkout form.
type PlaceOrderInput struct {
	Form          ShippingForm
	PaymentMethod string
}

// Status is the checkout view shown while the shopper edits the form.
type Status struct {
	Attempt  *Attempt `json:"attempt"`
	Editable bool     `json:"editable"`
	Quote    Quote    `json:"quote"`
}

// Result is returned once an order is durable.
type Result struct {
	OrderID             int64               `json:"order_id"`
	OrderCode           string              `json:"order_code"`
	Status              enums.OrderStatus   `json:"status"`
	Quote               Quote               `json:"quote"`
	PaymentMethod       enums.PaymentMethod `json:"payment_method"`
	PaymentInstructions string              `json:"payment_instructions"`
	SinpePhone          string              `json:"sinpe_phone,omitempty"`
	WhatsAppLink        string              `json:"whatsapp_link"`
}

// Service runs the checkout for a cart.
type Service interface {
	Quote(ctx context.Context, cartID string) (Quote, error)
	Status(ctx context.Context, cartID string) (*Status, error)
	PlaceOrder(ctx context.Context, cartID string, input PlaceOrderInput) (*Result, error)
}

// Deps groups the collaborators of the checkout service.
type Deps struct {
	Carts    cart.Store
	Attempts AttemptStore
	Locker   Locker
	Orders   orderWriter
	Notifier Notifier
	Codes    *OrderCodeGenerator
	Pricing  Pricing
	Store    config.StoreConfig
	Metrics  *metrics.CheckoutMetrics
	Logger   *logger.Logger
}

type service struct {
	carts    cart.Store
	attempts AttemptStore
	locker   Locker
	orders   orderWriter
	notifier Notifier
	codes    *OrderCodeGenerator
	pricing  Pricing
	store    config.StoreConfig
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the checkout service.
func NewService(deps Deps) (Service, error) {
	if deps.Carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if deps.Attempts == nil {
		return nil, fmt.Errorf("attempt store required")
	}
	if deps.Locker == nil {
		return nil, fmt.Errorf("checkout locker required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("order writer required")
	}
	if deps.Notifier == nil {
		return nil, fmt.Errorf("order notifier required")
	}
	if deps.Codes == nil {
		return nil, fmt.Errorf("order code generator required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:    deps.Carts,
		attempts: deps.Attempts,
		locker:   deps.Locker,
		orders:   deps.Orders,
		notifier: deps.Notifier,
		codes:    deps.Codes,
		pricing:  deps.Pricing,
		store:    deps.Store,
		metrics:  deps.Metrics,
		logg:     deps.Logger,
		now:      time.Now,
	}, nil
}

func (s *service) Quote(ctx context.Context, cartID string) (Quote, error) {
	c, err := s.loadCart(ctx, cartID)
	if err != nil {
		return Quote{}, err
	}
	return s.pricing.Quote(c), nil
}

func (s *service) Status(ctx context.Context, cartID string) (*Status, error) {
	c, err := s.loadCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	attempt, err := s.attempts.Load(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout attempt")
	}
	return &Status{Attempt: attempt, Editable: attempt.Editable(), Quote: s.pricing.Quote(c)}, nil
}

// PlaceOrder validates the form, persists the order with a price snapshot of
// the cart, clears the cart and only then notifies the shop. Notification
// failures never fail the order. When persistence fails the cart is left untouched and
// the attempt is marked failed with the reason.
func (s *service) PlaceOrder(ctx context.Context, cartID string, input PlaceOrderInput) (*Result, error) {
	started := s.now()
	if !cart.ValidCartID(cartID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart id")
	}
	form := input.Form.Normalize()
	if err := form.Validate(); err != nil {
		s.metrics.IncFailure("validation")
		return nil, err
	}
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		s.metrics.IncFailure("validation")
		return nil, pkgerrors.Validation("invalid payment method", pkgerrors.FieldErrors{"payment_method": "must be credit_card or sinpe"})
	}

	ctx = s.logg.WithCartID(ctx, cartID)
	release, err := s.locker.Acquire(ctx, cartID)
	if err != nil {
		s.metrics.IncFailure("locked")
		return nil, err
	}
	defer release()

	c, err := s.loadCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		s.metrics.IncFailure("empty_cart")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	attempt, err := s.attempts.Load(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout attempt")
	}
	if attempt.State == enums.CheckoutSubmitting {
		if err := s.recoverStale(ctx, cartID, attempt); err != nil {
			return nil, err
		}
	}

	code, err := s.codes.Generate()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order code")
	}
	ctx = s.logg.WithOrderCode(ctx, code)

	quote := s.pricing.Quote(c)
	order := buildOrder(code, form, method, quote, c.Lines())

	if err := attempt.Begin(form, method, code, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.attempts.Save(ctx, cartID, attempt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout attempt")
	}

	// A client disconnect after this point must not abandon a half written order.
	work := context.WithoutCancel(ctx)

	if err := s.orders.Create(work, order); err != nil {
		s.logg.Error(work, "checkout.persist_failed", err)
		s.metrics.IncFailure("persist")
		_ = attempt.Fail(err.Error(), s.now().UTC())
		if saveErr := s.attempts.Save(work, cartID, attempt); saveErr != nil {
			s.logg.Error(work, "checkout.attempt_save_failed", saveErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order could not be saved, please try again").
			WithDetails(map[string]any{"reason": err.Error(), "state": attempt.State})
	}

	s.finish(work, cartID, attempt, code)

	if err := s.notifier.OrderPlaced(work, *order); err != nil {
		s.logg.Warn(s.logg.WithField(work, "error", err.Error()), "checkout.notification_failed")
		s.metrics.IncNotificationFailure()
	}

	s.metrics.IncPlaced()
	s.metrics.ObserveDuration(s.now().Sub(started))
	s.logg.Info(work, "checkout.order_placed")

	return s.result(order, quote), nil
}

// finish clears the cart and marks the attempt succeeded. It runs before the
// notification so a second submit for the same cart finds it empty.
func (s *service) finish(ctx context.Context, cartID string, attempt *Attempt, code string) {
	if err := s.carts.Delete(ctx, cartID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.cart_clear_failed")
	}
	_ = attempt.Succeed(code, s.now().UTC())
	if err := s.attempts.Save(ctx, cartID, attempt); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.attempt_save_failed")
	}
}

// recoverStale handles an attempt left submitting by a submission whose lock
// expired. If its order was stored, the submission is completed and the new
// one rejected; otherwise the attempt is failed and checkout proceeds.
func (s *service) recoverStale(ctx context.Context, cartID string, attempt *Attempt) error {
	if attempt.OrderCode != "" {
		placed, err := s.orders.ExistsByCode(ctx, attempt.OrderCode)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up previous order")
		}
		if placed {
			code := attempt.OrderCode
			s.logg.Warn(s.logg.WithOrderCode(ctx, code), "checkout.stale_attempt_completed")
			s.finish(context.WithoutCancel(ctx), cartID, attempt, code)
			s.metrics.IncFailure("already_placed")
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already placed for this cart").
				WithDetails(map[string]any{"order_code": code})
		}
	}
	s.logg.Warn(ctx, "checkout.stale_attempt_recovered")
	_ = attempt.Fail("previous submission interrupted", s.now().UTC())
	return nil
}

func (s *service) loadCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	if !cart.ValidCartID(cartID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart id")
	}
	c, err := s.carts.Load(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, nil
}

func buildOrder(code string, form ShippingForm, method enums.PaymentMethod, quote Quote, lines []cart.Line) *models.Order {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID:       line.Item.ID,
			ProductName:     line.Item.Name,
			Quantity:        line.Qty,
			PriceAtPurchase: line.Item.Price,
		})
	}
	return &models.Order{
		OrderCode:      code,
		CustomerName:   form.Name,
		CustomerPhone:  form.Phone,
		Province:       form.Province,
		Canton:         form.Canton,
		District:       form.District,
		Address:        form.Address,
		SubtotalAmount: quote.Subtotal,
		ShippingCost:   quote.Shipping,
		TotalAmount:    quote.Total,
		PaymentMethod:  method,
		Status:         enums.OrderStatusPending,
		Items:          items,
	}
}

func (s *service) result(order *models.Order, quote Quote) *Result {
	res := &Result{
		OrderID:       order.ID,
		OrderCode:     order.OrderCode,
		Status:        order.Status,
		Quote:         quote,
		PaymentMethod: order.PaymentMethod,
	}
	switch order.PaymentMethod {
	case enums.PaymentMethodSinpe:
		res.SinpePhone = s.store.SinpePhone
		res.PaymentInstructions = fmt.Sprintf(
			"Transfer %s by SINPE Móvil to %s and send the receipt to our WhatsApp.",
			money.Format(order.TotalAmount), s.store.SinpePhone,
		)
	default:
		res.PaymentInstructions = "Card payments are pending integration. We will contact you to complete the payment."
	}
	res.WhatsAppLink = whatsapp.Link(s.store.WhatsAppPhone, fmt.Sprintf(
		"Hola, envío el comprobante del pedido %s por %s.",
		order.OrderCode, money.Format(order.TotalAmount),
	))
	return res
}
