package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
	"github.com/angelmondragon/its27-backend/pkg/emailjs"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	"github.com/angelmondragon/its27-backend/pkg/logger"
	"github.com/angelmondragon/its27-backend/pkg/money"
)

// OrderNotifier tells the shop about newly placed orders through an email template.
type OrderNotifier struct {
	sender     emailjs.Sender
	templateID string
	logg       *logger.Logger
}

// NewOrderNotifier builds a notifier sending templateID through sender.
func NewOrderNotifier(sender emailjs.Sender, templateID string, logg *logger.Logger) (*OrderNotifier, error) {
	if sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if strings.TrimSpace(templateID) == "" {
		return nil, fmt.Errorf("email template id required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &OrderNotifier{sender: sender, templateID: templateID, logg: logg}, nil
}

// OrderPlaced sends the new-order email. The order must already be persisted.
func (n *OrderNotifier) OrderPlaced(ctx context.Context, order models.Order) error {
	params := OrderVariables(order)
	if err := n.sender.Send(ctx, n.templateID, params); err != nil {
		return fmt.Errorf("send order email %s: %w", order.OrderCode, err)
	}
	n.logg.Info(n.logg.WithOrderCode(ctx, order.OrderCode), "notifications.order_email_sent")
	return nil
}

// OrderVariables renders the template variables for order.
func OrderVariables(order models.Order) map[string]string {
	vars := map[string]string{
		"order_code":     order.OrderCode,
		"customer_name":  order.CustomerName,
		"customer_phone": order.CustomerPhone,
		"address":        FormatAddress(order),
		"subtotal":       money.Format(order.SubtotalAmount),
		"shipping":       money.Format(order.ShippingCost),
		"total":          money.Format(order.TotalAmount),
		"payment_method": order.PaymentMethod.Label(),
		"items":          ItemsSummary(order.Items),
		"action_note":    "",
	}
	if order.PaymentMethod == enums.PaymentMethodSinpe {
		vars["action_note"] = fmt.Sprintf("Verificar transferencia SINPE de %s de %s", money.Format(order.TotalAmount), order.CustomerName)
	}
	return vars
}

// FormatAddress joins the exact address with district, canton and province.
func FormatAddress(order models.Order) string {
	parts := []string{}
	for _, p := range []string{order.Address, order.District, order.Canton, order.Province} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// ItemsSummary renders one "qty x name - total" line per item.
func ItemsSummary(items []models.OrderItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%d x %s - %s", item.Quantity, item.ProductName, money.Format(item.LineTotal())))
	}
	return strings.Join(lines, "\n")
}

// LogNotifier records orders in the log when email delivery is not configured.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) OrderPlaced(ctx context.Context, order models.Order) error {
	if n.logg == nil {
		return nil
	}
	ctx = n.logg.WithFields(n.logg.WithOrderCode(ctx, order.OrderCode), map[string]any{
		"total":          order.TotalAmount,
		"payment_method": order.PaymentMethod,
	})
	n.logg.Info(ctx, "notifications.order_email_disabled")
	return nil
}
