package notifications

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/angelmondragon/its27-backend/pkg/db/models"
	"github.com/angelmondragon/its27-backend/pkg/enums"
	"github.com/angelmondragon/its27-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	templateID string
	params     map[string]string
	err        error
}

func (s *stubSender) Send(_ context.Context, templateID string, params map[string]string) error {
	s.templateID = templateID
	s.params = params
	return s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
}

func sampleOrder(method enums.PaymentMethod) models.Order {
	return models.Order{
		OrderCode:      "ITS-AB12-0042",
		CustomerName:   "María Solís",
		CustomerPhone:  "8888-1234",
		Province:       "Cartago",
		Canton:         "Paraíso",
		District:       "Orosi",
		Address:        "Frente a la plaza",
		SubtotalAmount: 110000,
		ShippingCost:   2000,
		TotalAmount:    112000,
		PaymentMethod:  method,
		Items: []models.OrderItem{
			{ProductID: 4, ProductName: "Anillo Sello Obsidiana", Quantity: 1, PriceAtPurchase: 62000},
			{ProductID: 6, ProductName: "Aretes Gota Nova", Quantity: 1, PriceAtPurchase: 48000},
		},
	}
}

func TestOrderPlacedSendsTemplate(t *testing.T) {
	sender := &stubSender{}
	n, err := NewOrderNotifier(sender, "template_orders", testLogger())
	require.NoError(t, err)

	require.NoError(t, n.OrderPlaced(context.Background(), sampleOrder(enums.PaymentMethodCreditCard)))
	assert.Equal(t, "template_orders", sender.templateID)
	assert.Equal(t, "ITS-AB12-0042", sender.params["order_code"])
	assert.Equal(t, "Frente a la plaza, Orosi, Paraíso, Cartago", sender.params["address"])
	assert.Equal(t, "Tarjeta de crédito", sender.params["payment_method"])
	assert.Empty(t, sender.params["action_note"])

	lines := strings.Split(sender.params["items"], "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1 x Anillo Sello Obsidiana - ₡"))
}

func TestOrderPlacedSinpeNote(t *testing.T) {
	vars := OrderVariables(sampleOrder(enums.PaymentMethodSinpe))
	note := vars["action_note"]
	assert.True(t, strings.HasPrefix(note, "Verificar transferencia SINPE de ₡"))
	assert.True(t, strings.HasSuffix(note, " de María Solís"))
	assert.Equal(t, "SINPE Móvil", vars["payment_method"])
}

func TestOrderPlacedPropagatesSendError(t *testing.T) {
	sender := &stubSender{err: errors.New("status 503")}
	n, err := NewOrderNotifier(sender, "template_orders", testLogger())
	require.NoError(t, err)
	err = n.OrderPlaced(context.Background(), sampleOrder(enums.PaymentMethodSinpe))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ITS-AB12-0042")
}

func TestNewOrderNotifierValidates(t *testing.T) {
	_, err := NewOrderNotifier(nil, "t", testLogger())
	assert.Error(t, err)
	_, err = NewOrderNotifier(&stubSender{}, " ", testLogger())
	assert.Error(t, err)
}

func TestLogNotifierNeverFails(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(logger.New(logger.Options{ServiceName: "test", Output: &buf}))
	require.NoError(t, n.OrderPlaced(context.Background(), sampleOrder(enums.PaymentMethodSinpe)))
	assert.Contains(t, buf.String(), "notifications.order_email_disabled")
	assert.NoError(t, NewLogNotifier(nil).OrderPlaced(context.Background(), models.Order{}))
}
