package notifier

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floralys_back_end/internal/models"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSender) Send(to, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+"|"+subject)
	return nil
}

func testOrder() models.Order {
	return models.Order{
		ID:          "order-1",
		OrderNumber: "FLO-20260825-001",
		Status:      models.OrderStatusPending,
		TotalAmount: 20.00,
		Items: []models.OrderItem{
			{ProductName: "Bouquet de roses", UnitPrice: 10.00, Quantity: 2, TotalPrice: 20.00},
		},
	}
}

func TestNotifierSendsOrderConfirmation(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender)
	n.Start()

	n.Publish(Event{Type: EventOrderCreated, Order: testOrder(), Email: "client@example.com"})
	n.Close()

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "client@example.com")
	assert.Contains(t, sender.sent[0], "Confirmation")
}

func TestNotifierSendsStatusUpdate(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender)
	n.Start()

	n.Publish(Event{
		Type:      EventOrderStatusChanged,
		Order:     testOrder(),
		Email:     "client@example.com",
		NewStatus: models.OrderStatusShipped,
	})
	n.Close()

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "FLO-20260825-001")
}

func TestNotifierSkipsEventsWithoutEmail(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender)
	n.Start()

	n.Publish(Event{Type: EventOrderCreated, Order: testOrder(), Email: ""})
	n.Close()

	assert.Empty(t, sender.sent)
}

func TestNotifierSwallowsSendErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("SMTP injoignable")}
	n := New(sender)
	n.Start()

	// Un échec d'envoi ne doit jamais remonter ni bloquer la fermeture.
	n.Publish(Event{Type: EventOrderCreated, Order: testOrder(), Email: "client@example.com"})
	n.Close()

	assert.Empty(t, sender.sent)
}
