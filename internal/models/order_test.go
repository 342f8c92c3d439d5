package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidOrderStatus(t *testing.T) {
	valid := []OrderStatus{
		OrderStatusPending, OrderStatusVerified, OrderStatusPreparing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	}
	for _, s := range valid {
		assert.True(t, IsValidOrderStatus(s), string(s))
	}

	invalid := []OrderStatus{"", "paid", "PENDING", "expédiée", "refunded"}
	for _, s := range invalid {
		assert.False(t, IsValidOrderStatus(s), string(s))
	}
}
