package models

import (
	"encoding/json"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusVerified  OrderStatus = "verified"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValidOrderStatus vérifie qu'un statut fait partie des six valeurs connues.
// Le graphe de transitions n'est volontairement pas restreint davantage :
// n'importe quel statut connu est acceptable comme cible (comportement validé
// côté métier, voir PATCH /api/orders/:id/status).
func IsValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusVerified, OrderStatusPreparing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Address est persistée telle quelle en JSONB — le back ne dépend pas
// de sa structure interne.
type Address struct {
	FullName   string `json:"full_name"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

type Order struct {
	ID              string           `json:"id"`
	OrderNumber     string           `json:"order_number"`
	UserID          *string          `json:"user_id,omitempty"`
	GuestEmail      *string          `json:"guest_email,omitempty"`
	Status          OrderStatus      `json:"status"`
	TotalAmount     float64          `json:"total_amount"`
	ShippingAddress json.RawMessage  `json:"shipping_address"`
	BillingAddress  json.RawMessage  `json:"billing_address,omitempty"`
	Notes           string           `json:"notes"`
	DeliveryDate    *time.Time       `json:"delivery_date,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Items           []OrderItem      `json:"items,omitempty"`
	History         []StatusHistory  `json:"status_history,omitempty"`
}

// OrderItem fige le nom et le prix unitaire du produit au moment de l'achat :
// les commandes passées restent exactes même si le produit change ensuite.
type OrderItem struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"order_id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
}

// StatusHistory est un journal en append-only : une ligne par transition,
// jamais modifiée après écriture.
type StatusHistory struct {
	ID        string      `json:"id"`
	OrderID   string      `json:"order_id"`
	OldStatus *OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	Notes     string      `json:"notes"`
	ChangedBy *string     `json:"changed_by,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
