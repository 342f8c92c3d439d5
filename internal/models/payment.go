package models

import (
	"encoding/json"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusVerified PaymentStatus = "verified"
	PaymentStatusFailed   PaymentStatus = "failed"
)

const (
	PaymentTypeBankTransfer   = "bank_transfer"
	PaymentTypeMobilePayment  = "mobile_payment"
	PaymentTypeCashOnDelivery = "cash_on_delivery"
)

type PaymentMethod struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsActive bool   `json:"is_active"`
}

// Payment est une déclaration de paiement manuelle (virement, paiement mobile…)
// vérifiée ensuite par un administrateur — aucune passerelle de paiement ici.
type Payment struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"order_id"`
	PaymentMethodID   string          `json:"payment_method_id"`
	Amount            float64         `json:"amount"`
	Status            PaymentStatus   `json:"status"`
	ReferenceNumber   string          `json:"reference_number"`
	PaymentDetails    json.RawMessage `json:"payment_details,omitempty"`
	ProofImageURL     *string         `json:"proof_image_url,omitempty"`
	VerifiedBy        *string         `json:"verified_by,omitempty"`
	VerifiedAt        *time.Time      `json:"verified_at,omitempty"`
	VerificationNotes *string         `json:"verification_notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
