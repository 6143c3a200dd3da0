package models

import (
	"time"

	"gympay/internal/domain"
)

// Payment is the record posted to the backend Payments API once a gateway
// payment is approved. ConfNumber carries the gateway payment id and is the
// backend's dedupe key.
type Payment struct {
	ClientDNI     int64                `json:"clientDni"`
	Amount        float64              `json:"amount"`
	CreatedAt     time.Time            `json:"createdAt"`
	ExpiresAt     time.Time            `json:"expiresAt"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	ConfNumber    string               `json:"confNumber"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	ProductID     string               `json:"productId,omitempty"`
	Currency      string               `json:"currency,omitempty"`
}

// OutstandingPayment is a payment the backend still lists as not settled.
type OutstandingPayment struct {
	ID            int64                `json:"id"`
	ClientDNI     int64                `json:"clientDni"`
	ConfNumber    string               `json:"confNumber"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	CreatedAt     time.Time            `json:"createdAt"`
}
