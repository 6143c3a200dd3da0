package service

import (
	"testing"

	"gympay/internal/domain"
)

func TestMapStatus(t *testing.T) {
	tests := map[string]domain.PaymentStatus{
		"approved":     domain.PaymentStatusPaid,
		"rejected":     domain.PaymentStatusRejected,
		"cancelled":    domain.PaymentStatusRejected,
		"pending":      domain.PaymentStatusPending,
		"in_process":   domain.PaymentStatusPending,
		"authorized":   domain.PaymentStatusPending,
		"refunded":     domain.PaymentStatusPending,
		"charged_back": domain.PaymentStatusPending,
		"APPROVED":     domain.PaymentStatusPending,
		"":             domain.PaymentStatusPending,
		"\x00garbage":  domain.PaymentStatusPending,
	}
	for in, want := range tests {
		if got := MapStatus(in); got != want {
			t.Errorf("MapStatus(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMapMethod(t *testing.T) {
	tests := map[string]domain.PaymentMethod{
		"credit_card":      domain.PaymentMethodCreditCard,
		"debit_card":       domain.PaymentMethodDebitCard,
		"prepaid_card":     domain.PaymentMethodDebitCard,
		"bank_transfer":    domain.PaymentMethodTransfer,
		"ticket":           domain.PaymentMethodCash,
		"atm":              domain.PaymentMethodCash,
		"account_money":    domain.PaymentMethodGateway,
		"digital_currency": domain.PaymentMethodGateway,
		"":                 domain.PaymentMethodGateway,
	}
	for in, want := range tests {
		if got := MapMethod(in); got != want {
			t.Errorf("MapMethod(%q) = %s, want %s", in, got, want)
		}
	}
}
