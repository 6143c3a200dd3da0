package service

import "gympay/internal/domain"

// MapStatus maps a gateway payment status to the backend enum. Unknown values
// are PENDING.
func MapStatus(gatewayStatus string) domain.PaymentStatus {
	switch gatewayStatus {
	case "approved":
		return domain.PaymentStatusPaid
	case "rejected", "cancelled":
		return domain.PaymentStatusRejected
	default:
		return domain.PaymentStatusPending
	}
}

// MapMethod maps a gateway payment_type_id to the backend enum. Unknown types
// fall back to the generic gateway method.
func MapMethod(gatewayMethodType string) domain.PaymentMethod {
	switch gatewayMethodType {
	case "credit_card":
		return domain.PaymentMethodCreditCard
	case "debit_card", "prepaid_card":
		return domain.PaymentMethodDebitCard
	case "bank_transfer":
		return domain.PaymentMethodTransfer
	case "ticket", "atm":
		return domain.PaymentMethodCash
	default:
		return domain.PaymentMethodGateway
	}
}
