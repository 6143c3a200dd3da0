package domain

const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

// PaymentStatus is the backend's payment status enum.
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRejected PaymentStatus = "REJECTED"
	PaymentStatusPending  PaymentStatus = "PENDING"
)

// PaymentMethod is the backend's payment method enum.
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodTransfer   PaymentMethod = "TRANSFER"
	PaymentMethodCash       PaymentMethod = "CASH"
	PaymentMethodGateway    PaymentMethod = "GATEWAY"
)

// Notification kinds sent by the processor. Only payments are reconciled.
const (
	NotificationKindPayment = "payment"
)

// Reconciliation outcome reasons.
const (
	ReasonUnsupportedKind = "unsupported-kind"
	ReasonNotApproved     = "not-approved"
	ReasonBadReference    = "bad-reference"
	ReasonAlreadyRecorded = "already-recorded"
)

const ProviderMercadoPago = "mercadopago"
