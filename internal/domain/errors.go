package domain

import "errors"

var (
	ErrConfiguration           = errors.New("configuration error")
	ErrAuthentication          = errors.New("authentication error")
	ErrUnsupportedNotification = errors.New("unsupported notification")
	ErrMalformedReference      = errors.New("malformed reference")
	ErrGatewayUnavailable      = errors.New("gateway unavailable")
	ErrGatewayRejected         = errors.New("gateway rejected request")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrBackendWriteFailed      = errors.New("backend write failed")
	ErrDuplicatePayment        = errors.New("payment already recorded")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrConfiguration, "ConfigurationError"},
	{ErrAuthentication, "AuthenticationError"},
	{ErrUnsupportedNotification, "UnsupportedNotification"},
	{ErrMalformedReference, "MalformedReference"},
	{ErrPaymentNotFound, "PaymentNotFound"},
	{ErrGatewayRejected, "GatewayRejected"},
	{ErrGatewayUnavailable, "GatewayUnavailable"},
	{ErrDuplicatePayment, "DuplicatePayment"},
	{ErrBackendWriteFailed, "BackendWriteFailed"},
}

// ErrorKind returns a stable name for the first taxonomy error found in err's
// chain, or "InternalError".
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "InternalError"
}
