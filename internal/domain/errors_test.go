package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"wrapped not found", fmt.Errorf("get payment 9: %w", ErrPaymentNotFound), "PaymentNotFound"},
		{"backend", fmt.Errorf("post: %w", ErrBackendWriteFailed), "BackendWriteFailed"},
		{"config", ErrConfiguration, "ConfigurationError"},
		{"signature", fmt.Errorf("%w: signature mismatch", ErrAuthentication), "AuthenticationError"},
		{"unknown", errors.New("boom"), "InternalError"},
		{"nil", nil, "InternalError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.want {
				t.Errorf("ErrorKind() = %q, want %q", got, tt.want)
			}
		})
	}
}
