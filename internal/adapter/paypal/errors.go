package paypal

import (
	"errors"
	"fmt"
)

// ProviderError is a structured error response from the payment network.
type ProviderError struct {
	StatusCode int
	Name       string
	Message    string
	DebugID    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("paypal %d %s: %s (debug_id=%s)", e.StatusCode, e.Name, e.Message, e.DebugID)
}

// IsDefinitiveRejection reports whether the provider definitively rejected
// the request (4xx). Anything else (transport errors, timeouts, 5xx) means
// the outcome is unknown and reconciliation must defer to webhook/poll state.
func IsDefinitiveRejection(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.StatusCode >= 400 && provErr.StatusCode < 500
	}
	return false
}
