// internal/pkg/apperrors/errors_test.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrappedError(t *testing.T) {
	base := E(KindAmountMismatch, "order.ProcessPaymentReturn", "callback amount does not match order total", nil)
	wrapped := fmt.Errorf("handling callback: %w", base)

	assert.Equal(t, KindAmountMismatch, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindEmptyOrder, http.StatusBadRequest},
		{KindInvalidTransition, http.StatusBadRequest},
		{KindInvalidSignature, http.StatusBadRequest},
		{KindAmountMismatch, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindPaymentConfig, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(E(tc.kind, "op", "", nil)))
	}
}

func TestUserMessageHidesInternals(t *testing.T) {
	internal := Internal("order.CreateOrder", errors.New("pq: connection refused"))
	assert.Equal(t, "internal server error", UserMessage(internal))
	assert.NotContains(t, UserMessage(internal), "connection refused")

	visible := Validation("order.CreateOrder", "shipping address is required")
	assert.Equal(t, "shipping address is required", UserMessage(visible))
}

func TestErrorStringIncludesOpAndCause(t *testing.T) {
	err := E(KindInternal, "payment.CreateTransaction", "insert failed", errors.New("disk full"))
	assert.Contains(t, err.Error(), "payment.CreateTransaction")
	assert.Contains(t, err.Error(), "disk full")
	assert.ErrorIs(t, err, err.Err)
}
