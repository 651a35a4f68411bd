package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"mandale/internal/errs"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesSentinelOfSameKind(t *testing.T) {
	err := errs.NotFound("product %s not found", "p-1")

	assert.True(t, errors.Is(err, errs.ErrNotFound))
	assert.False(t, errors.Is(err, errs.ErrConflict))
	assert.Equal(t, "product p-1 not found", err.Error())
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	err := fmt.Errorf("accept offer: %w", errs.Conflict("offer already answered"))

	assert.True(t, errors.Is(err, errs.ErrConflict))
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	assert.Equal(t, "offer already answered", errs.Message(err))
}

func TestMessageHidesInternalErrors(t *testing.T) {
	err := fmt.Errorf("query failed: %w", errors.New("connection refused"))

	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
	assert.Equal(t, "Internal server error", errs.Message(err))
}

func TestPaymentRejectedUnwrapsReason(t *testing.T) {
	reason := errors.New("gateway timeout")
	err := errs.PaymentRejected(reason, "payment with %s failed", "lemon")

	assert.True(t, errors.Is(err, errs.ErrPaymentRejected))
	assert.True(t, errors.Is(err, reason))
	assert.Equal(t, "payment with lemon failed: gateway timeout", err.Error())
	assert.Equal(t, "payment with lemon failed", errs.Message(err))
}
