package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/apperr"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperr.Kind(""), apperr.KindOf(nil))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(apperr.NotFound("cart not found")))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(fmt.Errorf("repo: %w", gorm.ErrRecordNotFound)))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("boom")))

	wrapped := fmt.Errorf("service: %w", apperr.EmptyCart("cart is empty"))
	assert.Equal(t, apperr.KindEmptyCart, apperr.KindOf(wrapped))
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", apperr.InvalidInput("quantity must be at least 1"))
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	assert.False(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := apperr.TransactionFailure("checkout failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestStatus(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindInvalidInput:       http.StatusBadRequest,
		apperr.KindEmptyCart:          http.StatusBadRequest,
		apperr.KindNotFound:           http.StatusNotFound,
		apperr.KindUnauthorized:       http.StatusUnauthorized,
		apperr.KindForbidden:          http.StatusForbidden,
		apperr.KindConflict:           http.StatusConflict,
		apperr.KindTransactionFailure: http.StatusInternalServerError,
		apperr.KindInternal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, apperr.Status(kind), kind)
	}
}

func TestPublicMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "Internal Server Error", apperr.PublicMessage(errors.New("pq: password leaked")))
	assert.Equal(t, "cart not found", apperr.PublicMessage(apperr.NotFound("cart not found")))
}
