package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFailUsesKindStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   apperr.Kind
	}{
		{apperr.EmptyCart("cart is empty"), http.StatusBadRequest, apperr.KindEmptyCart},
		{apperr.NotFound("order not found"), http.StatusNotFound, apperr.KindNotFound},
		{gorm.ErrRecordNotFound, http.StatusNotFound, apperr.KindNotFound},
		{apperr.TransactionFailure("checkout failed", errors.New("disk full")), http.StatusInternalServerError, apperr.KindTransactionFailure},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		response.Fail(rec, tc.err)

		assert.Equal(t, tc.status, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, tc.status, body.Status)
		assert.Equal(t, tc.kind, body.Kind)
	}
}

func TestFailCarriesFieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Fail(rec, apperr.Validation(map[string]string{"quantity": "The quantity must be greater than or equal to 1."}))

	body := decode(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Contains(t, body.Errors, "quantity")
}

func TestFailHidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Fail(rec, errors.New("pq: connection refused"))

	body := decode(t, rec)
	assert.Equal(t, apperr.KindInternal, body.Kind)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Message(rec, http.StatusOK, "Cart cleared")
	assert.JSONEq(t, `{"message":"Cart cleared"}`, rec.Body.String())
}
