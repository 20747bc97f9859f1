// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// JSON decodes r.Body into dest and runs validation. The body is capped at
// MAX_BODY_BYTES. Malformed or oversized bodies yield an invalid_input error;
// rule failures yield an invalid_input error carrying per-field messages.
func JSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return apperr.InvalidInput("request body is required")
	}
	r.Body = http.MaxBytesReader(nil, r.Body, config.MaxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.InvalidInput(fmt.Sprintf("request body too large (max %d bytes)", maxErr.Limit))
		case errors.Is(err, io.EOF):
			return apperr.InvalidInput("request body is required")
		default:
			return apperr.Wrap(apperr.KindInvalidInput, "invalid JSON body", err)
		}
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return apperr.Validation(errs)
	}
	return nil
}
