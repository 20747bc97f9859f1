// Package response writes JSON payloads and the error envelope shared by
// every endpoint:
//
//	{"status":404,"kind":"not_found","message":"product not found"}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// ErrorBody is the body of every non-2xx response.
type ErrorBody struct {
	Status  int               `json:"status"`
	Kind    apperr.Kind       `json:"kind"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Success sends a 200 with v as the body.
func Success(w http.ResponseWriter, v any) { JSON(w, http.StatusOK, v) }

// Created sends a 201 with v as the body.
func Created(w http.ResponseWriter, v any) { JSON(w, http.StatusCreated, v) }

// Message sends {"message": msg} with the given status.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Fail renders err as the error envelope; the status follows its kind.
func Fail(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	body := ErrorBody{
		Status:  apperr.Status(kind),
		Kind:    kind,
		Message: apperr.PublicMessage(err),
	}
	if e, ok := apperr.As(err); ok {
		body.Errors = e.Fields
	}
	JSON(w, body.Status, body)
}

// Error sends an envelope with an explicit kind and message.
func Error(w http.ResponseWriter, kind apperr.Kind, message string) {
	Fail(w, apperr.New(kind, message))
}

// Paginated sends a 200 with {"items": data, "pagination": p}.
func Paginated(w http.ResponseWriter, data any, p orm.Pagination) {
	JSON(w, http.StatusOK, map[string]any{
		"items":      data,
		"pagination": p,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, apperr.KindUnauthorized, "Unauthorized")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, apperr.KindForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, apperr.KindNotFound, "Not found")
}
