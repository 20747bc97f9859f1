// Package services holds the storefront's business rules. Services take an
// explicit *gorm.DB and return *apperr.Error values the HTTP layer renders.
package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/apperr"
)

// outcome labels a metric with "ok" or the error kind.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperr.KindOf(err))
}

// notFound maps gorm.ErrRecordNotFound to a not_found error with msg and
// anything else unclassified to internal.
func notFound(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(msg)
	}
	return internal(err)
}

// internal passes *apperr.Error through and wraps everything else.
func internal(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Internal("database error", err)
}
