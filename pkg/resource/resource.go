// Package resource shapes models into their API representation.
//
//	type ProductResource struct { models.Product; ImageURLs []string `json:"imageUrls"` }
//	c.JSON(200, resource.Many(products, toProductResource))
package resource

import "github.com/shashiranjanraj/storefront/pkg/collection"

// Transformer maps a model to its API shape.
type Transformer[T, R any] func(T) R

// One transforms a single model.
func One[T, R any](v T, fn Transformer[T, R]) R { return fn(v) }

// Many transforms a slice. An empty input yields [] rather than null.
func Many[T, R any](items []T, fn Transformer[T, R]) []R {
	return collection.Map(items, fn)
}

// Ptr transforms a pointer, preserving nil.
func Ptr[T, R any](v *T, fn Transformer[T, R]) *R {
	if v == nil {
		return nil
	}
	out := fn(*v)
	return &out
}
