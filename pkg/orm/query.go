// Package orm adds pagination and cached reads on top of *gorm.DB.
package orm

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/cache"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Query is a chainable wrapper around a *gorm.DB scope.
type Query struct {
	db *gorm.DB
}

// From starts a query on db.
func From(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) Model(v any) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query any, args ...any) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Order(value any) *Query {
	return &Query{db: q.db.Order(value)}
}

// When applies fn only when cond holds.
func (q *Query) When(cond bool, fn func(*gorm.DB) *gorm.DB) *Query {
	if !cond {
		return q
	}
	return &Query{db: fn(q.db)}
}

func (q *Query) Get(dest any) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest any) error {
	return q.db.First(dest).Error
}

// Cache reads through store under key.
func (q *Query) Cache(ctx context.Context, store cache.Store, key string, ttl time.Duration, dest any) error {
	return cache.Remember(ctx, store, key, ttl, dest, func() error {
		return q.db.WithContext(ctx).Find(dest).Error
	})
}

// Paginate counts the scope and loads one page into dest, preloading the
// named associations. page is 1-based; limit falls back to DefaultLimit and
// is capped at MaxLimit.
func (q *Query) Paginate(page, limit int, dest any, preloads ...string) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	p := Pagination{Page: page, Limit: limit}
	if err := q.db.Session(&gorm.Session{}).Count(&p.Total).Error; err != nil {
		return p, err
	}
	p.Pages = int((p.Total + int64(limit) - 1) / int64(limit))

	tx := q.db.Offset((page - 1) * limit).Limit(limit)
	for _, name := range preloads {
		tx = tx.Preload(name)
	}
	return p, tx.Find(dest).Error
}
