// Package testutil builds migrated in-memory databases and fixtures for
// tests.
package testutil

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

// Password is the plain password of every fixture user.
const Password = "secret123"

// NewDB opens a private in-memory sqlite database with every migration
// applied. It is closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, "file:"+uuid.NewString()+"?mode=memory&cache=shared", 1)
}

// NewFileDB opens a migrated WAL sqlite file in a temp dir with conns open
// connections, for tests that need statements to interleave. Writers wait
// on the busy timeout instead of failing with SQLITE_BUSY.
func NewFileDB(t testing.TB, conns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storefront.db")
	return open(t, "file:"+path+"?_busy_timeout=10000&_journal_mode=WAL&_txlock=immediate", conns)
}

func open(t testing.TB, dsn string, conns int) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = migration.New(db, io.Discard, migrations.All()).Run(context.Background())
	require.NoError(t, err)
	return db
}

// User creates a user with the given role and Password.
func User(t testing.TB, db *gorm.DB, email, role string) models.User {
	t.Helper()
	hash, err := auth.HashPassword(Password)
	require.NoError(t, err)
	u := models.User{
		Name:     "Test " + role,
		Email:    email,
		Password: hash,
		Phone:    "555-0100",
		Address:  "1 Test Street",
		Role:     role,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// Token issues a bearer token for u.
func Token(t testing.TB, u models.User) string {
	t.Helper()
	tok, err := auth.GenerateToken(u.ID, u.Role)
	require.NoError(t, err)
	return tok
}

func Category(t testing.TB, db *gorm.DB, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name, Description: name + " things"}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// Product creates a product priced at price (a decimal string).
func Product(t testing.TB, db *gorm.DB, name, price string, categoryID *uint) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		Description: name,
		Price:       models.MustMoney(price),
		Stock:       10,
		CategoryID:  categoryID,
		Images:      []string{},
	}
	require.NoError(t, db.Omit("Category").Create(&p).Error)
	return p
}
