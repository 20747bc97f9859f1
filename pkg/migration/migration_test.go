package migration_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shashiranjanraj/storefront/pkg/migration"
)

type widget struct {
	ID   uint
	Name string
}

type gadget struct {
	ID uint
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func create(model any) migration.Migration {
	return migration.Func{
		UpFn:   func(tx *gorm.DB) error { return tx.Migrator().CreateTable(model) },
		DownFn: func(tx *gorm.DB) error { return tx.Migrator().DropTable(model) },
	}
}

func TestRunAndRollback(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	var out bytes.Buffer

	// registered out of order on purpose
	r := migration.New(db, &out, []migration.Entry{
		{Name: "20240102_create_gadgets", Migration: create(&gadget{})},
		{Name: "20240101_create_widgets", Migration: create(&widget{})},
	})

	n, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, db.Migrator().HasTable(&widget{}))
	assert.True(t, db.Migrator().HasTable(&gadget{}))
	assert.Contains(t, out.String(), "Migrated:  20240101_create_widgets")

	n, err = r.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	states, err := r.Status(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "20240101_create_widgets", states[0].Name)
	assert.True(t, states[0].Ran)
	assert.Equal(t, 1, states[1].Batch)

	n, err = r.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, db.Migrator().HasTable(&widget{}))

	n, err = r.Rollback(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	r := migration.New(db, nil, []migration.Entry{
		{Name: "20240101_broken", Migration: migration.Func{
			UpFn: func(*gorm.DB) error { return errors.New("boom") },
		}},
	})

	_, err := r.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "20240101_broken")

	states, err := r.Status(ctx)
	require.NoError(t, err)
	assert.False(t, states[0].Ran)
}
