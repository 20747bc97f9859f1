package storage_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/storage"
)

func newDisk(t *testing.T) *storage.LocalDisk {
	t.Helper()
	d, err := storage.NewLocalDisk(t.TempDir(), "http://cdn.test/storage/")
	require.NoError(t, err)
	return d
}

func TestLocalDiskLifecycle(t *testing.T) {
	ctx := context.Background()
	d := newDisk(t)

	require.NoError(t, d.Put(ctx, "products/7/front.jpg", []byte("jpeg")))
	ok, err := d.Exists(ctx, "products/7/front.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := d.Get(ctx, "products/7/front.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	require.NoError(t, d.Delete(ctx, "products/7/front.jpg", "products/7/missing.jpg"))
	ok, _ = d.Exists(ctx, "products/7/front.jpg")
	assert.False(t, ok)
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d, err := storage.NewLocalDisk(root, "")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "../../escape.txt", []byte("x")))
	data, err := d.Get(ctx, "escape.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	assert.ErrorIs(t, d.Put(ctx, "/", []byte("x")), storage.ErrInvalidPath)
}

func TestURLs(t *testing.T) {
	m := storage.NewManager("local")
	m.Register("local", newDisk(t))

	assert.Equal(t, []string{"http://cdn.test/storage/a.jpg", "http://cdn.test/storage/b/c.png"},
		m.URLs([]string{"a.jpg", "/b/c.png"}))

	_, err := m.Disk("s3")
	assert.Error(t, err)
}

func TestHandlerServesFilesNotDirectories(t *testing.T) {
	d := newDisk(t)
	require.NoError(t, d.Put(context.Background(), "categories/books.png", []byte("png")))
	h := http.StripPrefix("/storage", d.Handler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/categories/books.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/categories/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
