package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithCtxFallsBackToBase(t *testing.T) {
	assert.Same(t, base(), WithCtx(context.Background()))

	var buf bytes.Buffer
	scoped := New(&buf, true).With("request_id", "abc")
	ctx := InjectLogger(context.Background(), scoped)

	WithCtx(ctx).Info("cart updated")
	assert.Contains(t, buf.String(), `"request_id":"abc"`)
	assert.Contains(t, buf.String(), `"msg":"cart updated"`)
}

func TestMongoDocumentLiftsIdentifiers(t *testing.T) {
	h := newMongoHandler(nil, nil)
	scoped := h.WithAttrs([]slog.Attr{slog.String("request_id", "req-1")}).(*MongoHandler)

	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "order placed", 0)
	rec.AddAttrs(slog.Uint64("order_id", 42), slog.Int("user_id", 7), slog.String("total", "25.00"))

	doc := scoped.document(rec)
	assert.Equal(t, "req-1", doc.RequestID)
	assert.Equal(t, uint64(42), doc.OrderID)
	assert.Equal(t, uint64(7), doc.UserID)
	assert.Equal(t, "25.00", doc.Attrs["total"])
	assert.Equal(t, "INFO", doc.Level)
}

func TestMongoDocumentPrefixesGroups(t *testing.T) {
	h := newMongoHandler(nil, nil).WithGroup("checkout").(*MongoHandler)

	rec := slog.NewRecord(time.Now(), slog.LevelWarn, "empty cart", 0)
	rec.AddAttrs(slog.Int("items", 0))

	doc := h.document(rec)
	require.Contains(t, doc.Attrs, "checkout.items")
}

func TestMongoHandleDropsWhenFull(t *testing.T) {
	h := newMongoHandler(nil, nil)
	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0)
	for i := 0; i < mongoQueueSize+10; i++ {
		require.NoError(t, h.Handle(context.Background(), rec))
	}
	assert.Len(t, h.queue, mongoQueueSize)
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	log := slog.New(NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)).With("user_id", 3)

	log.Info("login")
	assert.Contains(t, a.String(), "user_id=3")
	assert.Contains(t, b.String(), `"user_id":3`)
}
