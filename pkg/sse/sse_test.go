package sse_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/sse"
)

func TestPublishOnlyReachesKey(t *testing.T) {
	b := sse.NewBroker()
	mine, cancel := b.Subscribe(1)
	defer cancel()
	_, cancelOther := b.Subscribe(2)

	assert.Equal(t, 1, b.Publish(1, sse.Event{Name: "order.placed", Data: 7}))
	got := <-mine
	assert.Equal(t, "order.placed", got.Name)

	cancelOther()
	cancelOther()
	assert.Equal(t, 0, b.Subscribers(2))
	assert.Equal(t, 0, b.Publish(2, sse.Event{Name: "x"}))
}

func TestServeWritesEvents(t *testing.T) {
	b := sse.NewBroker()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = b.Serve(w, r, 42, time.Hour)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return b.Subscribers(42) == 1 }, time.Second, 5*time.Millisecond)
	b.Publish(42, sse.Event{Name: "order.status_changed", Data: map[string]string{"to": "shipped"}})

	r := bufio.NewReader(res.Body)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: order.status_changed", strings.TrimSpace(line))
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, `data: {"to":"shipped"}`, strings.TrimSpace(line))

	cancel()
	assert.Eventually(t, func() bool { return b.Subscribers(42) == 0 }, time.Second, 5*time.Millisecond)
}

func TestCloseEndsServe(t *testing.T) {
	b := sse.NewBroker()
	done := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		done <- b.Serve(w, r, 5, time.Hour)
	}))
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Eventually(t, func() bool { return b.Subscribers(5) == 1 }, time.Second, 5*time.Millisecond)

	b.Close()
	b.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("stream still open after Close")
	}
	assert.Equal(t, 0, b.Subscribers(5))
}
