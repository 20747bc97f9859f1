package kernel_test

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/listeners"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/internal/testutil"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/sse"
)

func TestCustomerStreamSeesStatusChange(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.User(t, db, "admin@example.com", models.RoleAdministrator)
	customer := testutil.User(t, db, "c@example.com", models.RoleCustomer)
	product := testutil.Product(t, db, "Lamp", "12.00", nil)

	ctx := context.Background()
	_, err := services.NewCartService(db).Add(ctx, customer.ID, product.ID, 1)
	require.NoError(t, err)
	order, err := services.NewCheckoutService(db, nil).Checkout(ctx, customer.ID, services.CheckoutInput{
		ShippingAddress: "1 Main St", PaymentMethod: "card",
	})
	require.NoError(t, err)

	bus := event.NewBus(nil)
	streams := sse.NewBroker()
	listeners.Register(bus, nil, nil, streams)

	srv := httptest.NewServer(kernel.NewHTTPKernel(kernel.Deps{DB: db, Events: bus, Streams: streams}).Handler())
	defer srv.Close()

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, srv.URL+"/api/orders/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testutil.Token(t, customer))
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Eventually(t, func() bool { return streams.Subscribers(customer.ID) == 1 }, time.Second, 5*time.Millisecond)

	body := bytes.NewBufferString(`{"status":"shipped"}`)
	put, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/api/orders/%d/status", srv.URL, order.ID), body)
	require.NoError(t, err)
	put.Header.Set("Authorization", "Bearer "+testutil.Token(t, admin))
	put.Header.Set("Content-Type", "application/json")
	putRes, err := http.DefaultClient.Do(put)
	require.NoError(t, err)
	putRes.Body.Close()
	require.Equal(t, http.StatusOK, putRes.StatusCode)

	line, err := bufio.NewReader(res.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: order.status_changed", strings.TrimSpace(line))
}
