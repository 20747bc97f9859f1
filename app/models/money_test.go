package models_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
)

func TestMoneyRendersCents(t *testing.T) {
	order := models.Order{Total: models.NewMoney(decimal.NewFromInt(25))}

	raw, err := json.Marshal(order)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total":"25.00"`)

	assert.Equal(t, "19.99", models.MustMoney("19.994").StringFixed(2))
}

func TestMoneyDecodesNumbersAndStrings(t *testing.T) {
	var in struct {
		A models.Money `json:"a"`
		B models.Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":10.5,"b":"3.25"}`), &in))
	assert.True(t, decimal.RequireFromString("10.5").Equal(in.A.Decimal))
	assert.True(t, decimal.RequireFromString("3.25").Equal(in.B.Decimal))
}
