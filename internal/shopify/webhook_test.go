package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhilmk-dev/menahub/internal/domain"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookHMAC(t *testing.T) {
	body := []byte(`{"id": 1}`)
	assert.True(t, VerifyWebhookHMAC(body, sign(body, "s3cret"), "s3cret"))
	assert.False(t, VerifyWebhookHMAC(body, sign(body, "other"), "s3cret"))
	assert.False(t, VerifyWebhookHMAC(body, "", "s3cret"))
	assert.False(t, VerifyWebhookHMAC(body, sign(body, ""), ""))
}

const orderCreatePayload = `{
  "id": 820982911946154508,
  "name": "#1042",
  "order_number": 1042,
  "email": "buyer@example.com",
  "currency": "AED",
  "financial_status": " pending ",
  "fulfillment_status": null,
  "total_price": "105.00",
  "subtotal_price": "100.00",
  "total_tax": "5.00",
  "total_discounts": "0.00",
  "payment_gateway_names": ["cash_on_delivery"],
  "created_at": "2025-04-01T14:00:00+04:00",
  "shipping_address": {"address1": "Street 1", "city": "Dubai", "country_code": "AE"},
  "customer": {"id": 115310627314723954, "first_name": "Lina", "default_address": {"city": "Dubai"}},
  "line_items": [
    {"id": 866550311766439020, "name": "Mug - Blue", "title": "Mug", "sku": "MUG-B",
     "product_id": 632910392, "variant_id": "808950810", "price": "50.00", "total_discount": "0.00",
     "quantity": 2, "vendor": "Acme", "fulfillment_status": "fulfilled"},
    {"id": 866550311766439021, "name": "Gift card", "product_id": null, "price": "5.00", "quantity": 1}
  ]
}`

func TestParseOrderWebhook(t *testing.T) {
	payload, err := ParseOrderWebhook([]byte(orderCreatePayload))
	require.NoError(t, err)

	snap := payload.Snapshot()
	assert.Equal(t, "820982911946154508", snap.ID)
	assert.Equal(t, "1042", snap.OrderNumber)
	assert.Equal(t, domain.FinancialStatus("pending"), snap.FinancialStatus)
	assert.Equal(t, domain.FulfillmentStatus(""), snap.FulfillmentStatus)
	assert.True(t, decimal.RequireFromString("105").Equal(snap.TotalPrice))
	assert.Equal(t, "cash_on_delivery", snap.PaymentGateway)
	assert.Equal(t, "115310627314723954", snap.Customer.ID)
	require.NotNil(t, snap.Customer.DefaultAddress)
	assert.Equal(t, "Dubai", snap.Customer.DefaultAddress.City)
	assert.Equal(t, "AE", snap.ShippingAddress.CountryCode)

	require.Len(t, snap.LineItems, 2)
	assert.Equal(t, "866550311766439020", snap.LineItems[0].ID)
	assert.Equal(t, "632910392", snap.LineItems[0].ProductID)
	assert.Equal(t, "808950810", snap.LineItems[0].VariantID)
	assert.Equal(t, domain.FulfillmentStatus("fulfilled"), snap.LineItems[0].FulfillmentStatus)
	assert.Equal(t, "", snap.LineItems[1].ProductID)
}

func TestParseOrderWebhook_Invalid(t *testing.T) {
	_, err := ParseOrderWebhook([]byte(`{"name": "#1"}`))
	assert.Error(t, err)

	_, err = ParseOrderWebhook([]byte(`{"id": true}`))
	assert.Error(t, err)

	_, err = ParseOrderWebhook([]byte(`not json`))
	assert.Error(t, err)
}
