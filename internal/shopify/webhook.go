package shopify

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akhilmk-dev/menahub/internal/domain"
)

// VerifyWebhookHMAC checks X-Shopify-Hmac-Sha256 (base64 HMAC-SHA256 of the raw body).
func VerifyWebhookHMAC(body []byte, hmacHeader, secret string) bool {
	if secret == "" || hmacHeader == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(hmacHeader))
}

// id accepts both JSON numbers and strings; REST payloads use numbers.
type id string

func (i *id) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = id(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*i = id(n.String())
	return nil
}

type webhookAddress struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Address1    string   `json:"address1"`
	Address2    *string  `json:"address2"`
	Company     *string  `json:"company"`
	Phone       string   `json:"phone"`
	City        string   `json:"city"`
	Province    string   `json:"province"`
	Zip         string   `json:"zip"`
	Country     string   `json:"country"`
	CountryCode string   `json:"country_code"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func (a *webhookAddress) toDomain() domain.Address {
	if a == nil {
		return domain.Address{}
	}
	return domain.Address{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Address1:    a.Address1,
		Address2:    a.Address2,
		Company:     a.Company,
		Phone:       a.Phone,
		City:        a.City,
		Province:    a.Province,
		Zip:         a.Zip,
		Country:     a.Country,
		CountryCode: a.CountryCode,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
	}
}

// OrderWebhook is the orders/create and orders/paid REST payload
type OrderWebhook struct {
	ID                  id                `json:"id"`
	Name                string            `json:"name"`
	OrderNumber         json.Number       `json:"order_number"`
	Email               string            `json:"email"`
	Phone               string            `json:"phone"`
	Currency            string            `json:"currency"`
	FinancialStatus     string            `json:"financial_status"`
	FulfillmentStatus   *string           `json:"fulfillment_status"`
	TotalPrice          decimal.Decimal   `json:"total_price"`
	SubtotalPrice       decimal.Decimal   `json:"subtotal_price"`
	TotalTax            decimal.Decimal   `json:"total_tax"`
	TotalDiscounts      decimal.Decimal   `json:"total_discounts"`
	PaymentGatewayNames []string          `json:"payment_gateway_names"`
	CreatedAt           time.Time         `json:"created_at"`
	ShippingAddress     *webhookAddress   `json:"shipping_address"`
	Customer            *webhookCustomer  `json:"customer"`
	LineItems           []webhookLineItem `json:"line_items"`
}

type webhookCustomer struct {
	ID             id              `json:"id"`
	CreatedAt      *time.Time      `json:"created_at"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Currency       string          `json:"currency"`
	DefaultAddress *webhookAddress `json:"default_address"`
}

type webhookLineItem struct {
	ID                id              `json:"id"`
	Name              string          `json:"name"`
	Title             string          `json:"title"`
	SKU               string          `json:"sku"`
	ProductID         id              `json:"product_id"`
	VariantID         id              `json:"variant_id"`
	Price             decimal.Decimal `json:"price"`
	TotalDiscount     decimal.Decimal `json:"total_discount"`
	Quantity          int             `json:"quantity"`
	Vendor            string          `json:"vendor"`
	FulfillmentStatus *string         `json:"fulfillment_status"`
}

// ParseOrderWebhook decodes an order webhook body
func ParseOrderWebhook(body []byte) (*OrderWebhook, error) {
	var payload OrderWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode order webhook: %w", err)
	}
	if payload.ID == "" {
		return nil, fmt.Errorf("order webhook has no id")
	}
	return &payload, nil
}

// Snapshot converts the payload into the platform-neutral order snapshot
func (w *OrderWebhook) Snapshot() *domain.OrderSnapshot {
	snapshot := &domain.OrderSnapshot{
		ID:              string(w.ID),
		Name:            w.Name,
		OrderNumber:     w.OrderNumber.String(),
		Email:           w.Email,
		Phone:           w.Phone,
		Currency:        w.Currency,
		FinancialStatus: domain.FinancialStatus(strings.TrimSpace(w.FinancialStatus)),
		TotalPrice:      w.TotalPrice,
		SubtotalPrice:   w.SubtotalPrice,
		TotalTax:        w.TotalTax,
		TotalDiscounts:  w.TotalDiscounts,
		ShippingAddress: w.ShippingAddress.toDomain(),
		CreatedAt:       w.CreatedAt,
	}
	if w.FulfillmentStatus != nil {
		snapshot.FulfillmentStatus = domain.FulfillmentStatus(*w.FulfillmentStatus)
	}
	if len(w.PaymentGatewayNames) > 0 {
		snapshot.PaymentGateway = w.PaymentGatewayNames[0]
	}
	if c := w.Customer; c != nil {
		snapshot.Customer = domain.Customer{
			ID:        string(c.ID),
			CreatedAt: c.CreatedAt,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Phone:     c.Phone,
			Currency:  c.Currency,
		}
		if c.DefaultAddress != nil {
			addr := c.DefaultAddress.toDomain()
			snapshot.Customer.DefaultAddress = &addr
		}
	}
	for _, li := range w.LineItems {
		item := domain.SnapshotLineItem{
			ID:            string(li.ID),
			Name:          li.Name,
			Title:         li.Title,
			SKU:           li.SKU,
			ProductID:     string(li.ProductID),
			VariantID:     string(li.VariantID),
			Price:         li.Price,
			TotalDiscount: li.TotalDiscount,
			Quantity:      li.Quantity,
			VendorName:    li.Vendor,
		}
		if li.FulfillmentStatus != nil {
			item.FulfillmentStatus = domain.FulfillmentStatus(*li.FulfillmentStatus)
		}
		snapshot.LineItems = append(snapshot.LineItems, item)
	}
	return snapshot
}
