package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Address is a postal address as reported by the platform
type Address struct {
	FirstName   string   `json:"first_name,omitempty"`
	LastName    string   `json:"last_name,omitempty"`
	Address1    string   `json:"address1,omitempty"`
	Address2    *string  `json:"address2,omitempty"`
	Company     *string  `json:"company,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	City        string   `json:"city,omitempty"`
	Province    string   `json:"province,omitempty"`
	Zip         string   `json:"zip,omitempty"`
	Country     string   `json:"country,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// Customer is the customer snapshot captured with an order
type Customer struct {
	ID             string     `json:"id,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Currency       string     `json:"currency,omitempty"`
	DefaultAddress *Address   `json:"default_address,omitempty"`
}

// Order is the locally stored copy of a platform order
type Order struct {
	OrderID           string            `json:"order_id"`
	FulfillmentID     *string           `json:"fulfillment_id"`
	Name              string            `json:"name"`
	OrderNumber       string            `json:"order_number"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone"`
	PaymentGateway    *string           `json:"payment_gate_way"`
	Currency          string            `json:"currency"`
	FinancialStatus   FinancialStatus   `json:"financial_status"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status"`
	TotalPrice        decimal.Decimal   `json:"total_price"`
	SubtotalPrice     decimal.Decimal   `json:"subtotal_price"`
	TotalTax          decimal.Decimal   `json:"total_tax"`
	TotalDiscounts    decimal.Decimal   `json:"total_discounts"`
	ShippingAddress   Address           `json:"shipping_address"`
	Customer          Customer          `json:"customer"`
	CancelReason      *string           `json:"cancel_reason"`
	CancelledAt       *time.Time        `json:"cancelled_at"`
	DeletedAt         *time.Time        `json:"deleted_at,omitempty"`
	Version           int               `json:"version"`
	LineItems         LineItems         `json:"line_items"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// IsDeleted reports whether the order was soft-deleted
func (o *Order) IsDeleted() bool {
	return o.DeletedAt != nil
}

// AllActiveFulfilled reports whether every active line item carries a fulfilled status.
// An order without active items is not considered fulfilled.
func (o *Order) AllActiveFulfilled() bool {
	active := o.LineItems.Active()
	if len(active) == 0 {
		return false
	}
	for _, item := range active {
		if !item.FulfillmentStatus.IsFulfilled() {
			return false
		}
	}
	return true
}

// RemovedLineItem accumulates the quantity removed from one line item of an order
type RemovedLineItem struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    string          `json:"order_id"`
	LineItemID string          `json:"line_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	SKU        string          `json:"sku"`
	ProductID  string          `json:"product_id"`
	VariantID  string          `json:"variant_id"`
	Title      string          `json:"title"`
	VendorID   string          `json:"vendor_id"`
	VendorName string          `json:"vendor_name"`
	RemovedAt  time.Time       `json:"removed_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// OrderTimelineEntry is one immutable audit record for an order
type OrderTimelineEntry struct {
	ID          uuid.UUID              `json:"id"`
	OrderID     string                 `json:"order_id"`
	Action      TimelineAction         `json:"action"`
	Timestamp   time.Time              `json:"timestamp"`
	PerformedBy string                 `json:"performed_by"`
	Changes     map[string]interface{} `json:"changes"`
	Message     string                 `json:"message"`
}

// Permission grants access to one page / API surface
type Permission struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"permission_name"`
	PageURL   string    `json:"page_url"`
	Group     string    `json:"group"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Role is a named set of permissions
type Role struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"role_name"`
	PermissionIDs []uuid.UUID `json:"permissions"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// User is a back-office account (admin staff or vendor)
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Mobile         string    `json:"mobile"`
	WhatsappNumber string    `json:"whatsapp_number"`
	RoleID         uuid.UUID `json:"role"`
	StoreName      *string   `json:"store_name,omitempty"`
	BusinessName   *string   `json:"business_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
