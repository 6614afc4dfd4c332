package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/akhilmk-dev/menahub/internal/domain"
)

// CancelRequest is the cancellation payload
type CancelRequest struct {
	CancelReason    string     `json:"cancel_reason"`
	CancelledAt     *time.Time `json:"cancelled_at"`
	FinancialStatus string     `json:"financial_status"`
}

// LineItemStatus is a per-line-item fulfillment status pushed by the platform
type LineItemStatus struct {
	ID                string `json:"id" binding:"required"`
	FulfillmentStatus string `json:"fulfillment_status"`
}

// StatusUpdate is the mark-paid / status sync payload. Empty fields are left untouched.
type StatusUpdate struct {
	FinancialStatus   string           `json:"financial_status"`
	FulfillmentStatus string           `json:"fulfillment_status"`
	Currency          string           `json:"currency"`
	LineItems         []LineItemStatus `json:"line_items"`
}

// DeleteResult is returned by a soft delete
type DeleteResult struct {
	OrderID   string    `json:"order_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// ListOrdersQuery is the order listing request
type ListOrdersQuery struct {
	Page              int    `form:"page"`
	Limit             int    `form:"limit"`
	FinancialStatus   string `form:"financial_status"`
	FulfillmentStatus string `form:"fulfillment_status"`
	IncludeDeleted    bool   `form:"include_deleted"`
}

// OrderPage is one page of orders
type OrderPage struct {
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Orders     []*domain.Order `json:"orders"`
}

// VendorLineItem is a line item flattened with the order fields a vendor needs
type VendorLineItem struct {
	domain.LineItem
	OrderID         string          `json:"order_id"`
	OrderNumber     string          `json:"order_number"`
	PaymentGateway  *string         `json:"payment_gate_way"`
	FulfillmentID   *string         `json:"fulfillment_id"`
	ShippingAddress domain.Address  `json:"shipping_address"`
	Customer        domain.Customer `json:"customer"`
}

// VendorLineItemPage is one page of orders, flattened to the vendor's line items
type VendorLineItemPage struct {
	TotalOrders int              `json:"totalOrders"`
	TotalPages  int              `json:"totalPages"`
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
	LineItems   []VendorLineItem `json:"line_items"`
}

// PermissionRequest creates or updates a permission
type PermissionRequest struct {
	Name    string `json:"permission_name" binding:"required"`
	PageURL string `json:"page_url"`
	Group   string `json:"group"`
}

// RoleRequest creates or updates a role
type RoleRequest struct {
	Name          string      `json:"role_name" binding:"required"`
	PermissionIDs []uuid.UUID `json:"permissions"`
}

// CreateUserRequest creates a back-office user
type CreateUserRequest struct {
	Name           string    `json:"name" binding:"required"`
	Email          string    `json:"email" binding:"required,email"`
	Password       string    `json:"password" binding:"required,min=8"`
	Mobile         string    `json:"mobile"`
	WhatsappNumber string    `json:"whatsapp_number"`
	RoleID         uuid.UUID `json:"role" binding:"required"`
	StoreName      *string   `json:"store_name,omitempty"`
	BusinessName   *string   `json:"business_name,omitempty"`
}

// UpdateUserRequest changes a user; empty fields keep their stored value
type UpdateUserRequest struct {
	Name           string     `json:"name"`
	Email          string     `json:"email" binding:"omitempty,email"`
	Password       string     `json:"password" binding:"omitempty,min=8"`
	Mobile         string     `json:"mobile"`
	WhatsappNumber string     `json:"whatsapp_number"`
	RoleID         *uuid.UUID `json:"role,omitempty"`
	StoreName      *string    `json:"store_name,omitempty"`
	BusinessName   *string    `json:"business_name,omitempty"`
}

// ChangePasswordRequest replaces the caller's own password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// Profile is the authenticated user with its role and permission names
type Profile struct {
	User        *domain.User `json:"user"`
	Role        *domain.Role `json:"role"`
	Permissions []string     `json:"permissions"`
}

// UserPage is one page of users
type UserPage struct {
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Users []*domain.User `json:"users"`
}
