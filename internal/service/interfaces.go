package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/akhilmk-dev/menahub/internal/domain"
)

// OrderLifecycle is the write side of orders
type OrderLifecycle interface {
	CreateFromSnapshot(ctx context.Context, snapshot *domain.OrderSnapshot, actor string) (*domain.Order, bool, error)
	Import(ctx context.Context, orderID, actor string) (*domain.Order, bool, error)
	Edit(ctx context.Context, payload domain.EditPayload, actor string) (*ReconcileResult, error)
	Fulfill(ctx context.Context, req domain.FulfillmentRequest, actor string) (*FulfillmentResult, error)
	FulfillSingle(ctx context.Context, req domain.SingleFulfillmentRequest, actor string) (*FulfillmentResult, error)
	FulfillRemaining(ctx context.Context, orderID, actor string) (*FulfillmentResult, error)
	Cancel(ctx context.Context, orderID string, req CancelRequest, actor string) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID string, update StatusUpdate, actor string) (*domain.Order, error)
	SoftDelete(ctx context.Context, orderID, actor string) (*DeleteResult, error)
}

// OrderQueries is the read side of orders
type OrderQueries interface {
	ListOrders(ctx context.Context, q ListOrdersQuery) (*OrderPage, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	VendorLineItems(ctx context.Context, vendorID string, page, limit int) (*VendorLineItemPage, error)
	Timeline(ctx context.Context, orderID string) ([]*domain.OrderTimelineEntry, error)
	RemovedItems(ctx context.Context, orderID string) ([]*domain.RemovedLineItem, error)
}

// AccessControl manages roles, permissions and users
type AccessControl interface {
	CreatePermission(ctx context.Context, req PermissionRequest) (*domain.Permission, error)
	ListPermissions(ctx context.Context) ([]*domain.Permission, error)
	GetPermission(ctx context.Context, id uuid.UUID) (*domain.Permission, error)
	UpdatePermission(ctx context.Context, id uuid.UUID, req PermissionRequest) (*domain.Permission, error)
	DeletePermission(ctx context.Context, id uuid.UUID) error

	CreateRole(ctx context.Context, req RoleRequest) (*domain.Role, error)
	ListRoles(ctx context.Context) ([]*domain.Role, error)
	GetRole(ctx context.Context, id uuid.UUID) (*domain.Role, error)
	UpdateRole(ctx context.Context, id uuid.UUID, req RoleRequest) (*domain.Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error

	CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListUsers(ctx context.Context, page, limit int) (*UserPage, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error

	Authorize(ctx context.Context, userID uuid.UUID, permission string) (*domain.User, error)
}

var (
	_ OrderLifecycle = (*orderService)(nil)
	_ OrderQueries   = (*queryService)(nil)
	_ AccessControl  = (*accessService)(nil)
)
