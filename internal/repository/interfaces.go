package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/akhilmk-dev/menahub/internal/domain"
)

// OrderFilter narrows an order listing
type OrderFilter struct {
	FinancialStatus   string
	FulfillmentStatus string
	IncludeDeleted    bool
	Limit             int
	Offset            int
}

// OrderRepository defines order data access methods.
// Update and SaveReconciliation are version-checked: they fail with
// errors.ErrConcurrencyConflict when order.Version no longer matches the stored row,
// and bump order.Version on success.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	SaveReconciliation(ctx context.Context, order *domain.Order, removed []domain.RemovedLineItem) error
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error)
	ListByVendor(ctx context.Context, vendorID string, limit, offset int) ([]*domain.Order, int, error)
}

// RemovedLineItemRepository defines removed line item data access methods
type RemovedLineItemRepository interface {
	// Accumulate creates the (order, line item) record or adds item.Quantity to it.
	Accumulate(ctx context.Context, item *domain.RemovedLineItem) error
	Get(ctx context.Context, orderID, lineItemID string) (*domain.RemovedLineItem, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*domain.RemovedLineItem, error)
}

// OrderTimelineRepository defines order timeline data access methods
type OrderTimelineRepository interface {
	Append(ctx context.Context, entry *domain.OrderTimelineEntry) error
	ListByOrderID(ctx context.Context, orderID string) ([]*domain.OrderTimelineEntry, error)
}

// PermissionRepository defines permission data access methods
type PermissionRepository interface {
	Create(ctx context.Context, permission *domain.Permission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Permission, error)
	GetByName(ctx context.Context, name string) (*domain.Permission, error)
	List(ctx context.Context) ([]*domain.Permission, error)
	Update(ctx context.Context, permission *domain.Permission) error
	Delete(ctx context.Context, id uuid.UUID) error
	IsAssigned(ctx context.Context, id uuid.UUID) (bool, error)
}

// RoleRepository defines role data access methods
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasUsers(ctx context.Context, id uuid.UUID) (bool, error)
	PermissionNames(ctx context.Context, id uuid.UUID) ([]string, error)
}

// UserRepository defines user data access methods
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repositories aggregates all repositories
type Repositories struct {
	Order           OrderRepository
	RemovedLineItem RemovedLineItemRepository
	OrderTimeline   OrderTimelineRepository
	Permission      PermissionRepository
	Role            RoleRepository
	User            UserRepository
}
