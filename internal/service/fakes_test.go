package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/internal/repository"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

func copyOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.LineItems = o.LineItems.Clone()
	return &cp
}

// fakeOrderRepo keeps orders and removed quantities in memory. interfere runs before
// every versioned save and may mutate the stored row to play a concurrent writer.
type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	removed   map[string]*domain.RemovedLineItem
	saves     int
	interfere func(call int, stored *domain.Order)
}

func newFakeOrderRepo(orders ...*domain.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{
		orders:  map[string]*domain.Order{},
		removed: map[string]*domain.RemovedLineItem{},
	}
	for _, o := range orders {
		r.orders[o.OrderID] = copyOrder(o)
	}
	return r
}

func (r *fakeOrderRepo) stored(id string) *domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyOrder(r.orders[id])
}

func (r *fakeOrderRepo) removedQty(orderID, lineItemID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, ok := r.removed[orderID+"/"+lineItemID]; ok {
		return rm.Quantity
	}
	return 0
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.OrderID]; ok {
		return &errors.ErrConflict{Message: "order already exists"}
	}
	if order.Version == 0 {
		order.Version = 1
	}
	r.orders[order.OrderID] = copyOrder(order)
	return nil
}

func (r *fakeOrderRepo) GetByOrderID(_ context.Context, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: orderID}
	}
	return copyOrder(o), nil
}

func (r *fakeOrderRepo) save(order *domain.Order, removed []domain.RemovedLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	stored, ok := r.orders[order.OrderID]
	if !ok {
		return &errors.ErrConcurrencyConflict{Resource: "order", ID: order.OrderID}
	}
	if r.interfere != nil {
		r.interfere(r.saves, stored)
	}
	if stored.Version != order.Version {
		return &errors.ErrConcurrencyConflict{Resource: "order", ID: order.OrderID}
	}
	for _, rm := range removed {
		key := rm.OrderID + "/" + rm.LineItemID
		if existing, ok := r.removed[key]; ok {
			existing.Quantity += rm.Quantity
			continue
		}
		cp := rm
		r.removed[key] = &cp
	}
	order.Version++
	r.orders[order.OrderID] = copyOrder(order)
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *domain.Order) error {
	return r.save(order, nil)
}

func (r *fakeOrderRepo) SaveReconciliation(_ context.Context, order *domain.Order, removed []domain.RemovedLineItem) error {
	return r.save(order, removed)
}

func (r *fakeOrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Order
	for _, o := range r.orders {
		if !filter.IncludeDeleted && o.IsDeleted() {
			continue
		}
		if filter.FinancialStatus != "" && string(o.FinancialStatus) != filter.FinancialStatus {
			continue
		}
		all = append(all, copyOrder(o))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, filter.Limit, filter.Offset), len(all), nil
}

func (r *fakeOrderRepo) ListByVendor(_ context.Context, vendorID string, limit, offset int) ([]*domain.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Order
	for _, o := range r.orders {
		if o.IsDeleted() {
			continue
		}
		for _, item := range o.LineItems.All() {
			if item.VendorID == vendorID {
				matched = append(matched, copyOrder(o))
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].OrderID < matched[j].OrderID })
	return paginate(matched, limit, offset), len(matched), nil
}

func paginate(orders []*domain.Order, limit, offset int) []*domain.Order {
	if offset >= len(orders) {
		return nil
	}
	end := offset + limit
	if end > len(orders) {
		end = len(orders)
	}
	return orders[offset:end]
}

type fakeRemovedRepo struct {
	orders *fakeOrderRepo
}

func (r *fakeRemovedRepo) Accumulate(_ context.Context, item *domain.RemovedLineItem) error {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	key := item.OrderID + "/" + item.LineItemID
	if existing, ok := r.orders.removed[key]; ok {
		existing.Quantity += item.Quantity
		return nil
	}
	cp := *item
	r.orders.removed[key] = &cp
	return nil
}

func (r *fakeRemovedRepo) Get(_ context.Context, orderID, lineItemID string) (*domain.RemovedLineItem, error) {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	rm, ok := r.orders.removed[orderID+"/"+lineItemID]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "removed line item", ID: lineItemID}
	}
	cp := *rm
	return &cp, nil
}

func (r *fakeRemovedRepo) ListByOrderID(_ context.Context, orderID string) ([]*domain.RemovedLineItem, error) {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	var out []*domain.RemovedLineItem
	for key, rm := range r.orders.removed {
		if strings.HasPrefix(key, orderID+"/") {
			cp := *rm
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineItemID < out[j].LineItemID })
	return out, nil
}

type fakeTimelineRepo struct {
	mu      sync.Mutex
	entries []*domain.OrderTimelineEntry
	err     error
}

func (r *fakeTimelineRepo) Append(_ context.Context, entry *domain.OrderTimelineEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeTimelineRepo) ListByOrderID(_ context.Context, orderID string) ([]*domain.OrderTimelineEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.OrderTimelineEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].OrderID == orderID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *fakeTimelineRepo) actions(orderID string) []domain.TimelineAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TimelineAction
	for _, e := range r.entries {
		if e.OrderID == orderID {
			out = append(out, e.Action)
		}
	}
	return out
}

type fakeGateway struct {
	snapshot    *domain.OrderSnapshot
	snapshotErr error
	mapping     domain.FulfillmentMapping
	mappingErr  error
	vendors     map[string]domain.VendorMetadata
	vendorErr   error
	fulfillErr  error
	fulfilled   [][]domain.FulfillmentLine
}

func (g *fakeGateway) FetchOrderSnapshot(context.Context, string) (*domain.OrderSnapshot, error) {
	if g.snapshotErr != nil {
		return nil, g.snapshotErr
	}
	return g.snapshot, nil
}

func (g *fakeGateway) FetchFulfillmentMapping(context.Context, string) (domain.FulfillmentMapping, error) {
	if g.mappingErr != nil {
		return domain.FulfillmentMapping{}, g.mappingErr
	}
	return g.mapping, nil
}

func (g *fakeGateway) CreateFulfillment(_ context.Context, _ string, lines []domain.FulfillmentLine) error {
	if g.fulfillErr != nil {
		return g.fulfillErr
	}
	g.fulfilled = append(g.fulfilled, lines)
	return nil
}

func (g *fakeGateway) FetchProductVendor(_ context.Context, productID string) (domain.VendorMetadata, error) {
	if g.vendorErr != nil {
		return domain.VendorMetadata{}, g.vendorErr
	}
	meta, ok := g.vendors[productID]
	if !ok {
		return domain.VendorMetadata{}, &errors.ErrNotFound{Resource: "product", ID: productID}
	}
	return meta, nil
}

// RBAC fakes

type fakePermissionRepo struct {
	items    map[uuid.UUID]*domain.Permission
	assigned map[uuid.UUID]bool
}

func (r *fakePermissionRepo) Create(_ context.Context, p *domain.Permission) error {
	for _, existing := range r.items {
		if existing.Name == p.Name {
			return &errors.ErrConflict{Message: "permission already exists"}
		}
	}
	p.ID = uuid.New()
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakePermissionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Permission, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "permission", ID: id.String()}
	}
	cp := *p
	return &cp, nil
}

func (r *fakePermissionRepo) GetByName(_ context.Context, name string) (*domain.Permission, error) {
	for _, p := range r.items {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "permission", ID: name}
}

func (r *fakePermissionRepo) List(context.Context) ([]*domain.Permission, error) {
	var out []*domain.Permission
	for _, p := range r.items {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePermissionRepo) Update(_ context.Context, p *domain.Permission) error {
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakePermissionRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakePermissionRepo) IsAssigned(_ context.Context, id uuid.UUID) (bool, error) {
	return r.assigned[id], nil
}

type fakeRoleRepo struct {
	items       map[uuid.UUID]*domain.Role
	permissions *fakePermissionRepo
	users       *fakeUserRepo
}

func (r *fakeRoleRepo) Create(_ context.Context, role *domain.Role) error {
	role.ID = uuid.New()
	cp := *role
	r.items[role.ID] = &cp
	return nil
}

func (r *fakeRoleRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Role, error) {
	role, ok := r.items[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "role", ID: id.String()}
	}
	cp := *role
	return &cp, nil
}

func (r *fakeRoleRepo) GetByName(_ context.Context, name string) (*domain.Role, error) {
	for _, role := range r.items {
		if role.Name == name {
			cp := *role
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "role", ID: name}
}

func (r *fakeRoleRepo) List(context.Context) ([]*domain.Role, error) {
	var out []*domain.Role
	for _, role := range r.items {
		out = append(out, role)
	}
	return out, nil
}

func (r *fakeRoleRepo) Update(_ context.Context, role *domain.Role) error {
	cp := *role
	r.items[role.ID] = &cp
	return nil
}

func (r *fakeRoleRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *fakeRoleRepo) HasUsers(_ context.Context, id uuid.UUID) (bool, error) {
	for _, u := range r.users.items {
		if u.RoleID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRoleRepo) PermissionNames(_ context.Context, id uuid.UUID) ([]string, error) {
	role, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	var names []string
	for _, pid := range role.PermissionIDs {
		if p, ok := r.permissions.items[pid]; ok {
			names = append(names, p.Name)
		}
	}
	return names, nil
}

type fakeUserRepo struct {
	items map[uuid.UUID]*domain.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range r.items {
		if existing.Email == u.Email {
			return &errors.ErrConflict{Message: "user already exists"}
		}
	}
	u.ID = uuid.New()
	cp := *u
	r.items[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := r.items[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "user", ID: email}
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]*domain.User, int, error) {
	var all []*domain.User
	for _, u := range r.items {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.items[u.ID]; !ok {
		return &errors.ErrNotFound{Resource: "user", ID: u.ID.String()}
	}
	for id, existing := range r.items {
		if id != u.ID && existing.Email == u.Email {
			return &errors.ErrConflict{Message: "email already exists"}
		}
	}
	cp := *u
	r.items[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func newFakeRepositories(orders *fakeOrderRepo, timeline *fakeTimelineRepo) *repository.Repositories {
	perms := &fakePermissionRepo{items: map[uuid.UUID]*domain.Permission{}, assigned: map[uuid.UUID]bool{}}
	users := &fakeUserRepo{items: map[uuid.UUID]*domain.User{}}
	roles := &fakeRoleRepo{items: map[uuid.UUID]*domain.Role{}, permissions: perms, users: users}
	return &repository.Repositories{
		Order:           orders,
		RemovedLineItem: &fakeRemovedRepo{orders: orders},
		OrderTimeline:   timeline,
		Permission:      perms,
		Role:            roles,
		User:            users,
	}
}

// fixtures

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func snapshotItem(id string, qty int) domain.SnapshotLineItem {
	return domain.SnapshotLineItem{
		ID:         id,
		Name:       "Item " + id,
		Title:      "Item " + id,
		SKU:        "SKU-" + id,
		ProductID:  "P" + id,
		VariantID:  "V" + id,
		Price:      decimal.RequireFromString("12.50"),
		Quantity:   qty,
		VendorName: "Acme",
	}
}

func storedOrder(id string, items ...domain.LineItem) *domain.Order {
	return &domain.Order{
		OrderID:         id,
		FulfillmentID:   strPtr("FO-" + id),
		Name:            "#" + id,
		OrderNumber:     id,
		Currency:        "AED",
		FinancialStatus: "pending",
		Version:         1,
		LineItems:       domain.NewLineItems(items...),
	}
}

func storedItem(id string, qty int, fulfillmentItemID string) domain.LineItem {
	item := domain.LineItem{
		ID:         id,
		Name:       "Item " + id,
		Title:      "Item " + id,
		SKU:        "SKU-" + id,
		ProductID:  "P" + id,
		VariantID:  "V" + id,
		Price:      decimal.RequireFromString("12.50"),
		Quantity:   qty,
		VendorID:   "vendor-1",
		VendorName: "Acme",
	}
	if fulfillmentItemID != "" {
		item.FulfillmentItemID = strPtr(fulfillmentItemID)
	}
	return item
}
