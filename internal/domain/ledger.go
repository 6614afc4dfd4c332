package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotLineItem is a line item as the platform currently reports it
type SnapshotLineItem struct {
	ID                string
	Name              string
	Title             string
	SKU               string
	ProductID         string
	VariantID         string
	Price             decimal.Decimal
	TotalDiscount     decimal.Decimal
	Quantity          int
	VendorName        string
	FulfillmentStatus FulfillmentStatus
}

// OrderSnapshot is the authoritative remote view of an order
type OrderSnapshot struct {
	ID                string
	Name              string
	OrderNumber       string
	Email             string
	Phone             string
	PaymentGateway    string
	Currency          string
	FinancialStatus   FinancialStatus
	FulfillmentStatus FulfillmentStatus
	TotalPrice        decimal.Decimal
	SubtotalPrice     decimal.Decimal
	TotalTax          decimal.Decimal
	TotalDiscounts    decimal.Decimal
	ShippingAddress   Address
	Customer          Customer
	LineItems         []SnapshotLineItem
	CreatedAt         time.Time
}

// LineItem looks up a snapshot line item by id
func (s *OrderSnapshot) LineItem(id string) (SnapshotLineItem, bool) {
	if s == nil {
		return SnapshotLineItem{}, false
	}
	for _, item := range s.LineItems {
		if item.ID == id {
			return item, true
		}
	}
	return SnapshotLineItem{}, false
}

// FulfillmentMapping links remote line items to the fulfillment sub-resource that ships them.
type FulfillmentMapping struct {
	FulfillmentOrderID string
	Items              map[string]string // line item id -> fulfillment order line item id
}

// ItemFor returns the fulfillment item id for a line item, or nil when unmapped.
func (m FulfillmentMapping) ItemFor(lineItemID string) *string {
	v, ok := m.Items[lineItemID]
	if !ok || v == "" {
		return nil
	}
	return &v
}

// VendorMetadata identifies the vendor selling a product
type VendorMetadata struct {
	VendorID   string `json:"vendor_id"`
	VendorName string `json:"vendor_name"`
}

// LineItemDelta is one addition or removal instruction
type LineItemDelta struct {
	ID    string `json:"id" binding:"required"`
	Delta *int   `json:"delta,omitempty" binding:"omitempty,min=1"`
}

// amount returns the requested delta, defaulting to 1 when omitted.
func (d LineItemDelta) amount() int {
	if d.Delta == nil {
		return 1
	}
	return *d.Delta
}

// EditLineItems groups the additions and removals of one edit
type EditLineItems struct {
	Additions []LineItemDelta `json:"additions" binding:"dive"`
	Removals  []LineItemDelta `json:"removals" binding:"dive"`
}

// EditPayload is an order edit request
type EditPayload struct {
	OrderID   string        `json:"order_id" binding:"required"`
	LineItems EditLineItems `json:"line_items"`
}

// EditPolicy holds the product decisions the merge cannot infer.
type EditPolicy struct {
	// ResurrectDeleted clears deleted_date when an addition hits a soft-deleted item.
	ResurrectDeleted bool
}

// EditResult is the outcome of merging an edit into an order's line items
type EditResult struct {
	LineItems LineItems
	// Removed holds the quantity removed by this edit per line item, to be added to the
	// stored RemovedLineItem records.
	Removed []RemovedLineItem
	Added   []string
	Skipped []string
}

// ApplyEdit merges additions and removals into a copy of current. It does no I/O:
// snapshot decides which additions exist remotely and supplies their fields, mapping
// supplies fulfillment item ids, and vendors (keyed by product id) is best-effort.
func ApplyEdit(
	current LineItems,
	orderID string,
	snapshot *OrderSnapshot,
	mapping FulfillmentMapping,
	vendors map[string]VendorMetadata,
	edit EditLineItems,
	policy EditPolicy,
	now time.Time,
) EditResult {
	items := current.Clone()
	result := EditResult{}

	for _, add := range edit.Additions {
		delta := add.amount()
		remote, ok := snapshot.LineItem(add.ID)
		if !ok || delta <= 0 {
			result.Skipped = append(result.Skipped, add.ID)
			continue
		}

		existing, found := items.Get(add.ID)
		if !found {
			item := lineItemFromSnapshot(remote, vendors)
			item.Quantity = delta
			item.FulfillmentItemID = mapping.ItemFor(remote.ID)
			item.FulfillmentStatus = remote.FulfillmentStatus
			items.Put(item)
			result.Added = append(result.Added, add.ID)
			continue
		}

		item := lineItemFromSnapshot(remote, vendors)
		if item.VendorID == "" {
			item.VendorID = existing.VendorID
		}
		if item.VendorName == "" {
			item.VendorName = existing.VendorName
		}
		item.Quantity = existing.Quantity + delta
		item.FulfillmentItemID = mapping.ItemFor(remote.ID)
		item.FulfillmentStatus = existing.FulfillmentStatus
		item.DeletedDate = existing.DeletedDate
		if policy.ResurrectDeleted {
			item.DeletedDate = nil
		}
		items.Put(item)
		result.Added = append(result.Added, add.ID)
	}

	removedByID := make(map[string]int)
	var removedOrder []string
	for _, rm := range edit.Removals {
		delta := rm.amount()
		existing, found := items.Get(rm.ID)
		if !found || delta <= 0 {
			continue
		}

		newQty := existing.Quantity - delta
		removed := delta
		if newQty <= 0 {
			removed = existing.Quantity
			items.Remove(rm.ID)
		} else {
			items.Update(rm.ID, func(item *LineItem) { item.Quantity = newQty })
		}

		if _, seen := removedByID[rm.ID]; !seen {
			removedOrder = append(removedOrder, rm.ID)
			result.Removed = append(result.Removed, removedRecord(orderID, existing, now))
		}
		removedByID[rm.ID] += removed
	}
	for i, id := range removedOrder {
		result.Removed[i].Quantity = removedByID[id]
	}

	result.LineItems = items
	return result
}

// NewOrderFromSnapshot builds the local order for a first-seen platform order.
func NewOrderFromSnapshot(snapshot *OrderSnapshot, mapping FulfillmentMapping, vendors map[string]VendorMetadata, now time.Time) *Order {
	order := &Order{
		OrderID:           snapshot.ID,
		Name:              snapshot.Name,
		OrderNumber:       snapshot.OrderNumber,
		Email:             snapshot.Email,
		Phone:             snapshot.Phone,
		Currency:          snapshot.Currency,
		FinancialStatus:   snapshot.FinancialStatus,
		FulfillmentStatus: snapshot.FulfillmentStatus,
		TotalPrice:        snapshot.TotalPrice,
		SubtotalPrice:     snapshot.SubtotalPrice,
		TotalTax:          snapshot.TotalTax,
		TotalDiscounts:    snapshot.TotalDiscounts,
		ShippingAddress:   snapshot.ShippingAddress,
		Customer:          snapshot.Customer,
		CreatedAt:         snapshot.CreatedAt,
		UpdatedAt:         now,
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if snapshot.PaymentGateway != "" {
		gw := snapshot.PaymentGateway
		order.PaymentGateway = &gw
	}
	if mapping.FulfillmentOrderID != "" {
		fid := mapping.FulfillmentOrderID
		order.FulfillmentID = &fid
	}
	for _, remote := range snapshot.LineItems {
		if remote.Quantity <= 0 {
			continue
		}
		item := lineItemFromSnapshot(remote, vendors)
		item.Quantity = remote.Quantity
		item.FulfillmentItemID = mapping.ItemFor(remote.ID)
		item.FulfillmentStatus = remote.FulfillmentStatus
		order.LineItems.Put(item)
	}
	return order
}

func lineItemFromSnapshot(remote SnapshotLineItem, vendors map[string]VendorMetadata) LineItem {
	item := LineItem{
		ID:            remote.ID,
		Name:          remote.Name,
		Title:         remote.Title,
		SKU:           remote.SKU,
		ProductID:     remote.ProductID,
		VariantID:     remote.VariantID,
		Price:         remote.Price,
		TotalDiscount: remote.TotalDiscount,
		VendorName:    remote.VendorName,
	}
	if v, ok := vendors[remote.ProductID]; ok {
		item.VendorID = v.VendorID
		if v.VendorName != "" {
			item.VendorName = v.VendorName
		}
	}
	return item
}

func removedRecord(orderID string, item LineItem, now time.Time) RemovedLineItem {
	return RemovedLineItem{
		OrderID:    orderID,
		LineItemID: item.ID,
		Name:       item.Name,
		Price:      item.Price,
		SKU:        item.SKU,
		ProductID:  item.ProductID,
		VariantID:  item.VariantID,
		Title:      item.Title,
		VendorID:   item.VendorID,
		VendorName: item.VendorName,
		RemovedAt:  now,
		UpdatedAt:  now,
	}
}
