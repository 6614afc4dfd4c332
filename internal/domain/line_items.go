package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product/variant entry of an order
type LineItem struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Title             string            `json:"title"`
	SKU               string            `json:"sku"`
	ProductID         string            `json:"product_id"`
	VariantID         string            `json:"variant_id"`
	Price             decimal.Decimal   `json:"price"`
	TotalDiscount     decimal.Decimal   `json:"total_discount"`
	Quantity          int               `json:"quantity"`
	VendorID          string            `json:"vendor_id"`
	VendorName        string            `json:"vendor_name"`
	FulfillmentItemID *string           `json:"fulfillment_item_id"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status"`
	DeletedDate       *time.Time        `json:"deleted_date"`
}

// IsActive reports whether the item still counts towards the order
func (li LineItem) IsActive() bool {
	return li.DeletedDate == nil && li.Quantity > 0
}

// LineItems is an insertion-ordered collection of line items indexed by id.
// Ids are unique: inserting an existing id replaces the entry in place.
type LineItems struct {
	order []string
	byID  map[string]*LineItem
}

// NewLineItems builds a collection from items, collapsing repeated ids (last one wins).
func NewLineItems(items ...LineItem) LineItems {
	var l LineItems
	for _, item := range items {
		l.Put(item)
	}
	return l
}

// Len returns the number of items, active or soft-deleted
func (l LineItems) Len() int {
	return len(l.order)
}

// Get returns a copy of the item with the given id
func (l LineItems) Get(id string) (LineItem, bool) {
	item, ok := l.byID[id]
	if !ok {
		return LineItem{}, false
	}
	return *item, true
}

// Put inserts the item at the end, or replaces the existing entry with the same id.
func (l *LineItems) Put(item LineItem) {
	if l.byID == nil {
		l.byID = make(map[string]*LineItem)
	}
	if _, exists := l.byID[item.ID]; !exists {
		l.order = append(l.order, item.ID)
	}
	stored := item
	l.byID[item.ID] = &stored
}

// Update applies fn to the item with the given id. It reports false if the id is unknown.
func (l *LineItems) Update(id string, fn func(item *LineItem)) bool {
	item, ok := l.byID[id]
	if !ok {
		return false
	}
	fn(item)
	return true
}

// Remove drops the item with the given id
func (l *LineItems) Remove(id string) bool {
	if _, ok := l.byID[id]; !ok {
		return false
	}
	delete(l.byID, id)
	for i, existing := range l.order {
		if existing == id {
			l.order = append(l.order[:i:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns copies of every item in insertion order
func (l LineItems) All() []LineItem {
	out := make([]LineItem, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.byID[id])
	}
	return out
}

// Active returns copies of the items that are not soft-deleted
func (l LineItems) Active() []LineItem {
	out := make([]LineItem, 0, len(l.order))
	for _, id := range l.order {
		if item := l.byID[id]; item.IsActive() {
			out = append(out, *item)
		}
	}
	return out
}

// Clone returns a deep copy so callers can mutate it without touching the original.
func (l LineItems) Clone() LineItems {
	return NewLineItems(l.All()...)
}

// MarshalJSON encodes the collection as an array in insertion order.
func (l LineItems) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.All())
}

// UnmarshalJSON decodes an array of line items.
func (l *LineItems) UnmarshalJSON(data []byte) error {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = NewLineItems(items...)
	return nil
}
