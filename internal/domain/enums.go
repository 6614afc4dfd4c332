package domain

import "strings"

// FinancialStatus is the platform-reported payment state of an order (e.g. "paid",
// "partially_refunded"). The vocabulary belongs to the platform, so values are carried
// as opaque tokens and only checked for presence at the boundary.
type FinancialStatus string

// ParseFinancialStatus trims the raw value and reports whether anything is left.
func ParseFinancialStatus(raw string) (FinancialStatus, bool) {
	v := strings.TrimSpace(raw)
	return FinancialStatus(v), v != ""
}

func (s FinancialStatus) String() string { return string(s) }

// FulfillmentStatus is the platform-reported shipping state of an order or line item.
type FulfillmentStatus string

const (
	// OrderFulfilled is written on the order once every active line item is fulfilled.
	OrderFulfilled FulfillmentStatus = "Fulfilled"
	// LineItemFulfilled is written on each line item accepted by a fulfillment.
	LineItemFulfilled FulfillmentStatus = "fulfilled"
)

// ParseFulfillmentStatus trims the raw value and reports whether anything is left.
func ParseFulfillmentStatus(raw string) (FulfillmentStatus, bool) {
	v := strings.TrimSpace(raw)
	return FulfillmentStatus(v), v != ""
}

func (s FulfillmentStatus) String() string { return string(s) }

// IsFulfilled compares case-insensitively since the platform and our own writes differ in case.
func (s FulfillmentStatus) IsFulfilled() bool {
	return strings.EqualFold(string(s), string(OrderFulfilled))
}

// TimelineAction is the kind of an order timeline entry
type TimelineAction string

const (
	TimelineCreated    TimelineAction = "created"
	TimelineUpdated    TimelineAction = "updated"
	TimelineCancelled  TimelineAction = "cancelled"
	TimelineDeleted    TimelineAction = "deleted"
	TimelineFulfilled  TimelineAction = "fulfilled"
	TimelineMarkedPaid TimelineAction = "marked-paid"
)

// IsValid checks if the timeline action is one we record
func (a TimelineAction) IsValid() bool {
	switch a {
	case TimelineCreated,
		TimelineUpdated,
		TimelineCancelled,
		TimelineDeleted,
		TimelineFulfilled,
		TimelineMarkedPaid:
		return true
	default:
		return false
	}
}

// DefaultActor is recorded on timeline entries when no user performed the action.
const DefaultActor = "system"

// Built-in role names that can never be deleted.
const (
	RoleAdmin  = "admin"
	RoleVendor = "vendor"
)

// IsProtectedRole reports whether a role name is one of the built-ins.
func IsProtectedRole(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return n == RoleAdmin || n == RoleVendor
}
