package domain

// FulfillmentLine is one fulfillment sub-item and the quantity to ship
type FulfillmentLine struct {
	FulfillmentItemID string `json:"fulfillment_item_id" validate:"required"`
	Quantity          int    `json:"quantity" validate:"required,min=1"`
}

// FulfillmentRequest asks the platform to fulfill items of one fulfillment order
type FulfillmentRequest struct {
	OrderID       string            `json:"order_id" validate:"required"`
	FulfillmentID string            `json:"fulfillment_id" validate:"required"`
	LineItems     []FulfillmentLine `json:"line_items" validate:"dive"`
}

// SingleFulfillmentRequest fulfills exactly one line item; every field is mandatory.
type SingleFulfillmentRequest struct {
	OrderID           string `json:"order_id" validate:"required"`
	FulfillmentID     string `json:"fulfillment_id" validate:"required"`
	FulfillmentItemID string `json:"fulfillment_item_id" validate:"required"`
	Quantity          int    `json:"quantity" validate:"required,min=1"`
}

// MarkFulfilled sets the line-item fulfilled status on every item whose fulfillment
// item id was submitted, then promotes the order status once all active items are fulfilled.
// It returns the ids of the line items it marked.
func (o *Order) MarkFulfilled(lines []FulfillmentLine) []string {
	submitted := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		submitted[line.FulfillmentItemID] = struct{}{}
	}

	var marked []string
	for _, item := range o.LineItems.All() {
		if item.FulfillmentItemID == nil {
			continue
		}
		if _, ok := submitted[*item.FulfillmentItemID]; !ok {
			continue
		}
		o.LineItems.Update(item.ID, func(li *LineItem) { li.FulfillmentStatus = LineItemFulfilled })
		marked = append(marked, item.ID)
	}

	if o.AllActiveFulfilled() {
		o.FulfillmentStatus = OrderFulfilled
	}
	return marked
}

// RemainingFulfillmentLines lists active items that are mapped but not yet fulfilled.
func (o *Order) RemainingFulfillmentLines() []FulfillmentLine {
	var lines []FulfillmentLine
	for _, item := range o.LineItems.Active() {
		if item.FulfillmentItemID == nil || item.FulfillmentStatus.IsFulfilled() {
			continue
		}
		lines = append(lines, FulfillmentLine{FulfillmentItemID: *item.FulfillmentItemID, Quantity: item.Quantity})
	}
	return lines
}
