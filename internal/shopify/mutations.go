package shopify

// FulfillmentCreateMutation creates a fulfillment for line items of one fulfillment order
const FulfillmentCreateMutation = `
mutation fulfillmentCreate($fulfillment: FulfillmentInput!) {
  fulfillmentCreate(fulfillment: $fulfillment) {
    fulfillment {
      id
      status
    }
    userErrors {
      field
      message
    }
  }
}
`

// FulfillmentInput is the input of fulfillmentCreate
type FulfillmentInput struct {
	NotifyCustomer              bool                             `json:"notifyCustomer"`
	LineItemsByFulfillmentOrder []FulfillmentOrderLineItemsInput `json:"lineItemsByFulfillmentOrder"`
	TrackingInfo                *FulfillmentTrackingInput        `json:"trackingInfo,omitempty"`
}

// FulfillmentOrderLineItemsInput selects line items of one fulfillment order
type FulfillmentOrderLineItemsInput struct {
	FulfillmentOrderID        string                          `json:"fulfillmentOrderId"`
	FulfillmentOrderLineItems []FulfillmentOrderLineItemInput `json:"fulfillmentOrderLineItems"`
}

// FulfillmentOrderLineItemInput is one fulfillment order line item and the quantity to fulfill
type FulfillmentOrderLineItemInput struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// FulfillmentTrackingInput is optional tracking information attached to a fulfillment
type FulfillmentTrackingInput struct {
	Company string `json:"company,omitempty"`
	Number  string `json:"number,omitempty"`
	URL     string `json:"url,omitempty"`
}
