package shopify

// OrderSnapshotQuery fetches an order with its line items by Shopify GID
const OrderSnapshotQuery = `
query getOrderSnapshot($id: ID!) {
  order(id: $id) {
    id
    legacyResourceId
    name
    email
    phone
    createdAt
    currencyCode
    paymentGatewayNames
    displayFinancialStatus
    displayFulfillmentStatus
    totalPriceSet { shopMoney { amount } }
    subtotalPriceSet { shopMoney { amount } }
    totalTaxSet { shopMoney { amount } }
    totalDiscountsSet { shopMoney { amount } }
    customer {
      id
      createdAt
      firstName
      lastName
      email
      phone
    }
    shippingAddress {
      firstName
      lastName
      address1
      address2
      company
      phone
      city
      province
      zip
      country
      countryCodeV2
      latitude
      longitude
    }
    lineItems(first: 250) {
      edges {
        node {
          id
          name
          title
          sku
          quantity
          vendor
          product { id }
          variant { id }
          originalUnitPriceSet { shopMoney { amount } }
          totalDiscountSet { shopMoney { amount } }
          unfulfilledQuantity
        }
      }
    }
  }
}
`

// FulfillmentOrdersQuery fetches the fulfillment orders of an order with their line item mapping
const FulfillmentOrdersQuery = `
query getFulfillmentOrders($id: ID!) {
  order(id: $id) {
    fulfillmentOrders(first: 10) {
      edges {
        node {
          id
          status
          lineItems(first: 250) {
            edges {
              node {
                id
                lineItem { id }
              }
            }
          }
        }
      }
    }
  }
}
`

// ProductVendorQuery fetches a product's vendor name and the custom.vendor_id metafield
const ProductVendorQuery = `
query getProductVendor($id: ID!) {
  product(id: $id) {
    id
    vendor
    metafield(namespace: "custom", key: "vendor_id") {
      value
    }
  }
}
`
