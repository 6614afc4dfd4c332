package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/cache"
	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/internal/shopify"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

// RemoteOrderGateway is what the order engine needs from the commerce platform
type RemoteOrderGateway interface {
	FetchOrderSnapshot(ctx context.Context, orderID string) (*domain.OrderSnapshot, error)
	FetchFulfillmentMapping(ctx context.Context, orderID string) (domain.FulfillmentMapping, error)
	CreateFulfillment(ctx context.Context, fulfillmentID string, lines []domain.FulfillmentLine) error
	FetchProductVendor(ctx context.Context, productID string) (domain.VendorMetadata, error)
}

// graphQLExecutor is the subset of *shopify.Client the gateway calls
type graphQLExecutor interface {
	Execute(ctx context.Context, query string, variables map[string]interface{}) (*shopify.GraphQLResponse, error)
}

type shopifyService struct {
	client graphQLExecutor
	vendor cache.VendorCache
	logger *zap.Logger
}

// NewShopifyService creates the Shopify-backed gateway. Vendor lookups go through
// vendorCache first; pass cache.NewNopVendorCache() to always hit the platform.
func NewShopifyService(client graphQLExecutor, vendorCache cache.VendorCache, logger *zap.Logger) *shopifyService {
	if vendorCache == nil {
		vendorCache = cache.NewNopVendorCache()
	}
	return &shopifyService{
		client: client,
		vendor: vendorCache,
		logger: logger,
	}
}

type money struct {
	ShopMoney struct {
		Amount string `json:"amount"`
	} `json:"shopMoney"`
}

func (m money) decimal() decimal.Decimal {
	d, err := decimal.NewFromString(m.ShopMoney.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FetchOrderSnapshot reads the current state of an order from Shopify
func (s *shopifyService) FetchOrderSnapshot(ctx context.Context, orderID string) (*domain.OrderSnapshot, error) {
	resp, err := s.client.Execute(ctx, shopify.OrderSnapshotQuery, map[string]interface{}{
		"id": shopify.OrderGID(orderID),
	})
	if err != nil {
		return nil, fmt.Errorf("get order snapshot: %w", err)
	}

	var result struct {
		Order *struct {
			ID                       string    `json:"id"`
			LegacyResourceID         string    `json:"legacyResourceId"`
			Name                     string    `json:"name"`
			Email                    string    `json:"email"`
			Phone                    string    `json:"phone"`
			CreatedAt                time.Time `json:"createdAt"`
			CurrencyCode             string    `json:"currencyCode"`
			PaymentGatewayNames      []string  `json:"paymentGatewayNames"`
			DisplayFinancialStatus   string    `json:"displayFinancialStatus"`
			DisplayFulfillmentStatus string    `json:"displayFulfillmentStatus"`
			TotalPriceSet            money     `json:"totalPriceSet"`
			SubtotalPriceSet         money     `json:"subtotalPriceSet"`
			TotalTaxSet              money     `json:"totalTaxSet"`
			TotalDiscountsSet        money     `json:"totalDiscountsSet"`
			Customer                 *struct {
				ID        string     `json:"id"`
				CreatedAt *time.Time `json:"createdAt"`
				FirstName string     `json:"firstName"`
				LastName  string     `json:"lastName"`
				Email     string     `json:"email"`
				Phone     string     `json:"phone"`
			} `json:"customer"`
			ShippingAddress *struct {
				FirstName     string   `json:"firstName"`
				LastName      string   `json:"lastName"`
				Address1      string   `json:"address1"`
				Address2      *string  `json:"address2"`
				Company       *string  `json:"company"`
				Phone         string   `json:"phone"`
				City          string   `json:"city"`
				Province      string   `json:"province"`
				Zip           string   `json:"zip"`
				Country       string   `json:"country"`
				CountryCodeV2 string   `json:"countryCodeV2"`
				Latitude      *float64 `json:"latitude"`
				Longitude     *float64 `json:"longitude"`
			} `json:"shippingAddress"`
			LineItems struct {
				Edges []struct {
					Node struct {
						ID       string `json:"id"`
						Name     string `json:"name"`
						Title    string `json:"title"`
						SKU      string `json:"sku"`
						Quantity int    `json:"quantity"`
						Vendor   string `json:"vendor"`
						Product  *struct {
							ID string `json:"id"`
						} `json:"product"`
						Variant *struct {
							ID string `json:"id"`
						} `json:"variant"`
						OriginalUnitPriceSet money `json:"originalUnitPriceSet"`
						TotalDiscountSet     money `json:"totalDiscountSet"`
						UnfulfilledQuantity  int   `json:"unfulfilledQuantity"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"lineItems"`
		} `json:"order"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("parse order snapshot response: %w", err)
	}
	if result.Order == nil {
		return nil, fmt.Errorf("order %s not found on shopify", orderID)
	}

	o := result.Order
	snapshot := &domain.OrderSnapshot{
		ID:                shopify.LegacyID(o.ID),
		Name:              o.Name,
		OrderNumber:       strings.TrimPrefix(o.Name, "#"),
		Email:             o.Email,
		Phone:             o.Phone,
		Currency:          o.CurrencyCode,
		FinancialStatus:   domain.FinancialStatus(strings.ToLower(o.DisplayFinancialStatus)),
		FulfillmentStatus: domain.FulfillmentStatus(strings.ToLower(o.DisplayFulfillmentStatus)),
		TotalPrice:        o.TotalPriceSet.decimal(),
		SubtotalPrice:     o.SubtotalPriceSet.decimal(),
		TotalTax:          o.TotalTaxSet.decimal(),
		TotalDiscounts:    o.TotalDiscountsSet.decimal(),
		CreatedAt:         o.CreatedAt,
	}
	if o.LegacyResourceID != "" {
		snapshot.ID = o.LegacyResourceID
	}
	if len(o.PaymentGatewayNames) > 0 {
		snapshot.PaymentGateway = o.PaymentGatewayNames[0]
	}
	if c := o.Customer; c != nil {
		snapshot.Customer = domain.Customer{
			ID:        shopify.LegacyID(c.ID),
			CreatedAt: c.CreatedAt,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Phone:     c.Phone,
			Currency:  o.CurrencyCode,
		}
	}
	if a := o.ShippingAddress; a != nil {
		snapshot.ShippingAddress = domain.Address{
			FirstName:   a.FirstName,
			LastName:    a.LastName,
			Address1:    a.Address1,
			Address2:    a.Address2,
			Company:     a.Company,
			Phone:       a.Phone,
			City:        a.City,
			Province:    a.Province,
			Zip:         a.Zip,
			Country:     a.Country,
			CountryCode: a.CountryCodeV2,
			Latitude:    a.Latitude,
			Longitude:   a.Longitude,
		}
	}

	for _, edge := range o.LineItems.Edges {
		n := edge.Node
		item := domain.SnapshotLineItem{
			ID:            shopify.LegacyID(n.ID),
			Name:          n.Name,
			Title:         n.Title,
			SKU:           n.SKU,
			Price:         n.OriginalUnitPriceSet.decimal(),
			TotalDiscount: n.TotalDiscountSet.decimal(),
			Quantity:      n.Quantity,
			VendorName:    n.Vendor,
		}
		if n.Product != nil {
			item.ProductID = shopify.LegacyID(n.Product.ID)
		}
		if n.Variant != nil {
			item.VariantID = shopify.LegacyID(n.Variant.ID)
		}
		if n.Quantity > 0 && n.UnfulfilledQuantity == 0 {
			item.FulfillmentStatus = domain.LineItemFulfilled
		}
		snapshot.LineItems = append(snapshot.LineItems, item)
	}

	return snapshot, nil
}

// FetchFulfillmentMapping picks the first open fulfillment order of an order and maps its
// line items to fulfillment order line items.
func (s *shopifyService) FetchFulfillmentMapping(ctx context.Context, orderID string) (domain.FulfillmentMapping, error) {
	resp, err := s.client.Execute(ctx, shopify.FulfillmentOrdersQuery, map[string]interface{}{
		"id": shopify.OrderGID(orderID),
	})
	if err != nil {
		return domain.FulfillmentMapping{}, fmt.Errorf("get fulfillment orders: %w", err)
	}

	var result struct {
		Order *struct {
			FulfillmentOrders struct {
				Edges []struct {
					Node struct {
						ID        string `json:"id"`
						Status    string `json:"status"`
						LineItems struct {
							Edges []struct {
								Node struct {
									ID       string `json:"id"`
									LineItem struct {
										ID string `json:"id"`
									} `json:"lineItem"`
								} `json:"node"`
							} `json:"edges"`
						} `json:"lineItems"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"fulfillmentOrders"`
		} `json:"order"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return domain.FulfillmentMapping{}, fmt.Errorf("parse fulfillment orders response: %w", err)
	}
	if result.Order == nil {
		return domain.FulfillmentMapping{}, fmt.Errorf("order %s not found on shopify", orderID)
	}

	edges := result.Order.FulfillmentOrders.Edges
	if len(edges) == 0 {
		return domain.FulfillmentMapping{Items: map[string]string{}}, nil
	}
	chosen := 0
	for i, edge := range edges {
		if edge.Node.Status == "OPEN" || edge.Node.Status == "IN_PROGRESS" {
			chosen = i
			break
		}
	}

	fo := edges[chosen].Node
	mapping := domain.FulfillmentMapping{
		FulfillmentOrderID: shopify.LegacyID(fo.ID),
		Items:              make(map[string]string, len(fo.LineItems.Edges)),
	}
	for _, li := range fo.LineItems.Edges {
		mapping.Items[shopify.LegacyID(li.Node.LineItem.ID)] = shopify.LegacyID(li.Node.ID)
	}
	return mapping, nil
}

// CreateFulfillment submits a fulfillment for lines of one fulfillment order.
// Shopify userErrors come back as *errors.ErrFulfillmentRejected.
func (s *shopifyService) CreateFulfillment(ctx context.Context, fulfillmentID string, lines []domain.FulfillmentLine) error {
	items := make([]shopify.FulfillmentOrderLineItemInput, 0, len(lines))
	for _, line := range lines {
		items = append(items, shopify.FulfillmentOrderLineItemInput{
			ID:       shopify.FulfillmentOrderLineItemGID(line.FulfillmentItemID),
			Quantity: line.Quantity,
		})
	}
	input := shopify.FulfillmentInput{
		NotifyCustomer: true,
		LineItemsByFulfillmentOrder: []shopify.FulfillmentOrderLineItemsInput{
			{
				FulfillmentOrderID:        shopify.FulfillmentOrderGID(fulfillmentID),
				FulfillmentOrderLineItems: items,
			},
		},
	}

	resp, err := s.client.Execute(ctx, shopify.FulfillmentCreateMutation, map[string]interface{}{
		"fulfillment": input,
	})
	if err != nil {
		return fmt.Errorf("fulfillmentCreate: %w", err)
	}

	var result struct {
		FulfillmentCreate struct {
			Fulfillment *struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"fulfillment"`
			UserErrors []shopify.UserError `json:"userErrors"`
		} `json:"fulfillmentCreate"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("parse fulfillmentCreate response: %w", err)
	}
	if len(result.FulfillmentCreate.UserErrors) > 0 {
		reasons := make([]string, 0, len(result.FulfillmentCreate.UserErrors))
		for _, ue := range result.FulfillmentCreate.UserErrors {
			reasons = append(reasons, ue.Message)
		}
		return &errors.ErrFulfillmentRejected{Reasons: reasons}
	}

	if f := result.FulfillmentCreate.Fulfillment; f != nil {
		s.logger.Info("Created Shopify fulfillment",
			zap.String("fulfillment_order_id", fulfillmentID),
			zap.String("fulfillment_id", f.ID),
			zap.String("status", f.Status),
		)
	}
	return nil
}

// FetchProductVendor returns the vendor of a product, consulting the cache first.
// Cache failures only degrade to a platform lookup.
func (s *shopifyService) FetchProductVendor(ctx context.Context, productID string) (domain.VendorMetadata, error) {
	if meta, ok, err := s.vendor.Get(ctx, productID); err != nil {
		s.logger.Warn("Vendor cache read failed", zap.String("product_id", productID), zap.Error(err))
	} else if ok {
		return meta, nil
	}

	resp, err := s.client.Execute(ctx, shopify.ProductVendorQuery, map[string]interface{}{
		"id": shopify.ProductGID(productID),
	})
	if err != nil {
		return domain.VendorMetadata{}, fmt.Errorf("get product vendor: %w", err)
	}

	var result struct {
		Product *struct {
			ID        string `json:"id"`
			Vendor    string `json:"vendor"`
			Metafield *struct {
				Value string `json:"value"`
			} `json:"metafield"`
		} `json:"product"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return domain.VendorMetadata{}, fmt.Errorf("parse product vendor response: %w", err)
	}
	if result.Product == nil {
		return domain.VendorMetadata{}, fmt.Errorf("product %s not found on shopify", productID)
	}

	meta := domain.VendorMetadata{VendorName: result.Product.Vendor}
	if result.Product.Metafield != nil {
		meta.VendorID = result.Product.Metafield.Value
	}
	if err := s.vendor.Set(ctx, productID, meta); err != nil {
		s.logger.Warn("Vendor cache write failed", zap.String("product_id", productID), zap.Error(err))
	}
	return meta, nil
}

// lookupVendors resolves vendor metadata for every product id, skipping failures.
func lookupVendors(ctx context.Context, gateway RemoteOrderGateway, productIDs []string, logger *zap.Logger) map[string]domain.VendorMetadata {
	vendors := make(map[string]domain.VendorMetadata, len(productIDs))
	for _, productID := range productIDs {
		if productID == "" {
			continue
		}
		if _, done := vendors[productID]; done {
			continue
		}
		meta, err := gateway.FetchProductVendor(ctx, productID)
		if err != nil {
			logger.Warn("Failed to fetch product vendor", zap.String("product_id", productID), zap.Error(err))
			continue
		}
		vendors[productID] = meta
	}
	return vendors
}
