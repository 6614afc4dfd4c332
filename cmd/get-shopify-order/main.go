package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/akhilmk-dev/menahub/internal/cache"
	"github.com/akhilmk-dev/menahub/internal/config"
	"github.com/akhilmk-dev/menahub/internal/domain"
	"github.com/akhilmk-dev/menahub/internal/logger"
	"github.com/akhilmk-dev/menahub/internal/service"
	"github.com/akhilmk-dev/menahub/internal/shopify"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/get-shopify-order/main.go <order_id>")
		fmt.Println("Example: go run cmd/get-shopify-order/main.go 5729334526183")
		fmt.Println("Example: go run cmd/get-shopify-order/main.go gid://shopify/Order/5729334526183")
		os.Exit(1)
	}

	orderID := shopify.LegacyID(os.Args[1])

	shopCfg, err := config.LoadShopify()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL"))
	defer log.Sync()

	gateway := service.NewShopifyService(shopify.NewClient(shopCfg, log), cache.NewNopVendorCache(), log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("🔍 Fetching order from Shopify: %s\n\n", orderID)

	snapshot, err := gateway.FetchOrderSnapshot(ctx, orderID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to fetch order: %v\n", err)
		os.Exit(1)
	}
	mapping, err := gateway.FetchFulfillmentMapping(ctx, orderID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to fetch fulfillment orders: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Order %s (%s) %s %s, %s\n", snapshot.ID, snapshot.Name, snapshot.TotalPrice.StringFixed(2), snapshot.Currency, snapshot.FinancialStatus)
	fmt.Printf("Fulfillment order: %s\n\n", mapping.FulfillmentOrderID)

	out, _ := json.MarshalIndent(struct {
		LineItems   []domain.SnapshotLineItem `json:"line_items"`
		Fulfillment map[string]string         `json:"fulfillment_items"`
	}{LineItems: snapshot.LineItems, Fulfillment: mapping.Items}, "", "  ")
	fmt.Println(string(out))
}
