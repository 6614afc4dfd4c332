package main

import (
	"context"
	"fmt"
	"os"

	"github.com/akhilmk-dev/menahub/internal/config"
	"github.com/akhilmk-dev/menahub/internal/logger"
	"github.com/akhilmk-dev/menahub/internal/repository/postgres"
	"github.com/akhilmk-dev/menahub/pkg/errors"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-order/main.go <order_id>")
		fmt.Println("Example: go run cmd/find-order/main.go 5729334526183")
		os.Exit(1)
	}

	orderID := os.Args[1]

	log := logger.New("development", "warn")
	defer log.Sync()

	db, err := postgres.NewConnection(config.LoadDatabase())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, log)
	ctx := context.Background()

	order, err := repos.Order.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.IsNotFound(err) {
			fmt.Printf("❌ Order %s not found\n", orderID)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Failed to load order: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Order %s (#%s)\n", order.OrderID, order.OrderNumber)
	fmt.Printf("  Financial / Fulfillment: %s / %s\n", order.FinancialStatus, order.FulfillmentStatus)
	fmt.Printf("  Version: %d\n", order.Version)
	if order.FulfillmentID != nil {
		fmt.Printf("  Fulfillment Order: %s\n", *order.FulfillmentID)
	}
	if order.IsDeleted() {
		fmt.Printf("  Deleted At: %s\n", order.DeletedAt.Format("2006-01-02 15:04:05"))
	}

	fmt.Println("\n  Line items:")
	for _, item := range order.LineItems.All() {
		state := "active"
		if !item.IsActive() {
			state = "removed"
		}
		fmt.Printf("    - %s %q x%d [%s, %s] vendor=%s\n",
			item.ID, item.Name, item.Quantity, item.FulfillmentStatus, state, item.VendorID)
	}

	removed, err := repos.RemovedLineItem.ListByOrderID(ctx, orderID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load removed items: %v\n", err)
		os.Exit(1)
	}
	if len(removed) > 0 {
		fmt.Println("\n  Removed quantities:")
		for _, r := range removed {
			fmt.Printf("    - %s %q removed=%d\n", r.LineItemID, r.Name, r.Quantity)
		}
	}

	entries, err := repos.OrderTimeline.ListByOrderID(ctx, orderID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load timeline: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\n  Timeline:")
	for _, e := range entries {
		fmt.Printf("    %s  %-12s by %s  %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.PerformedBy, e.Message)
	}
}
