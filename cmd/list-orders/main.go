package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/akhilmk-dev/menahub/internal/config"
	"github.com/akhilmk-dev/menahub/internal/logger"
	"github.com/akhilmk-dev/menahub/internal/repository"
	"github.com/akhilmk-dev/menahub/internal/repository/postgres"
)

func main() {
	limit := flag.Int("limit", 100, "maximum number of orders to print")
	status := flag.String("financial-status", "", "only orders with this financial status")
	deleted := flag.Bool("include-deleted", false, "include soft-deleted orders")
	flag.Parse()

	dbCfg := config.LoadDatabase()
	log := logger.New("development", "warn")
	defer log.Sync()

	db, err := postgres.NewConnection(dbCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, log)

	orders, total, err := repos.Order.List(context.Background(), repository.OrderFilter{
		FinancialStatus: *status,
		IncludeDeleted:  *deleted,
		Limit:           *limit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query orders: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("📋 %d orders (showing %d):\n\n", total, len(orders))
	for i, o := range orders {
		fmt.Printf("Order #%d:\n", i+1)
		fmt.Printf("  Order ID: %s\n", o.OrderID)
		fmt.Printf("  Number: %s\n", o.OrderNumber)
		fmt.Printf("  Financial Status: %s\n", o.FinancialStatus)
		fmt.Printf("  Fulfillment Status: %s\n", o.FulfillmentStatus)
		fmt.Printf("  Total: %s %s\n", o.TotalPrice.StringFixed(2), o.Currency)
		fmt.Printf("  Line Items: %d active / %d total\n", len(o.LineItems.Active()), o.LineItems.Len())
		fmt.Printf("  Version: %d\n", o.Version)
		if o.IsDeleted() {
			fmt.Printf("  Deleted At: %s\n", o.DeletedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("  Created: %s\n\n", o.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	if len(orders) == 0 {
		fmt.Println("❌ No orders found in database")
	}
}
