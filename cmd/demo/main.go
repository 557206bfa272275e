// cmd/demo/main.go

// Command demo walks a running bookstore service through adding, buying
// and pruning books.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"bookstore/internal/catalog"
	"bookstore/internal/clients"
	"bookstore/internal/config"
	"bookstore/internal/obs"
)

func main() {
	cfg := config.Load()
	logger := obs.NewLogger(os.Stderr, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client := clients.NewBookstoreClient(cfg.BookstoreURL, &http.Client{Timeout: 15 * time.Second})
	if err := run(ctx, client, time.Now().Year()); err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *clients.BookstoreClient, currentYear int) error {
	header("ADDING BOOKS TO INVENTORY")
	seed := []catalog.ItemRequest{
		{Kind: catalog.KindPhysical, ID: "978-0321765723", Title: "The C++ Programming Language", Author: "Bjarne Stroustrup", YearPublished: 2013, Price: decimal.RequireFromString("69.99"), Stock: 10},
		{Kind: catalog.KindPhysical, ID: "978-0132350884", Title: "Clean Code", Author: "Robert C. Martin", YearPublished: 2008, Price: decimal.RequireFromString("45.50"), Stock: 5},
		{Kind: catalog.KindDigital, ID: "978-0134494166", Title: "Effective Java", Author: "Joshua Bloch", YearPublished: 2018, Price: decimal.RequireFromString("35.00"), Format: "PDF"},
		{Kind: catalog.KindDigital, ID: "978-1492032649", Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", YearPublished: 2017, Price: decimal.RequireFromString("55.99"), Format: "EPUB"},
		{Kind: catalog.KindDisplay, ID: "DEMO-001", Title: "Quantum Physics for Dummies", Author: "Steven Holzner", YearPublished: 2013, Price: decimal.RequireFromString("22.99")},
	}
	for _, req := range seed {
		item, err := client.AddItem(ctx, req)
		if err != nil {
			return fmt.Errorf("add %s: %w", req.ID, err)
		}
		say("Added '%s' to inventory.", item.Title)
	}
	if err := printInventory(ctx, client); err != nil {
		return err
	}

	header("BUYING BOOKS")
	say("--> Attempting to buy 2 copies of 'Clean Code'...")
	buy(ctx, client, "978-0132350884", 2, ptr("Abuzaid@gmail.com"), ptr("123 Gleem, Alexandria"))
	if err := printInventory(ctx, client); err != nil {
		return err
	}

	say("--> Attempting to buy 1 copy of 'Effective Java'...")
	buy(ctx, client, "978-0134494166", 1, ptr("Marwan@yahoo.dev"), nil)
	if err := printInventory(ctx, client); err != nil {
		return err
	}

	say("--> Attempting to buy 10 copies of 'Clean Code' (only 3 left)...")
	buy(ctx, client, "978-0132350884", 10, ptr("Abuzaid@example.com"), ptr("123 Gleem, Alexandria"))

	say("--> Attempting to buy 'Quantum Physics for Dummies' (a showcase book)...")
	buy(ctx, client, "DEMO-001", 1, ptr("curious.shopper@email.com"), ptr("456 Sheikh Zayed, Giza"))

	say("--> Attempting to buy a book with a non-existent ISBN...")
	buy(ctx, client, "000-0000000000", 1, ptr("ghost@shopper.com"), ptr("789 Nowhere St, Alexandria"))

	header("REMOVING OUTDATED BOOKS")
	say("--> Adding a very old book from 1995 for removal test...")
	if _, err := client.AddItem(ctx, catalog.ItemRequest{
		Kind: catalog.KindPhysical, ID: "978-0201633610", Title: "Design Patterns", Author: "Erich Gamma",
		YearPublished: 1995, Price: decimal.RequireFromString("54.99"), Stock: 3,
	}); err != nil {
		return fmt.Errorf("add old book: %w", err)
	}
	if err := printInventory(ctx, client); err != nil {
		return err
	}

	years := currentYear - 2005
	say("--> Removing all books older than %d years...", years)
	removed, err := client.PruneOutdated(ctx, years)
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	say("Books removed: %d", len(removed))
	for _, item := range removed {
		say("  - Removed: '%s' published in %d", item.Title, item.YearPublished)
	}
	return printInventory(ctx, client)
}

func buy(ctx context.Context, client *clients.BookstoreClient, id string, quantity int, email, address *string) {
	receipt, err := client.Purchase(ctx, id, catalog.PurchaseRequest{Quantity: quantity, Email: email, Address: address})
	if err != nil {
		say("ERROR: %v", err)
		return
	}
	say("Purchase successful! Amount paid: $%s", receipt.AmountPaid.StringFixed(2))
}

func printInventory(ctx context.Context, client *clients.BookstoreClient) error {
	text, err := client.Inventory(ctx)
	if err != nil {
		return fmt.Errorf("inventory: %w", err)
	}
	fmt.Print("\n" + text + "\n")
	return nil
}

func header(title string) {
	fmt.Println()
	say("-----------------------------------------------------")
	say("%s", title)
	say("-----------------------------------------------------")
}

func say(format string, args ...any) {
	fmt.Printf("Quantum book store: "+format+"\n", args...)
}

func ptr(s string) *string { return &s }
