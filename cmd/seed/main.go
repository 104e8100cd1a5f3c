// Command seed creates the database schema and loads the demo dataset: the
// canonical account holder with one overdue invoice, and optionally a second
// customer with a fuller invoice history for testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"cobranza/internal/config"
	"cobranza/internal/store"
)

func main() {
	withTestData := flag.Bool("with-test-data", false, "also insert the Mauricio Martínez test dataset")
	flag.Parse()

	if err := run(*withTestData); err != nil {
		log.Fatalf("error: %v", err)
	}
}

func run(withTestData bool) error {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.CreateTables(); err != nil {
		return err
	}
	log.Println("schema ready")

	if err := seedDemo(st); err != nil {
		return err
	}
	if withTestData {
		if err := seedTestData(st); err != nil {
			return err
		}
	}
	return nil
}

func openStore(cfg *config.Config) (*store.SQLStore, error) {
	switch cfg.DBDriver {
	case "sqlite3":
		return store.NewSQLiteStore(cfg.SQLitePath)
	case "postgres":
		return store.NewPostgresStore(cfg.PostgresDSN())
	default:
		return nil, fmt.Errorf("seed requires a persistent DB_DRIVER, got %s", cfg.DBDriver)
	}
}

func seedDemo(st store.Store) error {
	id, err := st.CreateCustomer(store.Customer{
		Name:  "Dennis Kangme",
		Email: "dennis@example.com",
		Phone: "+56912345678",
	})
	if err != nil {
		return err
	}

	err = st.CreateInvoice(store.Invoice{
		CustomerID:    id,
		InvoiceNumber: "INV-2025-001",
		Amount:        55000,
		IssueDate:     "2025-05-01",
		DueDate:       "2025-05-23",
		Status:        store.StatusPending,
	})
	if err != nil {
		return err
	}

	log.Printf("demo customer Dennis Kangme inserted (id %d)", id)
	return nil
}

func seedTestData(st store.Store) error {
	id, err := st.CreateCustomer(store.Customer{
		Name:  "Mauricio Martínez",
		Email: "mauricio.martinez@email.com",
		Phone: "+56912345678",
	})
	if err != nil {
		return err
	}

	today := time.Now()
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format(store.DateFormat)
	}

	invoices := []store.Invoice{
		{InvoiceNumber: "INV-2025-001-MM", Amount: 75000, IssueDate: day(-45), DueDate: day(-15), Status: store.StatusPending},
		{InvoiceNumber: "INV-2025-002-MM", Amount: 45000, IssueDate: day(-30), DueDate: day(-5), Status: store.StatusPending},
		{InvoiceNumber: "INV-2025-003-MM", Amount: 120000, IssueDate: day(-15), DueDate: day(10), Status: store.StatusPending},
		{InvoiceNumber: "INV-2025-004-MM", Amount: 85000, IssueDate: day(-10), DueDate: day(20), Status: store.StatusPending},
		{InvoiceNumber: "INV-2024-015-MM", Amount: 65000, IssueDate: day(-90), DueDate: day(-60), Status: store.StatusPaid, PaymentDate: day(-65)},
		{InvoiceNumber: "INV-2024-016-MM", Amount: 95000, IssueDate: day(-75), DueDate: day(-45), Status: store.StatusPaid, PaymentDate: day(-50)},
	}
	for _, inv := range invoices {
		inv.CustomerID = id
		if err := st.CreateInvoice(inv); err != nil {
			return err
		}
		log.Printf("invoice %s inserted ($%.0f)", inv.InvoiceNumber, inv.Amount)
	}

	log.Printf("test customer Mauricio Martínez inserted (id %d)", id)
	return nil
}
