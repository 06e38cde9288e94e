// cmd/tools/seed-data/main.go
//
// Seeds the vendor, invoice and FAQ reference data the chatbot serves.
// Usage: seed-data [-vendors] [-invoices] [-faqs] (no flags seeds everything)
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"vendor-portal-chatbot/internal/common/config"
	"vendor-portal-chatbot/internal/common/database"
	"vendor-portal-chatbot/internal/common/logger"
	"vendor-portal-chatbot/internal/models"
	"vendor-portal-chatbot/internal/store/faqstore"
)

const vendorsDDL = `
CREATE TABLE IF NOT EXISTS vendors (
	vendor_id           TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	registration_status TEXT NOT NULL DEFAULT 'pending',
	performance_rating  TEXT NOT NULL DEFAULT 'Not rated',
	profile_help        TEXT NOT NULL DEFAULT 'Contact support for assistance'
)`

const invoicesDDL = `
CREATE TABLE IF NOT EXISTS invoices (
	invoice_id TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	status     TEXT NOT NULL,
	amount     NUMERIC NOT NULL,
	due_date   TEXT
)`

const upsertVendor = `
INSERT INTO vendors (vendor_id, name, registration_status, performance_rating, profile_help)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (vendor_id) DO UPDATE SET
	name = EXCLUDED.name,
	registration_status = EXCLUDED.registration_status,
	performance_rating = EXCLUDED.performance_rating,
	profile_help = EXCLUDED.profile_help`

const upsertInvoice = `
INSERT INTO invoices (invoice_id, name, status, amount, due_date)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (invoice_id) DO UPDATE SET
	name = EXCLUDED.name,
	status = EXCLUDED.status,
	amount = EXCLUDED.amount,
	due_date = EXCLUDED.due_date`

var vendors = []models.VendorRecord{
	{VendorID: "V001", Name: "Testing A", RegistrationStatus: "active", PerformanceRating: "5 star *****", ProfileHelp: "Support available for vendors A"},
	{VendorID: "V002", Name: "Testing B", RegistrationStatus: "suspended", PerformanceRating: "4 star ****", ProfileHelp: "Support available for vendors B"},
	{VendorID: "V003", Name: "Testing C", RegistrationStatus: "active", PerformanceRating: "5 star *****", ProfileHelp: "Support available for vendors C"},
	{VendorID: "V004", Name: "Testing D", RegistrationStatus: "suspended", PerformanceRating: "5 star *****", ProfileHelp: "Support available for vendors D"},
	{VendorID: "V005", Name: "Testing E", RegistrationStatus: "active", PerformanceRating: "5 star *****", ProfileHelp: "Support available for vendors E"},
	{VendorID: "V006", Name: "Testing F", RegistrationStatus: "active", PerformanceRating: "5 star *****", ProfileHelp: "Support available for vendors F"},
}

var invoices = []models.InvoiceRecord{
	{InvoiceID: "VEN34562", Name: "Testing A", Status: "active", Amount: 70000, DueDate: "2025-04-30"},
	{InvoiceID: "VEN34563", Name: "Testing B", Status: "deactive", Amount: 1900},
	{InvoiceID: "VEN34564", Name: "Testing C", Status: "active", Amount: 10000, DueDate: "2025-06-15"},
	{InvoiceID: "VEN34565", Name: "Testing D", Status: "deactive", Amount: 20000},
	{InvoiceID: "VEN34566", Name: "Testing E", Status: "active", Amount: 30000},
	{InvoiceID: "VEN34567", Name: "Testing F", Status: "active", Amount: 60000, DueDate: "2025-09-01"},
}

var faqs = []models.FAQRecord{
	{
		Question: "How to changes profile details?",
		Answer:   "Log in, go to Profile Settings, update details, save changes, and contact support if needed.",
	},
	{
		Question: "What are the payment terms?",
		Answer:   "Our standard payment terms are Net 30 days from the date of invoice. Please contact us for any special arrangements.",
	},
}

func main() {
	seedVendors := flag.Bool("vendors", false, "seed vendor records")
	seedInvoices := flag.Bool("invoices", false, "seed invoice records")
	seedFAQs := flag.Bool("faqs", false, "seed the FAQ question bank")
	flag.Parse()

	// No flags means seed everything.
	all := !*seedVendors && !*seedInvoices && !*seedFAQs

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured("info", "console")
	ctx := context.Background()

	if all || *seedVendors || *seedInvoices {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			fmt.Printf("Error connecting to PostgreSQL: %v\n", err)
			os.Exit(1)
		}
		defer pg.Close()

		if all || *seedVendors {
			if err := insertVendors(ctx, pg.GetDB()); err != nil {
				fmt.Printf("Error seeding vendors: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Seeded %d vendors\n", len(vendors))
		}
		if all || *seedInvoices {
			if err := insertInvoices(ctx, pg.GetDB()); err != nil {
				fmt.Printf("Error seeding invoices: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Seeded %d invoices\n", len(invoices))
		}
	}

	if all || *seedFAQs {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			fmt.Printf("Error connecting to Elasticsearch: %v\n", err)
			os.Exit(1)
		}
		store := faqstore.New(es.Client, cfg.Database.Elasticsearch.FAQIndex, log)
		for _, faq := range faqs {
			if err := store.Index(ctx, faq); err != nil {
				fmt.Printf("Error seeding FAQ %q: %v\n", faq.Question, err)
				os.Exit(1)
			}
		}
		fmt.Printf("Seeded %d FAQ entries\n", len(faqs))
	}
}

func insertVendors(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, vendorsDDL); err != nil {
		return fmt.Errorf("create vendors table: %w", err)
	}
	for _, v := range vendors {
		_, err := db.ExecContext(ctx, upsertVendor,
			v.VendorID, v.Name, v.RegistrationStatus, v.PerformanceRating, v.ProfileHelp)
		if err != nil {
			return fmt.Errorf("upsert vendor %s: %w", v.VendorID, err)
		}
	}
	return nil
}

func insertInvoices(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, invoicesDDL); err != nil {
		return fmt.Errorf("create invoices table: %w", err)
	}
	for _, inv := range invoices {
		var dueDate sql.NullString
		if inv.DueDate != "" {
			dueDate = sql.NullString{String: inv.DueDate, Valid: true}
		}
		_, err := db.ExecContext(ctx, upsertInvoice,
			inv.InvoiceID, inv.Name, inv.Status, inv.Amount, dueDate)
		if err != nil {
			return fmt.Errorf("upsert invoice %s: %w", inv.InvoiceID, err)
		}
	}
	return nil
}
