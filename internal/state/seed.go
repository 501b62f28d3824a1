package state

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"aminashop/backend/internal/domain"
)

const devAdminPIN = "739154"

type SeedOptions struct {
	// AdminPIN protects the first Admin account. A dev default is used
	// when empty.
	AdminPIN string
	// Demo adds a small catalog, clients and suppliers.
	Demo bool
}

// SeedDocument builds the document used when nothing has been persisted yet.
func SeedDocument(opts SeedOptions) (domain.Document, error) {
	pin := opts.AdminPIN
	if pin == "" {
		log.Println("[state] WARNING: using default dev admin PIN. Set SEED_ADMIN_PIN to override.")
		pin = devAdminPIN
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return domain.Document{}, fmt.Errorf("hash seed admin pin: %w", err)
	}

	doc := domain.NewDocument()
	doc.Users = []domain.User{{ID: "user-admin", Name: "Admin", PIN: string(hash), Role: domain.RoleAdmin}}
	if opts.Demo {
		addDemoData(&doc)
	}
	return doc, nil
}

func addDemoData(doc *domain.Document) {
	doc.Suppliers = []domain.Supplier{
		{ID: "sup-1", CompanyName: "Textiles Dakar", ContactPerson: "Moussa Diop", Phone: "+221 77 000 00 01", Email: "contact@textiles-dakar.sn", Address: "Dakar"},
		{ID: "sup-2", CompanyName: "Cuirs du Sahel", ContactPerson: "Awa Ndiaye", Phone: "+221 77 000 00 02", Email: "ventes@cuirs-sahel.sn", Address: "Thiès"},
	}
	doc.Clients = []domain.Client{
		{ID: "cli-1", FirstName: "Fatou", LastName: "Sow", Phone: "+221 76 100 00 01", Email: "fatou.sow@example.com", Address: "Médina"},
		{ID: "cli-2", FirstName: "Ibrahima", LastName: "Fall", Phone: "+221 76 100 00 02", Email: "ibrahima.fall@example.com", Address: "Plateau"},
	}
	doc.Products = []domain.Product{
		{
			ID: "prod-1", Name: "Robe wax", SKU: "RW-001", Description: "Robe en tissu wax",
			Category: "Vêtements", SupplierID: "sup-1", PurchasePrice: 8000, SellingPrice: 15000,
			Stock: 12, AlertThreshold: 4,
			Variants: []domain.ProductVariant{
				{Size: "M", Color: "Rouge", Quantity: 5},
				{Size: "L", Color: "Rouge", Quantity: 4},
				{Size: "M", Color: "Bleu", Quantity: 3},
			},
		},
		{
			ID: "prod-2", Name: "Sac en cuir", SKU: "SC-001", Description: "Sac à main en cuir",
			Category: "Accessoires", SupplierID: "sup-2", PurchasePrice: 12000, SellingPrice: 25000,
			Stock: 3, AlertThreshold: 5, Variants: []domain.ProductVariant{},
		},
		{
			ID: "prod-3", Name: "Sandales", SKU: "SD-001", Description: "Sandales en cuir",
			Category: "Chaussures", SupplierID: "sup-2", PurchasePrice: 5000, SellingPrice: 10000,
			Stock: 10, AlertThreshold: 3,
			Variants: []domain.ProductVariant{
				{Size: "38", Quantity: 4},
				{Size: "40", Quantity: 6},
			},
		},
	}
}
