package domain

import "time"

type SalesReportQuery struct {
	From          *time.Time    `json:"from,omitempty"`
	To            *time.Time    `json:"to,omitempty"`
	ClientID      string        `json:"clientId,omitempty"`
	ProductID     string        `json:"productId,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
}

type ProductSales struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Revenue   int64  `json:"revenue"`
}

type SalesReport struct {
	Orders          int            `json:"orders"`
	Revenue         int64          `json:"revenue"`
	Collected       int64          `json:"collected"`
	Outstanding     int64          `json:"outstanding"`
	Discounts       int64          `json:"discounts"`
	GrossProfit     int64          `json:"grossProfit"`
	AverageBasket   string         `json:"averageBasket"`
	MarginPercent   string         `json:"marginPercent"`
	CollectionRate  string         `json:"collectionRate"`
	ByPaymentStatus map[string]int `json:"byPaymentStatus"`
	TopProducts     []ProductSales `json:"topProducts"`
	GeneratedAt     string         `json:"generatedAt"`
	Version         uint64         `json:"version"`
}

type ReplenishmentLine struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	Size           string `json:"size,omitempty"`
	Color          string `json:"color,omitempty"`
	Stock          int    `json:"stock"`
	AlertThreshold int    `json:"alertThreshold"`
	SuggestedQty   int    `json:"suggestedQty"`
	PurchasePrice  int64  `json:"purchasePrice"`
	EstimatedCost  int64  `json:"estimatedCost"`
}

type SupplierReplenishment struct {
	SupplierID    string              `json:"supplierId"`
	CompanyName   string              `json:"companyName"`
	Lines         []ReplenishmentLine `json:"lines"`
	EstimatedCost int64               `json:"estimatedCost"`
}
