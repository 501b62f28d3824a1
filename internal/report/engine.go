package report

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"aminashop/backend/internal/cache"
	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/xid"
)

const topProductsLimit = 5

type Engine struct {
	cache    cache.ReportCache
	cacheTTL time.Duration
	now      func() time.Time
	// instance keeps versions of this process apart from those of earlier
	// runs sharing the same cache.
	instance string
}

func NewEngine(cacheStore cache.ReportCache, cacheTTL time.Duration) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopReportCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}

	return &Engine{
		cache:    cacheStore,
		cacheTTL: cacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
		instance: xid.New("run"),
	}
}

// Sales summarizes non-archived orders matching query. Results are cached
// per document version, so any committed change invalidates them.
func (e *Engine) Sales(ctx context.Context, doc domain.Document, version uint64, query domain.SalesReportQuery) domain.SalesReport {
	cacheKey := buildCacheKey(e.instance, query, version)
	if cached, ok, err := e.cache.Get(ctx, cacheKey); err == nil && ok {
		return *cached
	}

	purchasePrices := make(map[string]int64, len(doc.Products))
	names := make(map[string]string, len(doc.Products))
	for _, p := range doc.Products {
		purchasePrices[p.ID] = p.PurchasePrice
		names[p.ID] = p.Name
	}

	report := domain.SalesReport{
		ByPaymentStatus: make(map[string]int),
		TopProducts:     []domain.ProductSales{},
		Version:         version,
	}
	sales := make(map[string]*domain.ProductSales)

	for _, order := range doc.Orders {
		if !matches(order, query) {
			continue
		}
		report.ByPaymentStatus[string(order.PaymentStatus)]++
		if !countsAsSale(order) {
			continue
		}

		report.Orders++
		report.Revenue += order.Total
		report.Collected += order.PaidAmount
		if balance := order.Total - order.PaidAmount; balance > 0 {
			report.Outstanding += balance
		}
		report.Discounts += order.Discount

		profit := -order.Discount
		for _, item := range order.Items {
			profit += (item.Price - purchasePrices[item.ProductID]) * int64(item.Quantity)

			line, ok := sales[item.ProductID]
			if !ok {
				line = &domain.ProductSales{ProductID: item.ProductID, Name: names[item.ProductID]}
				sales[item.ProductID] = line
			}
			line.Quantity += item.Quantity
			line.Revenue += item.Price * int64(item.Quantity)
		}
		report.GrossProfit += profit
	}

	revenue := decimal.NewFromInt(report.Revenue)
	report.AverageBasket = "0"
	report.MarginPercent = "0.00"
	report.CollectionRate = "0.00"
	if report.Orders > 0 {
		report.AverageBasket = revenue.Div(decimal.NewFromInt(int64(report.Orders))).StringFixed(0)
	}
	if report.Revenue > 0 {
		hundred := decimal.NewFromInt(100)
		report.MarginPercent = decimal.NewFromInt(report.GrossProfit).Div(revenue).Mul(hundred).StringFixed(2)
		report.CollectionRate = decimal.NewFromInt(report.Collected).Div(revenue).Mul(hundred).StringFixed(2)
	}

	for _, line := range sales {
		report.TopProducts = append(report.TopProducts, *line)
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		a, b := report.TopProducts[i], report.TopProducts[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.ProductID < b.ProductID
	})
	if len(report.TopProducts) > topProductsLimit {
		report.TopProducts = report.TopProducts[:topProductsLimit]
	}

	report.GeneratedAt = e.now().Format(time.RFC3339)
	_ = e.cache.Set(ctx, cacheKey, &report, e.cacheTTL)
	return report
}

func matches(order domain.Order, query domain.SalesReportQuery) bool {
	if order.IsArchived {
		return false
	}
	if query.From != nil && order.Date.Before(*query.From) {
		return false
	}
	if query.To != nil && order.Date.After(*query.To) {
		return false
	}
	if query.ClientID != "" && order.ClientID != query.ClientID {
		return false
	}
	if query.PaymentStatus != "" && order.PaymentStatus != query.PaymentStatus {
		return false
	}
	if query.ProductID != "" {
		for _, item := range order.Items {
			if item.ProductID == query.ProductID {
				return true
			}
		}
		return false
	}
	return true
}

// countsAsSale excludes cancelled and fully refunded orders from totals.
func countsAsSale(order domain.Order) bool {
	return order.PaymentStatus != domain.PaymentCancelled && order.PaymentStatus != domain.PaymentRefunded
}

func buildCacheKey(instance string, query domain.SalesReportQuery, version uint64) string {
	parts := []string{"run:" + instance, fmt.Sprintf("v:%d", version)}
	if query.From != nil {
		parts = append(parts, "from:"+query.From.UTC().Format(time.RFC3339))
	}
	if query.To != nil {
		parts = append(parts, "to:"+query.To.UTC().Format(time.RFC3339))
	}
	parts = append(parts, "client:"+query.ClientID, "product:"+query.ProductID, "status:"+string(query.PaymentStatus))

	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return "sales:" + hex.EncodeToString(hash[:])
}
