package report

import (
	"sort"

	"aminashop/backend/internal/domain"
)

// SuggestedQuantity brings stock back to twice the alert threshold, and
// always orders at least one unit.
func SuggestedQuantity(p domain.Product) int {
	qty := 2*p.AlertThreshold - p.Stock
	if qty < 1 {
		return 1
	}
	return qty
}

// NeedsReplenishment reports products at or below their alert threshold
// that have a supplier to order from.
func NeedsReplenishment(p domain.Product) bool {
	return p.SupplierID != "" && p.Stock <= p.AlertThreshold
}

// SplitAcrossVariants shares qty between variants one unit at a time,
// always to the variant holding the fewest units. Ties go to the first.
func SplitAcrossVariants(variants []domain.ProductVariant, qty int) []int {
	shares := make([]int, len(variants))
	if len(variants) == 0 {
		return shares
	}
	for n := 0; n < qty; n++ {
		low := 0
		for i := range variants {
			if variants[i].Quantity+shares[i] < variants[low].Quantity+shares[low] {
				low = i
			}
		}
		shares[low]++
	}
	return shares
}

type supplierGroup struct {
	domain.SupplierReplenishment
}

func (g *supplierGroup) add(p domain.Product, v domain.ProductVariant, qty int) {
	line := domain.ReplenishmentLine{
		ProductID:      p.ID,
		Name:           p.Name,
		SKU:            p.SKU,
		Size:           v.Size,
		Color:          v.Color,
		Stock:          v.Quantity,
		AlertThreshold: p.AlertThreshold,
		SuggestedQty:   qty,
		PurchasePrice:  p.PurchasePrice,
		EstimatedCost:  p.PurchasePrice * int64(qty),
	}
	g.Lines = append(g.Lines, line)
	g.EstimatedCost += line.EstimatedCost
}

// Replenishment groups low-stock products by supplier. A product with
// variants gets one line per variant so receipts land in a size or color.
func Replenishment(doc domain.Document) []domain.SupplierReplenishment {
	names := make(map[string]string, len(doc.Suppliers))
	for _, s := range doc.Suppliers {
		names[s.ID] = s.CompanyName
	}

	bySupplier := make(map[string]*supplierGroup)
	for _, p := range doc.Products {
		if !NeedsReplenishment(p) {
			continue
		}
		group, ok := bySupplier[p.SupplierID]
		if !ok {
			group = &supplierGroup{domain.SupplierReplenishment{SupplierID: p.SupplierID, CompanyName: names[p.SupplierID]}}
			bySupplier[p.SupplierID] = group
		}
		qty := SuggestedQuantity(p)
		if len(p.Variants) == 0 {
			group.add(p, domain.ProductVariant{Quantity: p.Stock}, qty)
			continue
		}
		for i, share := range SplitAcrossVariants(p.Variants, qty) {
			if share > 0 {
				group.add(p, p.Variants[i], share)
			}
		}
	}

	out := make([]domain.SupplierReplenishment, 0, len(bySupplier))
	for _, group := range bySupplier {
		sort.SliceStable(group.Lines, func(i, j int) bool { return group.Lines[i].Name < group.Lines[j].Name })
		out = append(out, group.SupplierReplenishment)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompanyName != out[j].CompanyName {
			return out[i].CompanyName < out[j].CompanyName
		}
		return out[i].SupplierID < out[j].SupplierID
	})
	return out
}
