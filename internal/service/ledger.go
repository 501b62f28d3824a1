package service

import (
	"fmt"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/store"
)

// stockLedger collects the product changes of one operation so they ship
// in the same action as the order or purchase order that caused them.
type stockLedger struct {
	doc     domain.Document
	touched map[string]*domain.Product
	order   []string
}

func newStockLedger(doc domain.Document) *stockLedger {
	return &stockLedger{doc: doc, touched: make(map[string]*domain.Product)}
}

func (l *stockLedger) product(id string) (*domain.Product, error) {
	if p, ok := l.touched[id]; ok {
		return p, nil
	}
	p, ok := l.doc.Product(id)
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	clone := p.Clone()
	l.touched[id] = &clone
	l.order = append(l.order, id)
	return &clone, nil
}

// take removes sold units. The variant must exist: a product with variants
// cannot be sold without naming one.
func (l *stockLedger) take(productID string, key domain.VariantKey, qty int) error {
	p, err := l.product(productID)
	if err != nil {
		return err
	}
	if key.IsZero() {
		if len(p.Variants) > 0 {
			return fmt.Errorf("%w: %s needs a size or color", ErrUnknownVariant, p.Name)
		}
		p.Stock -= qty
		return nil
	}
	idx := p.VariantIndex(key)
	if idx < 0 {
		return fmt.Errorf("%w: %s has no variant %s", ErrUnknownVariant, p.Name, key)
	}
	p.Variants[idx].Quantity -= qty
	p.Stock -= qty
	return nil
}

// put adds units back, creating the variant when the product never had it.
// A product with variants only takes units into a named variant.
func (l *stockLedger) put(productID string, key domain.VariantKey, qty int) error {
	p, err := l.product(productID)
	if err != nil {
		return err
	}
	if key.IsZero() && len(p.Variants) > 0 {
		return fmt.Errorf("%w: %s needs a size or color", ErrUnknownVariant, p.Name)
	}
	if !key.IsZero() {
		if idx := p.VariantIndex(key); idx >= 0 {
			p.Variants[idx].Quantity += qty
		} else {
			p.Variants = append(p.Variants, domain.ProductVariant{Size: key.Size, Color: key.Color, Quantity: qty})
		}
	}
	p.Stock += qty
	return nil
}

func (l *stockLedger) adjust(productID string, key domain.VariantKey, delta int) error {
	switch {
	case delta > 0:
		return l.put(productID, key, delta)
	case delta < 0:
		return l.take(productID, key, -delta)
	}
	return nil
}

func (l *stockLedger) products() []domain.Product {
	out := make([]domain.Product, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.touched[id])
	}
	return out
}

type lineKey struct {
	productID string
	variant   domain.VariantKey
}

func orderQuantities(items []domain.OrderItem) (map[lineKey]int, []lineKey) {
	qty := make(map[lineKey]int, len(items))
	var keys []lineKey
	for _, item := range items {
		k := lineKey{productID: item.ProductID, variant: item.Key()}
		if _, seen := qty[k]; !seen {
			keys = append(keys, k)
		}
		qty[k] += item.Quantity
	}
	return qty, keys
}

// negativeStock names the first item whose product or variant is below zero.
func negativeStock(doc domain.Document, items []domain.OrderItem) (string, bool) {
	for _, item := range items {
		p, ok := doc.Product(item.ProductID)
		if !ok {
			continue
		}
		if p.Stock < 0 {
			return p.Name, true
		}
		key := item.Key()
		if key.IsZero() {
			continue
		}
		if idx := p.VariantIndex(key); idx >= 0 && p.Variants[idx].Quantity < 0 {
			return p.Name + " " + key.String(), true
		}
	}
	return "", false
}
