package service

import (
	"context"
	"fmt"
	"strings"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/reducer"
	"aminashop/backend/internal/store"
	"aminashop/backend/internal/validation"
)

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := s.authorize(ctx, domain.ModuleProductList); err != nil {
		return nil, err
	}
	return s.snapshot().Products, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if err := s.authorize(ctx, domain.ModuleProductList); err != nil {
		return domain.Product{}, err
	}
	p, ok := s.snapshot().Product(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
	}
	return p, nil
}

func (s *Service) AddProduct(ctx context.Context, req domain.ProductInput) (domain.Product, error) {
	var created domain.Product
	err := s.saveProduct(ctx, domain.CanAddProducts, "", req, func(p domain.Product) reducer.Action {
		created = p
		return reducer.AddProduct{Product: p}
	})
	return created, err
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductInput) (domain.Product, error) {
	var updated domain.Product
	err := s.saveProduct(ctx, domain.CanEditProducts, id, req, func(p domain.Product) reducer.Action {
		updated = p
		return reducer.UpdateProduct{Product: p}
	})
	return updated, err
}

func (s *Service) saveProduct(ctx context.Context, perm domain.Permission, id string, req domain.ProductInput, build func(domain.Product) reducer.Action) error {
	if err := validation.Check(req); err != nil {
		return err
	}

	return s.apply(ctx, perm, func(doc domain.Document) (reducer.Action, error) {
		product, err := productFromInput(doc, id, req)
		if err != nil {
			return nil, err
		}
		if id == "" {
			product.ID = s.newID("prod")
		}
		return build(product), nil
	})
}

func productFromInput(doc domain.Document, id string, req domain.ProductInput) (domain.Product, error) {
	if id != "" {
		if _, ok := doc.Product(id); !ok {
			return domain.Product{}, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
		}
	}
	category := strings.TrimSpace(req.Category)
	if !doc.HasCategory(category) {
		return domain.Product{}, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	supplierID := strings.TrimSpace(req.SupplierID)
	if supplierID != "" {
		if _, ok := doc.Supplier(supplierID); !ok {
			return domain.Product{}, fmt.Errorf("supplier %s: %w", supplierID, store.ErrNotFound)
		}
	}
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if sku != "" {
		for _, other := range doc.Products {
			if other.ID != id && strings.EqualFold(other.SKU, sku) {
				return domain.Product{}, fmt.Errorf("%w: %s", ErrDuplicateSKU, sku)
			}
		}
	}

	product := domain.Product{
		ID:             id,
		Name:           strings.TrimSpace(req.Name),
		SKU:            sku,
		Description:    strings.TrimSpace(req.Description),
		Category:       category,
		SupplierID:     supplierID,
		PurchasePrice:  req.PurchasePrice,
		SellingPrice:   req.SellingPrice,
		Stock:          req.Stock,
		AlertThreshold: req.AlertThreshold,
		Variants:       make([]domain.ProductVariant, 0, len(req.Variants)),
		ImageURL:       strings.TrimSpace(req.ImageURL),
	}
	seen := make(map[domain.VariantKey]bool, len(req.Variants))
	for _, v := range req.Variants {
		key := v.Key()
		if key.IsZero() {
			return domain.Product{}, fmt.Errorf("%w: variant needs a size or color", ErrUnknownVariant)
		}
		if seen[key] {
			return domain.Product{}, fmt.Errorf("%w: %s", ErrDuplicateVariant, key)
		}
		seen[key] = true
		product.Variants = append(product.Variants, domain.ProductVariant{Size: key.Size, Color: key.Color, Quantity: v.Quantity})
	}
	if len(product.Variants) > 0 {
		product.Stock = product.VariantTotal()
	}
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.apply(ctx, domain.CanDeleteProducts, func(doc domain.Document) (reducer.Action, error) {
		if _, ok := doc.Product(id); !ok {
			return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
		}
		return reducer.DeleteProduct{ProductID: id}, nil
	})
}

func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	if err := s.authorize(ctx, domain.ModuleProductList); err != nil {
		return nil, err
	}
	return s.snapshot().Categories, nil
}

// AddCategory is idempotent: an existing name is left as is.
func (s *Service) AddCategory(ctx context.Context, req domain.CategoryInput) ([]string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", store.ErrInvalidTransaction)
	}
	err := s.apply(ctx, domain.CanAddProducts, func(doc domain.Document) (reducer.Action, error) {
		if doc.HasCategory(name) {
			return nil, nil
		}
		return reducer.AddCategory{Name: name}, nil
	})
	if err != nil {
		return nil, err
	}
	return s.snapshot().Categories, nil
}

func (s *Service) ListClients(ctx context.Context) ([]domain.Client, error) {
	if err := s.authorize(ctx, domain.ModuleOrders); err != nil {
		return nil, err
	}
	return s.snapshot().Clients, nil
}

func (s *Service) AddClient(ctx context.Context, req domain.ClientInput) (domain.Client, error) {
	if err := validation.Check(req); err != nil {
		return domain.Client{}, err
	}
	client := clientFromInput(req)
	client.ID = s.newID("cli")
	err := s.apply(ctx, domain.ModuleClients, func(domain.Document) (reducer.Action, error) {
		return reducer.AddClient{Client: client}, nil
	})
	return client, err
}

func (s *Service) UpdateClient(ctx context.Context, id string, req domain.ClientInput) (domain.Client, error) {
	if err := validation.Check(req); err != nil {
		return domain.Client{}, err
	}
	client := clientFromInput(req)
	client.ID = id
	err := s.apply(ctx, domain.ModuleClients, func(doc domain.Document) (reducer.Action, error) {
		if _, ok := doc.Client(id); !ok {
			return nil, fmt.Errorf("client %s: %w", id, store.ErrNotFound)
		}
		return reducer.UpdateClient{Client: client}, nil
	})
	return client, err
}

func clientFromInput(req domain.ClientInput) domain.Client {
	return domain.Client{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		Address:   strings.TrimSpace(req.Address),
	}
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	if err := s.authorize(ctx, domain.ModuleSuppliers); err != nil {
		return nil, err
	}
	return s.snapshot().Suppliers, nil
}

func (s *Service) AddSupplier(ctx context.Context, req domain.SupplierInput) (domain.Supplier, error) {
	if err := validation.Check(req); err != nil {
		return domain.Supplier{}, err
	}
	supplier := supplierFromInput(req)
	supplier.ID = s.newID("sup")
	err := s.apply(ctx, domain.CanManageSuppliers, func(domain.Document) (reducer.Action, error) {
		return reducer.AddSupplier{Supplier: supplier}, nil
	})
	return supplier, err
}

func (s *Service) UpdateSupplier(ctx context.Context, id string, req domain.SupplierInput) (domain.Supplier, error) {
	if err := validation.Check(req); err != nil {
		return domain.Supplier{}, err
	}
	supplier := supplierFromInput(req)
	supplier.ID = id
	err := s.apply(ctx, domain.CanManageSuppliers, func(doc domain.Document) (reducer.Action, error) {
		if _, ok := doc.Supplier(id); !ok {
			return nil, fmt.Errorf("supplier %s: %w", id, store.ErrNotFound)
		}
		return reducer.UpdateSupplier{Supplier: supplier}, nil
	})
	return supplier, err
}

func supplierFromInput(req domain.SupplierInput) domain.Supplier {
	return domain.Supplier{
		CompanyName:   strings.TrimSpace(req.CompanyName),
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Address:       strings.TrimSpace(req.Address),
	}
}
