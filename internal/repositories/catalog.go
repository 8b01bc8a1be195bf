package repositories

import (
	"context"
	"fmt"
	"sort"

	"pharmacy/internal/models"
)

// CatalogRepository is a read-only product lookup.
type CatalogRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// StaticCatalog serves a fixed set of products held in memory.
type StaticCatalog struct {
	products map[string]models.Product
}

// NewStaticCatalog builds a catalog from products. Later entries win on duplicate IDs.
func NewStaticCatalog(products []models.Product) *StaticCatalog {
	c := &StaticCatalog{products: make(map[string]models.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// GetAll returns every product sorted by name.
func (c *StaticCatalog) GetAll(ctx context.Context) ([]models.Product, error) {
	list := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// GetByID returns a product by its ID.
func (c *StaticCatalog) GetByID(ctx context.Context, id string) (*models.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return &p, nil
}
