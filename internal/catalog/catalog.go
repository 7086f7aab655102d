package catalog

import (
	"errors"
	"fmt"

	"github.com/fjod/go_cart/order-bot/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// Catalog is the immutable list of purchasable products, kept in display order.
type Catalog struct {
	products []domain.Product
	byID     map[string]domain.Product
}

func New(products ...domain.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[string]domain.Product, len(products)),
	}
	for _, p := range products {
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("%w: id and name are required", ErrInvalidProduct)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("%w: %s has a negative price", ErrInvalidProduct, p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidProduct, p.ID)
		}
		c.byID[p.ID] = p
		c.products = append(c.products, p)
	}
	if len(c.products) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", ErrInvalidProduct)
	}
	return c, nil
}

// Default returns the storefront's standard product line.
func Default() *Catalog {
	c, err := New(
		domain.Product{ID: "p1", Name: "2oz Silicone-based personal lubricant", Price: decimal.RequireFromString("19.99")},
		domain.Product{ID: "p2", Name: "2oz Silicone-based personal lubricant (2-pack)", Price: decimal.RequireFromString("29.99")},
		domain.Product{ID: "p3", Name: "4oz Silicone-based personal lubricant", Price: decimal.RequireFromString("29.99")},
		domain.Product{ID: "p4", Name: "4oz Silicone-based personal lubricant (2-pack)", Price: decimal.RequireFromString("39.99")},
	)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Find(id string) (domain.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

// Products returns a copy of the catalog in display order.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}
