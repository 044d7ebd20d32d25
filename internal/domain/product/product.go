package product

import (
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

func init() {
	// The snapshot schema and the API represent prices as JSON numbers,
	// not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Sentinel errors for catalog operations.
var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrInvalidProduct is returned when a product to be added is missing
	// an id or name, has a negative price, or reuses an existing id.
	ErrInvalidProduct = errors.New("invalid product")
)

// Category classifies a menu entry. The values are the labels the
// presentation layer shows and the snapshot stores.
type Category string

const (
	CategoryDrink    Category = "Bebidas"
	CategoryFood     Category = "Comidas"
	CategoryCocktail Category = "Drinks"
	CategoryDessert  Category = "Sobremesas"
)

// Valid reports whether c is one of the known menu categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDrink, CategoryFood, CategoryCocktail, CategoryDessert:
		return true
	}
	return false
}

// Product represents a menu entry available for ordering.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Description string          `json:"description,omitempty"`
}

// Catalog is the in-memory menu. It is seeded once at startup and only
// ever grows: products can be appended but never edited or removed, so
// order items that snapshot a product's name and price at insertion time
// stay historically accurate.
//
// The catalog itself is deliberately not durable. It is reseeded from the
// static menu definition on every start; operator additions do not
// survive a restart.
type Catalog struct {
	mu       sync.RWMutex
	products []Product
	byID     map[string]int
}

// NewCatalog builds a catalog seeded with the given products.
func NewCatalog(seed []Product) *Catalog {
	c := &Catalog{
		products: make([]Product, 0, len(seed)),
		byID:     make(map[string]int, len(seed)),
	}
	for _, p := range seed {
		c.products = append(c.products, p)
		c.byID[p.ID] = len(c.products) - 1
	}
	return c
}

// List returns all products in seeding/insertion order.
func (c *Catalog) List() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// GetByID returns the product with the given id, or ErrNotFound.
func (c *Catalog) GetByID(id string) (Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return c.products[i], nil
}

// Add appends a new product to the catalog. Existing entries are never
// replaced: adding a product whose id is already taken fails with
// ErrInvalidProduct.
func (c *Catalog) Add(p Product) error {
	if p.ID == "" || p.Name == "" {
		return errors.Wrap(ErrInvalidProduct, "id and name required")
	}
	if p.Price.IsNegative() {
		return errors.Wrap(ErrInvalidProduct, "price must not be negative")
	}
	if !p.Category.Valid() {
		return errors.Wrapf(ErrInvalidProduct, "unknown category %q", p.Category)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[p.ID]; ok {
		return errors.Wrapf(ErrInvalidProduct, "id %q already exists", p.ID)
	}
	c.products = append(c.products, p)
	c.byID[p.ID] = len(c.products) - 1
	return nil
}
