package pos

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// CatalogItem is a purchasable product.
type CatalogItem struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Catalog is the fixed product list offered at the counter. It is read-only
// once built.
type Catalog struct {
	items []CatalogItem
	byID  map[int]int
}

func NewCatalog(items []CatalogItem) (*Catalog, error) {
	c := &Catalog{
		items: make([]CatalogItem, 0, len(items)),
		byID:  make(map[int]int, len(items)),
	}

	for i, item := range items {
		if _, dup := c.byID[item.ID]; dup {
			return nil, fmt.Errorf("catalog item %d: duplicated id %d", i, item.ID)
		}
		if strings.TrimSpace(item.Name) == "" {
			return nil, fmt.Errorf("catalog item %d: name is required", item.ID)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("catalog item %d: price cannot be negative", item.ID)
		}

		item.UnitPrice = RoundMoney(item.UnitPrice)
		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}

	return c, nil
}

// DefaultCatalog returns the taco stand menu.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog([]CatalogItem{
		{ID: 1, Name: "Taco Vapor", UnitPrice: decimal.NewFromInt(8)},
		{ID: 2, Name: "Taco Bistec", UnitPrice: decimal.NewFromInt(13)},
		{ID: 3, Name: "Taco Tripa", UnitPrice: decimal.NewFromInt(17)},
		{ID: 4, Name: "Taco Lengua", UnitPrice: decimal.NewFromInt(20)},
		{ID: 5, Name: "Agua Natural", UnitPrice: decimal.NewFromInt(10)},
		{ID: 6, Name: "Refresco 500ml", UnitPrice: decimal.NewFromInt(20)},
		{ID: 7, Name: "Refresco 2 Lts", UnitPrice: decimal.NewFromInt(45)},
		{ID: 8, Name: "Vasos", UnitPrice: decimal.NewFromInt(1)},
	})
	return c
}

type catalogFile struct {
	Products []struct {
		ID    int    `yaml:"id"`
		Name  string `yaml:"name"`
		Price string `yaml:"price"`
	} `yaml:"products"`
}

// LoadCatalogFile reads a YAML product list:
//
//	products:
//	  - id: 1
//	    name: Taco Vapor
//	    price: 8
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("cannot parse catalog file: %w", err)
	}

	if len(file.Products) == 0 {
		return nil, fmt.Errorf("catalog file %s has no products", path)
	}

	items := make([]CatalogItem, 0, len(file.Products))
	for _, p := range file.Products {
		price, err := ParseAmount(p.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog item %d: %w", p.ID, err)
		}
		items = append(items, CatalogItem{ID: p.ID, Name: p.Name, UnitPrice: price})
	}

	return NewCatalog(items)
}

// Items returns the products in display order.
func (c *Catalog) Items() []CatalogItem {
	out := make([]CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Get(id int) (CatalogItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return CatalogItem{}, false
	}
	return c.items[i], true
}

func (c *Catalog) Len() int {
	return len(c.items)
}
