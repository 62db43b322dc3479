// Package mockcatalog serves a fixed product list loaded from an embedded YAML file.
package mockcatalog

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/dietcoach/backend/internal/domain"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// MallName marks every mock listing
const MallName = "MOCK"

//go:embed catalog.yaml
var defaultCatalog []byte

type entry struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	Price        int    `yaml:"price"`
	Grams        int    `yaml:"grams"`
	CategoryCode string `yaml:"category_code"`
	CategoryName string `yaml:"category_name"`
	ImageURL     string `yaml:"image_url"`
}

type file struct {
	Products []entry `yaml:"products"`
}

// Catalog is an immutable in-memory product list
type Catalog struct {
	products []domain.CandidateProduct
}

// Default returns the embedded catalog
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("mockcatalog: embedded catalog is invalid: %v", err))
	}
	return c
}

// Parse builds a catalog from YAML. Entries need an id, a title and a non-negative price.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	products := make([]domain.CandidateProduct, 0, len(f.Products))
	for i, e := range f.Products {
		if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Title) == "" {
			return nil, fmt.Errorf("catalog entry %d: id and title are required", i)
		}
		if e.Price < 0 {
			return nil, fmt.Errorf("catalog entry %s: negative price", e.ID)
		}
		products = append(products, domain.CandidateProduct{
			ExternalID:   e.ID,
			Title:        norm.NFC.String(e.Title),
			Price:        e.Price,
			GramPerUnit:  e.Grams,
			CategoryCode: e.CategoryCode,
			CategoryName: e.CategoryName,
			MallName:     MallName,
			ProductURL:   "https://www.11st.co.kr/products/" + e.ID,
			ImageURL:     e.ImageURL,
		})
	}
	return &Catalog{products: products}, nil
}

// Search returns the page of products whose title contains keyword, in catalog order.
// Pages start at 1.
func (c *Catalog) Search(keyword string, page, size int) []domain.CandidateProduct {
	keyword = norm.NFC.String(strings.TrimSpace(keyword))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		return []domain.CandidateProduct{}
	}

	var matched []domain.CandidateProduct
	for _, p := range c.products {
		if strings.Contains(p.Title, keyword) {
			matched = append(matched, p)
		}
	}

	from := (page - 1) * size
	if from >= len(matched) {
		return []domain.CandidateProduct{}
	}
	to := from + size
	if to > len(matched) {
		to = len(matched)
	}

	out := make([]domain.CandidateProduct, to-from)
	copy(out, matched[from:to])
	return out
}

// Len returns the number of listings
func (c *Catalog) Len() int {
	return len(c.products)
}
