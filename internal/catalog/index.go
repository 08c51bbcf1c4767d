// Package catalog holds the in-memory product index the agent searches
// before adding items to a checkout.
package catalog

import (
	"strings"
)

// Product is a catalog entry. Immutable once loaded into an Index.
type Product struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Price       int64  `json:"price,omitempty" yaml:"price,omitempty"` // cents, 0 when unknown
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

func (p Product) searchable() string {
	return strings.ToLower(p.Title + " " + p.Category + " " + p.ID)
}

// SearchResult is the outcome of a keyword search.
// Total equals len(Products) in both the match and fallback cases.
type SearchResult struct {
	Products []Product
	Query    string
	Total    int
}

// Index is an ordered, read-only product index.
// Safe for concurrent use after construction.
type Index struct {
	products []Product
	byID     map[string]int
}

// New builds an index preserving the order of products.
// A repeated ID overwrites the earlier entry in place.
func New(products []Product) *Index {
	idx := &Index{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		if i, ok := idx.byID[p.ID]; ok {
			idx.products[i] = p
			continue
		}
		idx.byID[p.ID] = len(idx.products)
		idx.products = append(idx.products, p)
	}
	return idx
}

// Get returns the product with the given ID.
func (idx *Index) Get(id string) (Product, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return Product{}, false
	}
	return idx.products[i], true
}

// Len returns the number of products.
func (idx *Index) Len() int {
	return len(idx.products)
}

// Products returns a copy of all products in catalog order.
func (idx *Index) Products() []Product {
	out := make([]Product, len(idx.products))
	copy(out, idx.products)
	return out
}

// Search matches products whose title, category or ID contains any of the
// whitespace-separated query keywords, case-insensitively.
// When nothing matches (an empty query included) the whole catalog is returned.
func (idx *Index) Search(query string) SearchResult {
	keywords := strings.Fields(strings.ToLower(query))

	var matches []Product
	for _, p := range idx.products {
		text := p.searchable()
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				matches = append(matches, p)
				break
			}
		}
	}

	if len(matches) == 0 {
		matches = idx.Products()
	}
	return SearchResult{
		Products: matches,
		Query:    query,
		Total:    len(matches),
	}
}
