package catalog

import (
	"testing"
)

func ids(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSearch(t *testing.T) {
	idx := Default()
	all := ids(idx.Products())

	tests := []struct {
		name      string
		query     string
		wantIDs   []string
		wantTotal int
	}{
		{
			name:      "single keyword in title",
			query:     "roses",
			wantIDs:   []string{"bouquet_roses"},
			wantTotal: 1,
		},
		{
			name:      "case insensitive",
			query:     "ORCHID",
			wantIDs:   []string{"orchid_white"},
			wantTotal: 1,
		},
		{
			name:      "any keyword matches, catalog order kept",
			query:     "pot tulips",
			wantIDs:   []string{"bouquet_tulips", "pot_ceramic"},
			wantTotal: 2,
		},
		{
			name:      "category is searchable",
			query:     "accessories",
			wantIDs:   []string{"pot_ceramic"},
			wantTotal: 1,
		},
		{
			name:      "id is searchable",
			query:     "bouquet",
			wantIDs:   []string{"bouquet_roses", "bouquet_sunflowers", "bouquet_tulips"},
			wantTotal: 3,
		},
		{
			name:      "product matched by two keywords appears once",
			query:     "white orchid",
			wantIDs:   []string{"orchid_white"},
			wantTotal: 1,
		},
		{
			name:      "no match falls back to whole catalog",
			query:     "cactus",
			wantIDs:   all,
			wantTotal: len(all),
		},
		{
			name:      "empty query falls back to whole catalog",
			query:     "",
			wantIDs:   all,
			wantTotal: len(all),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Search(tt.query)
			if !equalIDs(ids(got.Products), tt.wantIDs) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, ids(got.Products), tt.wantIDs)
			}
			if got.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", got.Total, tt.wantTotal)
			}
			if got.Query != tt.query {
				t.Errorf("Query = %q, want %q", got.Query, tt.query)
			}
		})
	}
}

func TestNew_DuplicateIDLastWinsFirstPosition(t *testing.T) {
	idx := New([]Product{
		{ID: "a", Title: "First A"},
		{ID: "b", Title: "B"},
		{ID: "a", Title: "Second A"},
	})

	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}
	if got := ids(idx.Products()); !equalIDs(got, []string{"a", "b"}) {
		t.Errorf("Products() order = %v, want [a b]", got)
	}
	p, ok := idx.Get("a")
	if !ok || p.Title != "Second A" {
		t.Errorf("Get(a) = %+v, %v; want Second A", p, ok)
	}
}

func TestGet(t *testing.T) {
	idx := Default()

	p, ok := idx.Get("gardenias")
	if !ok {
		t.Fatal("Get(gardenias) not found")
	}
	if p.Price != 2000 {
		t.Errorf("Price = %d, want 2000", p.Price)
	}
	if _, ok := idx.Get("cactus"); ok {
		t.Error("Get(cactus) should not be found")
	}
}

func TestProducts_ReturnsCopy(t *testing.T) {
	idx := Default()
	products := idx.Products()
	products[0].Title = "changed"

	p, _ := idx.Get(products[0].ID)
	if p.Title == "changed" {
		t.Error("Products() should return a copy")
	}
}
