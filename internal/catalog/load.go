package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ucp-agent/internal/model"
)

// catalogFile is the on-disk layout shared by JSON and YAML catalogs:
//
//	products:
//	  - id: bouquet_roses
//	    title: Bouquet of Red Roses
//	    price: 3500        # cents
//	    amount: "35.00"    # alternative, major units
//	    category: flowers
type catalogFile struct {
	Products []fileProduct `json:"products" yaml:"products"`
}

type fileProduct struct {
	Product `yaml:",inline"`
	Amount  string `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// Load reads a catalog from a .json, .yaml or .yml file.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var file catalogFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &file)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q (want .json, .yaml or .yml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}

	return fromFile(file)
}

func fromFile(file catalogFile) (*Index, error) {
	if len(file.Products) == 0 {
		return nil, fmt.Errorf("catalog has no products")
	}

	products := make([]Product, 0, len(file.Products))
	for i, fp := range file.Products {
		p := fp.Product
		if p.ID == "" {
			return nil, fmt.Errorf("product %d: id is required", i)
		}
		if p.Title == "" {
			return nil, fmt.Errorf("product %q: title is required", p.ID)
		}
		if p.Price == 0 && fp.Amount != "" {
			p.Price = model.ParseCents(fp.Amount)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %q: negative price", p.ID)
		}
		products = append(products, p)
	}
	return New(products), nil
}
