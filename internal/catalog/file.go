package catalog

import (
	"os"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Products []Product `yaml:"products"`
}

// LoadFile reads a YAML catalog of the form
//
//	products:
//	  - code: VS5
//	    name: Vegemite Scroll
//	    packs:
//	      - {size: 3, price: 6.99}
func LoadFile(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) ([]Product, error) {
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse catalog")
	}
	if len(doc.Products) == 0 {
		return nil, errors.Wrap(ErrInvalidProduct, "catalog has no products")
	}
	return doc.Products, nil
}
