// Package catalog holds the static product catalog: which brochure templates
// exist, which page sizes they come in and which template slots a customer
// may fill in. The catalog is loaded once at startup and never mutated.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed catalog.json
var defaultCatalog []byte

// PlanObjectType distinguishes how a customizable slot binds inside the
// vendor's template plan.
type PlanObjectType string

const (
	PlanObjectVariable PlanObjectType = "Variable"
	PlanObjectADOR     PlanObjectType = "ADOR"
)

// VariableKind enumerates the supported form field kinds.
type VariableKind string

const (
	VariableSelect VariableKind = "select"
	VariableText   VariableKind = "text"
)

// Option is one (value, label) pair of a select variable.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// PlanObjectRef binds a variable to a named slot in the template plan.
// Variables without a binding only drive size selection or the UI and are
// excluded from job customizations.
type PlanObjectRef struct {
	Name string         `json:"name"`
	Type PlanObjectType `json:"type"`
}

// Variable describes one customizable form field of a product.
type Variable struct {
	Name       string         `json:"name"`
	Label      string         `json:"label"`
	Kind       VariableKind   `json:"kind"`
	PlanObject *PlanObjectRef `json:"plan_object,omitempty"`
	Required   bool           `json:"required"`
	Default    string         `json:"default"`
	Options    []Option       `json:"options,omitempty"`
}

// SizeOption maps a user-facing size name onto the vendor document that
// renders it.
type SizeOption struct {
	Name        string `json:"name"`
	DocumentRef string `json:"document_ref"`
	Label       string `json:"label"`
}

// Product is one orderable brochure template.
type Product struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CampaignRef string       `json:"campaign_ref"`
	PlanRef     string       `json:"plan_ref"`
	Thumbnail   string       `json:"thumbnail,omitempty"`
	Sizes       []SizeOption `json:"sizes"`
	Variables   []Variable   `json:"variables"`
}

// Catalog is the immutable product registry.
type Catalog struct {
	order    []string
	products map[string]Product
}

// Load reads the catalog from path, or the embedded default catalog when
// path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes and validates a JSON catalog document.
func Parse(data []byte) (*Catalog, error) {
	var list []Product
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	c := &Catalog{products: make(map[string]Product, len(list))}
	for _, p := range list {
		if err := validateProduct(p); err != nil {
			return nil, err
		}
		if _, dup := c.products[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %q", p.ID)
		}
		c.products[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

// Lookup returns the product for id. Absence is a lookup failure for the
// caller to translate, never a crash.
func (c *Catalog) Lookup(id string) (Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

// Products lists all products in catalog file order.
func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("catalog: product with empty id")
	}
	if len(p.Sizes) == 0 {
		return fmt.Errorf("catalog: product %q has no sizes", p.ID)
	}
	for _, s := range p.Sizes {
		if s.Name == "" || s.DocumentRef == "" {
			return fmt.Errorf("catalog: product %q has a size without name or document ref", p.ID)
		}
	}
	for _, v := range p.Variables {
		if v.Name == "" {
			return fmt.Errorf("catalog: product %q has a variable without a name", p.ID)
		}
		switch v.Kind {
		case VariableSelect:
			if len(v.Options) == 0 {
				return fmt.Errorf("catalog: product %q select variable %q has no options", p.ID, v.Name)
			}
		case VariableText:
		default:
			return fmt.Errorf("catalog: product %q variable %q has unknown kind %q", p.ID, v.Name, v.Kind)
		}
		if v.PlanObject != nil {
			switch v.PlanObject.Type {
			case PlanObjectVariable, PlanObjectADOR:
			default:
				return fmt.Errorf("catalog: product %q variable %q has unknown plan object type %q", p.ID, v.Name, v.PlanObject.Type)
			}
		}
	}
	return nil
}
