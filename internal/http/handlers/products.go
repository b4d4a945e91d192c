package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"server/internal/catalog"
)

type sizeResponse struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type optionResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type variableResponse struct {
	Name     string           `json:"name"`
	Label    string           `json:"label"`
	Kind     string           `json:"kind"`
	Required bool             `json:"required"`
	Default  string           `json:"default"`
	Options  []optionResponse `json:"options,omitempty"`
}

type productResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Sizes       []sizeResponse     `json:"sizes"`
	Variables   []variableResponse `json:"variables"`
}

// ListProducts returns the catalog shaped for the customization form. Plan
// references stay server-side.
func (a *App) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := a.Catalog.Products()
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	a.json(w, http.StatusOK, map[string]any{"products": out})
}

func (a *App) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := a.Catalog.Lookup(id)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown product")
		return
	}
	a.json(w, http.StatusOK, toProductResponse(p))
}

func toProductResponse(p catalog.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Sizes:       make([]sizeResponse, 0, len(p.Sizes)),
		Variables:   make([]variableResponse, 0, len(p.Variables)),
	}
	for _, s := range p.Sizes {
		resp.Sizes = append(resp.Sizes, sizeResponse{Name: s.Name, Label: s.Label})
	}
	for _, v := range p.Variables {
		vr := variableResponse{
			Name:     v.Name,
			Label:    v.Label,
			Kind:     string(v.Kind),
			Required: v.Required,
			Default:  v.Default,
		}
		for _, o := range v.Options {
			vr.Options = append(vr.Options, optionResponse{Value: o.Value, Label: o.Label})
		}
		resp.Variables = append(resp.Variables, vr)
	}
	return resp
}
