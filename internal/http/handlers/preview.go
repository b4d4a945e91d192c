package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type renderRequest struct {
	Size   string            `json:"size"`
	Values map[string]string `json:"values"`
}

type previewPage struct {
	Name  string `json:"name"`
	MIME  string `json:"mime"`
	Image string `json:"image"`
}

type previewResponse struct {
	Pages     []previewPage `json:"pages"`
	PageCount int           `json:"page_count"`
}

// GeneratePreview renders a proof and returns its pages base64-encoded, in
// page order.
func (a *App) GeneratePreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Size == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "size required")
		return
	}

	res, err := a.Service.GeneratePreview(r.Context(), id, req.Size, req.Values)
	if err != nil {
		a.serviceError(w, err)
		return
	}

	out := previewResponse{Pages: make([]previewPage, 0, len(res.Pages)), PageCount: len(res.Pages)}
	for _, p := range res.Pages {
		out.Pages = append(out.Pages, previewPage{
			Name:  p.Name,
			MIME:  p.MIME,
			Image: base64.StdEncoding.EncodeToString(p.Data),
		})
	}
	a.json(w, http.StatusOK, out)
}

// GenerateDocument renders the production PDF and streams it as a download.
func (a *App) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Size == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "size required")
		return
	}

	doc, err := a.Service.GenerateDocument(r.Context(), id, req.Size, req.Values)
	if err != nil {
		a.serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}
