package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type thumbnailResponse struct {
	URL      string `json:"url,omitempty"`
	MIME     string `json:"mime,omitempty"`
	Image    string `json:"image,omitempty"`
	CacheHit bool   `json:"cache_hit"`
	Durable  bool   `json:"durable"`
}

// GetThumbnail serves the product thumbnail: static URL, cached image or a
// freshly generated first preview page.
func (a *App) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := a.Service.Thumbnail(r.Context(), id)
	if err != nil {
		a.serviceError(w, err)
		return
	}
	out := thumbnailResponse{
		URL:      res.URL,
		MIME:     res.MIME,
		CacheHit: res.CacheHit,
		Durable:  res.Durable,
	}
	if len(res.Data) > 0 {
		out.Image = base64.StdEncoding.EncodeToString(res.Data)
	}
	a.json(w, http.StatusOK, out)
}

// InvalidateThumbnail drops the cached thumbnail so the next request
// regenerates it.
func (a *App) InvalidateThumbnail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Service.InvalidateThumbnail(r.Context(), id); err != nil {
		a.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
