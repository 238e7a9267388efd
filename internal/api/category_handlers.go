package api

import (
	"net/http"
	"strings"

	"github.com/example/blackshot-store/internal/domain/banner"
	"github.com/example/blackshot-store/internal/domain/category"
	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/media"
)

// CategoryHandlers handles categories and homepage banners
type CategoryHandlers struct {
	categories *category.Service
	banners    *banner.Service
	images     *media.Converter
}

// NewCategoryHandlers creates a new CategoryHandlers instance
func NewCategoryHandlers(categories *category.Service, banners *banner.Service, images *media.Converter) *CategoryHandlers {
	if images == nil {
		images = media.NewConverter(media.Config{})
	}
	return &CategoryHandlers{
		categories: categories,
		banners:    banners,
		images:     images,
	}
}

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// ListCategories returns all categories
func (h *CategoryHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// CreateCategory adds a category from JSON or a multipart form with an image
func (h *CategoryHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if isMultipart(r) {
		if err := parseForm(r); err != nil {
			respondJSONError(w, "Invalid form", http.StatusBadRequest)
			return
		}
		req.Name = r.FormValue("name")
		image, err := uploadedImage(r, h.images, "image")
		if err != nil {
			respondErr(w, r, err)
			return
		}
		req.Image = image
	} else if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.categories.Add(r.Context(), req.Name, req.Image)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// DeleteCategory removes a category by id or by name
func (h *CategoryHandlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), r.PathValue("key")); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBanners returns all banners, or one section with ?section=
func (h *CategoryHandlers) ListBanners(w http.ResponseWriter, r *http.Request) {
	var (
		banners []banner.Banner
		err     error
	)
	if raw := r.URL.Query().Get("section"); raw != "" {
		section, perr := banner.ParseSection(raw)
		if perr != nil {
			respondErr(w, r, perr)
			return
		}
		banners, err = h.banners.ListBySection(r.Context(), section)
	} else {
		banners, err = h.banners.List(r.Context())
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, banners)
}

// CreateBanner expects a multipart form with image, link and section. JSON with
// an image URL is accepted too.
func (h *CategoryHandlers) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image   string `json:"image"`
		Link    string `json:"link"`
		Section string `json:"section"`
	}
	if isMultipart(r) {
		if err := parseForm(r); err != nil {
			respondJSONError(w, "Invalid form", http.StatusBadRequest)
			return
		}
		req.Link = r.FormValue("link")
		req.Section = r.FormValue("section")
		image, err := uploadedImage(r, h.images, "image")
		if err != nil {
			respondErr(w, r, err)
			return
		}
		req.Image = image
	} else if !decodeJSON(w, r, &req) {
		return
	}

	section, err := banner.ParseSection(strings.TrimSpace(req.Section))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	created, err := h.banners.Add(r.Context(), req.Image, req.Link, section)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *CategoryHandlers) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	if err := h.banners.Delete(r.Context(), ident.Parse(r.PathValue("id"))); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
