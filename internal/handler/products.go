package handler

import (
	"encoding/json"
	"net/http"

	"rewardshub-backend/internal/server/authctx"
	"rewardshub-backend/internal/service"

	"github.com/go-chi/chi/v5"
)

// ProductHandler serves the employee catalog.
type ProductHandler struct {
	Products service.ProductService
}

func (h ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/user/products", h.list)
	r.Get("/user/products/sizes", h.sizes)
	r.Get("/user/products/colors", h.colors)
}

func (h ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	views, err := h.Products.ListFor(r.Context(), u.EmployeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": views})
}

func (h ProductHandler) sizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := h.Products.Sizes(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sizes": sizes})
}

func (h ProductHandler) colors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.Products.Colors(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"colors": colors})
}

// ProductAdminHandler serves catalog administration.
type ProductAdminHandler struct {
	Products service.ProductService
}

func (h ProductAdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/products", h.list)
	r.Post("/admin/products", h.create)
}

func (h ProductAdminHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(products))
	for _, p := range products {
		out = append(out, map[string]any{
			"productId":      p.ProductID,
			"title":          p.Title,
			"rewardPoints":   p.RewardPoints,
			"isCustomisable": p.IsCustomisable,
			"imageUrl":       p.ImageURL,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out})
}

func (h ProductAdminHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title          string `json:"title"`
		RewardPoints   int64  `json:"rewardPoints"`
		IsCustomisable bool   `json:"isCustomisable"`
		ImageURL       string `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	product, err := h.Products.Create(r.Context(), req.Title, req.RewardPoints, req.IsCustomisable, req.ImageURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"productId":      product.ProductID,
		"title":          product.Title,
		"rewardPoints":   product.RewardPoints,
		"isCustomisable": product.IsCustomisable,
		"imageUrl":       product.ImageURL,
	})
}
