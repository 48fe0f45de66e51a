package handler

import (
	"encoding/json"
	"net/http"

	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/server/authctx"
	"rewardshub-backend/internal/service"

	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	Cart service.CartService
}

func (h CartHandler) RegisterRoutes(r chi.Router) {
	r.Post("/user/cart", h.upsert)
	r.Get("/user/cart", h.get)
	r.Delete("/user/cart/{id}", h.delete)
	r.Get("/user/checkout-items", h.checkoutItems)
}

func (h CartHandler) upsert(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	var req struct {
		ProductID int64  `json:"productId"`
		Quantity  int    `json:"quantity"`
		Size      string `json:"size"`
		Color     string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	err := h.Cart.Upsert(r.Context(), u.EmployeeID, req.ProductID, req.Quantity,
		domain.Customisation{Size: req.Size, Color: req.Color})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h CartHandler) get(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	items, err := h.Cart.Items(r.Context(), u.EmployeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": cartViews(items)})
}

func (h CartHandler) delete(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Cart.DeleteLine(r.Context(), u.EmployeeID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h CartHandler) checkoutItems(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	items, err := h.Cart.Items(r.Context(), u.EmployeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var total int64
	for _, it := range items {
		total += it.Product.RewardPoints * int64(it.Line.Quantity)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":       cartViews(items),
		"totalPoints": total,
	})
}

func cartViews(items []service.CartItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		view := map[string]any{
			"id":           it.Line.ID,
			"productId":    it.Product.ProductID,
			"title":        it.Product.Title,
			"rewardPoints": it.Product.RewardPoints,
			"quantity":     it.Line.Quantity,
			"imageUrl":     it.Product.ImageURL,
		}
		if !it.Line.Customisation.IsZero() {
			view["customisation"] = map[string]string{
				"size":  it.Line.Customisation.Size,
				"color": it.Line.Customisation.Color,
			}
		}
		out = append(out, view)
	}
	return out
}
