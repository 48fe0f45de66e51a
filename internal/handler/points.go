package handler

import (
	"net/http"

	"rewardshub-backend/internal/server/authctx"
	"rewardshub-backend/internal/service"

	"github.com/go-chi/chi/v5"
)

// PointsHandler serves the employee's wallet and transaction history.
type PointsHandler struct {
	Ledger service.LedgerService
}

func (h PointsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/user/points", h.balance)
	r.Get("/user/transactions", h.transactions)
}

func (h PointsHandler) balance(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	b, err := h.Ledger.GetBalance(r.Context(), u.EmployeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":     b.Total,
		"redeemed":  b.Redeemed,
		"available": b.Available,
	})
}

func (h PointsHandler) transactions(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sortAsc := r.URL.Query().Get("sort") == "asc"

	views, err := h.Ledger.Transactions(r.Context(), u.EmployeeID, sortAsc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": paginate(views, page),
		"totalCount":   len(views),
	})
}
