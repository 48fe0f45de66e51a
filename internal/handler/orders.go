package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"
	"rewardshub-backend/internal/server/authctx"
	"rewardshub-backend/internal/service"

	"github.com/go-chi/chi/v5"
)

// OrderHandler serves the employee-facing order surface.
type OrderHandler struct {
	Orders service.OrderService
}

func (h OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/user/orders", h.place)
	r.Get("/user/orders", h.list)
	r.Put("/user/orders/cancel", h.cancel)
}

func (h OrderHandler) place(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	var req struct {
		Items []struct {
			ProductID int64  `json:"productId"`
			Quantity  int    `json:"quantity"`
			Size      string `json:"size"`
			Color     string `json:"color"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.OrderItemInput{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			Customisation: domain.Customisation{Size: it.Size, Color: it.Color},
		})
	}

	placed, err := h.Orders.PlaceOrder(r.Context(), u.Actor(), items)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(placed))
	for _, o := range placed {
		out = append(out, map[string]any{
			"orderId":       o.OrderID,
			"productId":     o.ProductID,
			"quantity":      o.Quantity,
			"currentStatus": o.CurrentStatus,
		})
	}
	writeJSON(w, http.StatusCreated, map[string]any{"orders": out})
}

func (h OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var transactionID *int64
	if raw := r.URL.Query().Get("transactionId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "transactionId must be an integer")
			return
		}
		transactionID = &id
	}

	orders, err := h.Orders.OrdersForEmployee(r.Context(), u.EmployeeID, transactionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders":     orderViews(paginate(orders, page)),
		"totalCount": len(orders),
	})
}

func (h OrderHandler) cancel(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	var req struct {
		OrderID int64 `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Orders.CancelOrder(r.Context(), u.Actor(), req.OrderID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orderId": req.OrderID, "status": domain.StatusCancelled})
}

// OrderAdminHandler serves the admin order surface.
type OrderAdminHandler struct {
	Orders service.OrderService
}

func (h OrderAdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/orders", h.list)
	r.Put("/admin/orders/status", h.changeStatus)
	r.Get("/admin/orders/status-count", h.statusCounts)
}

func (h OrderAdminHandler) list(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	var employeeID *int64
	if raw := q.Get("employeeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "employeeId must be an integer")
			return
		}
		employeeID = &id
	}

	orders, err := h.Orders.AdminOrders(r.Context(), employeeID, q["status"], q["location"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orders":     orderViews(paginate(orders, page)),
		"totalCount": len(orders),
	})
}

func (h OrderAdminHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	var req struct {
		OrderID int64   `json:"orderId"`
		Status  string  `json:"status"`
		Reason  *string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	if status == domain.StatusRejected && (req.Reason == nil || *req.Reason == "") {
		writeError(w, http.StatusBadRequest, "reason is required when rejecting")
		return
	}
	if err := h.Orders.ChangeStatus(r.Context(), u.Actor(), req.OrderID, status, req.Reason); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orderId": req.OrderID, "changedTo": status})
}

func (h OrderAdminHandler) statusCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Orders.StatusCounts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func orderViews(orders []ports.OrderDetails) []map[string]any {
	out := make([]map[string]any, 0, len(orders))
	for _, d := range orders {
		history := make([]map[string]any, 0, len(d.History))
		for _, e := range d.History {
			entry := map[string]any{
				"by":     e.ActorName,
				"status": e.Status,
				"time":   e.ChangedAt,
			}
			if e.Reason != nil {
				entry["reason"] = *e.Reason
			}
			history = append(history, entry)
		}
		view := map[string]any{
			"orderId":       d.Order.OrderID,
			"employeeId":    d.Order.EmployeeID,
			"employeeName":  d.Employee.Name,
			"location":      d.Employee.Location,
			"product":       d.Product.Title,
			"rewardPoints":  d.Product.RewardPoints,
			"quantity":      d.Order.Quantity,
			"currentStatus": d.Order.CurrentStatus,
			"history":       history,
		}
		if !d.Order.Customisation.IsZero() {
			view["customisation"] = map[string]string{
				"size":  d.Order.Customisation.Size,
				"color": d.Order.Customisation.Color,
			}
		}
		out = append(out, view)
	}
	return out
}
