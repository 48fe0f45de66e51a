package handler

import (
	"encoding/json"
	"net/http"

	"rewardshub-backend/internal/server/authctx"
	"rewardshub-backend/internal/service"
	"rewardshub-backend/internal/sheet"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes caps the HR workbook upload size.
const maxUploadBytes = 8 << 20

// RewardHandler serves the employee-facing reward surface.
type RewardHandler struct {
	Rewards service.RewardService
}

func (h RewardHandler) RegisterRoutes(r chi.Router) {
	r.Post("/user/rewards/claim", h.claim)
	r.Get("/user/rewards", h.list)
}

func (h RewardHandler) claim(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	var req struct {
		CouponCode string `json:"couponCode"`
		SecretCode string `json:"secretCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Rewards.Redeem(r.Context(), req.CouponCode, req.SecretCode, u.EmployeeID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "redeemed"})
}

func (h RewardHandler) list(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sortAsc := r.URL.Query().Get("sort") == "asc"

	views, err := h.Rewards.RewardsForEmployee(r.Context(), u.EmployeeID, sortAsc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rewards":    paginate(views, page),
		"totalCount": len(views),
	})
}

// RewardHRHandler serves the HR reward surface: upload validation, coupon
// issuance and the claimed-reward listings.
type RewardHRHandler struct {
	Rewards service.RewardService
}

func (h RewardHRHandler) RegisterRoutes(r chi.Router) {
	r.Post("/hr/rewards/upload", h.upload)
	r.Post("/hr/rewards", h.issue)
	r.Get("/hr/rewards", h.claimed)
	r.Post("/hr/rewards/filter", h.filtered)
	r.Get("/hr/rewards/categories", h.categories)
}

func (h RewardHRHandler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	rows, err := sheet.ParseRewards(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read workbook")
		return
	}
	validated, err := h.Rewards.ValidateUpload(r.Context(), rows)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	for _, row := range validated {
		if row.IsErroneous {
			status = http.StatusMultiStatus
			break
		}
	}
	writeJSON(w, status, map[string]any{"rows": validated})
}

func (h RewardHRHandler) issue(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	var req struct {
		Rewards []struct {
			Rewardee     int64  `json:"rewardee"`
			Category     string `json:"rewardCategory"`
			Description  string `json:"description"`
			RewardPoints int64  `json:"rewardPoints"`
		} `json:"rewards"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	inputs := make([]service.IssueInput, 0, len(req.Rewards))
	for _, rw := range req.Rewards {
		inputs = append(inputs, service.IssueInput{
			RewardeeEmployeeID: rw.Rewardee,
			Category:           rw.Category,
			Description:        rw.Description,
			RewardPoints:       rw.RewardPoints,
		})
	}

	issued, err := h.Rewards.Issue(r.Context(), u.Actor(), inputs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(issued))
	for _, c := range issued {
		out = append(out, map[string]any{
			"rewardId":       c.RewardID,
			"rewardee":       c.Rewardee.EmployeeID,
			"rewardCategory": c.Category,
			"rewardPoints":   c.Points,
		})
	}
	writeJSON(w, http.StatusCreated, map[string]any{"issued": out})
}

func (h RewardHRHandler) claimed(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sortAsc := r.URL.Query().Get("sort") == "asc"

	views, err := h.Rewards.ClaimedRewards(r.Context(), service.ClaimedFilters{}, sortAsc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rewards":    paginate(views, page),
		"totalCount": len(views),
	})
}

func (h RewardHRHandler) filtered(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sortAsc := r.URL.Query().Get("sort") == "asc"

	var req struct {
		Rewardee  string `json:"rewardee"`
		AddedBy   string `json:"addedBy"`
		Category  string `json:"rewardCategory"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	views, err := h.Rewards.ClaimedRewards(r.Context(), service.ClaimedFilters{
		Rewardee:  req.Rewardee,
		AddedBy:   req.AddedBy,
		Category:  req.Category,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}, sortAsc)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rewards":    paginate(views, page),
		"totalCount": len(views),
	})
}

func (h RewardHRHandler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Rewards.Categories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		out = append(out, map[string]any{"id": c.ID, "name": c.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}
