package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/server/authctx"
	"rewardshub-backend/internal/service"

	"github.com/go-chi/chi/v5"
)

// JobHandler serves the HR expiration job slot.
type JobHandler struct {
	Expiration service.ExpirationService
	Loc        *time.Location
}

func (h JobHandler) RegisterRoutes(r chi.Router) {
	r.Post("/hr/jobs", h.schedule)
	r.Get("/hr/jobs", h.active)
	r.Delete("/hr/jobs", h.cancel)
}

func (h JobHandler) schedule(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	var req struct {
		ExpirationDate string `json:"expirationDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	loc := h.Loc
	if loc == nil {
		loc = time.UTC
	}
	date, err := time.ParseInLocation(domain.DateLayout, req.ExpirationDate, loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "expirationDate must look like "+domain.DateLayout)
		return
	}

	job, err := h.Expiration.Schedule(r.Context(), u.Actor(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, jobView(job))
}

func (h JobHandler) active(w http.ResponseWriter, r *http.Request) {
	job, err := h.Expiration.Active(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobView(job))
}

func (h JobHandler) cancel(w http.ResponseWriter, r *http.Request) {
	u := authctx.FromContext(r.Context())
	if err := h.Expiration.Cancel(r.Context(), u.Actor()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func jobView(job *domain.ExpirationJob) map[string]any {
	return map[string]any{
		"jobId":          job.JobID,
		"expirationDate": job.ExpirationDate.Format(domain.DateLayout),
		"addedBy":        job.AddedBy,
	}
}
