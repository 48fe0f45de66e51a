package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/service"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	Auth service.AuthService
}

func (h AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Post("/auth/refresh", h.refresh)
}

func (h AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID int64  `json:"employeeId"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		Location   string `json:"location"`
		Password   string `json:"password"`
		Role       string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.EmployeeID <= 0 || req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "employeeId, name, email and password are required")
		return
	}
	res, err := h.Auth.Register(r.Context(), service.RegisterInput{
		EmployeeID: req.EmployeeID,
		Name:       req.Name,
		Email:      req.Email,
		Location:   req.Location,
		Password:   req.Password,
		Role:       domain.EmployeeRole(req.Role),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authPayload(res))
}

func (h AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	res, err := h.Auth.Login(r.Context(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authPayload(res))
}

func (h AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	res, err := h.Auth.Refresh(r.Context(), service.RefreshInput{RefreshToken: req.RefreshToken})
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authPayload(res))
}

func authPayload(res *service.AuthResult) map[string]any {
	return map[string]any{
		"accessToken":  res.AccessToken,
		"refreshToken": res.RefreshToken,
		"expiresAt":    res.ExpiresAt,
		"employee": map[string]any{
			"employeeId": res.Employee.EmployeeID,
			"name":       res.Employee.Name,
			"email":      res.Employee.Email,
			"location":   res.Employee.Location,
			"role":       res.Employee.Role,
		},
	}
}
