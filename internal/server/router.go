package server

import (
	"net/http"
	"time"

	"rewardshub-backend/internal/config"
	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/handler"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	points handler.PointsHandler,
	orders handler.OrderHandler,
	ordersAdmin handler.OrderAdminHandler,
	cart handler.CartHandler,
	products handler.ProductHandler,
	productsAdmin handler.ProductAdminHandler,
	rewards handler.RewardHandler,
	rewardsHR handler.RewardHRHandler,
	jobs handler.JobHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		// employee-level (any authenticated role)
		pr.Group(func(ur chi.Router) {
			ur.Use(RequireRole(domain.RoleUser, domain.RoleHR, domain.RoleAdmin))
			points.RegisterRoutes(ur)
			orders.RegisterRoutes(ur)
			cart.RegisterRoutes(ur)
			products.RegisterRoutes(ur)
			rewards.RegisterRoutes(ur)
		})
		// HR-level (hr/admin)
		pr.Group(func(hr chi.Router) {
			hr.Use(RequireRole(domain.RoleHR, domain.RoleAdmin))
			rewardsHR.RegisterRoutes(hr)
			jobs.RegisterRoutes(hr)
		})
		// admin-level
		pr.Group(func(ar chi.Router) {
			ar.Use(RequireRole(domain.RoleAdmin))
			ordersAdmin.RegisterRoutes(ar)
			productsAdmin.RegisterRoutes(ar)
		})
	})

	return r
}
