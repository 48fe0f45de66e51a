package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rewardshub-backend/internal/config"
	"rewardshub-backend/internal/db"
	"rewardshub-backend/internal/handler"
	"rewardshub-backend/internal/mailer"
	"rewardshub-backend/internal/ports"
	"rewardshub-backend/internal/repository"
	"rewardshub-backend/internal/server"
	"rewardshub-backend/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.Migrate(); err != nil {
		logger.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		logger.Warn("unknown scheduler timezone, using UTC", "timezone", cfg.SchedulerTimezone)
		loc = time.UTC
	}

	var notifier ports.Notifier
	if cfg.SMTPHost != "" {
		notifier = mailer.NewSMTP(cfg)
	}

	// repositories
	sequenceRepo := repository.SequenceRepository{DB: pg}
	pointsRepo := repository.PointsRepository{DB: pg}
	orderRepo := repository.OrderRepository{DB: pg}
	cartRepo := repository.CartRepository{DB: pg}
	rewardRepo := repository.RewardRepository{DB: pg}
	jobRepo := repository.JobRepository{DB: pg}
	productRepo := repository.ProductRepository{DB: pg}
	employeeRepo := repository.EmployeeRepository{DB: pg}

	// services
	authSvc := service.AuthService{Config: cfg, Employees: employeeRepo}
	ledgerSvc := service.LedgerService{Ledger: pointsRepo}
	orderSvc := service.OrderService{
		Orders:    orderRepo,
		Ledger:    pointsRepo,
		Catalog:   productRepo,
		Cart:      cartRepo,
		Employees: employeeRepo,
		Sequences: sequenceRepo,
		Notifier:  notifier,
		Loc:       loc,
	}
	cartSvc := service.CartService{Cart: cartRepo, Catalog: productRepo}
	productSvc := service.ProductService{Catalog: productRepo, Orders: orderRepo}
	rewardSvc := service.RewardService{
		Rewards:   rewardRepo,
		Ledger:    pointsRepo,
		Employees: employeeRepo,
		Notifier:  notifier,
		Loc:       loc,
	}
	expirationSvc := service.ExpirationService{
		Jobs:      jobRepo,
		Rewards:   rewardRepo,
		Ledger:    pointsRepo,
		Employees: employeeRepo,
		Loc:       loc,
	}

	// A job whose date lapsed while the process was down is removed, not fired.
	if err := expirationSvc.SweepPastDue(ctx); err != nil {
		logger.Error("past-due job sweep failed", "err", err)
	}
	if cfg.SchedulerEnabled {
		go expirationSvc.Run(ctx, cfg.TickInterval)
	}

	router := server.NewRouter(cfg, logger,
		handler.HealthHandler{DB: pg},
		handler.AuthHandler{Auth: authSvc},
		handler.PointsHandler{Ledger: ledgerSvc},
		handler.OrderHandler{Orders: orderSvc},
		handler.OrderAdminHandler{Orders: orderSvc},
		handler.CartHandler{Cart: cartSvc},
		handler.ProductHandler{Products: productSvc},
		handler.ProductAdminHandler{Products: productSvc},
		handler.RewardHandler{Rewards: rewardSvc},
		handler.RewardHRHandler{Rewards: rewardSvc},
		handler.JobHandler{Expiration: expirationSvc, Loc: loc},
	)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
