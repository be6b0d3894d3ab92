package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"hrops/internal/domain/attendance"
	"hrops/internal/domain/audit"
	"hrops/internal/domain/auth"
	"hrops/internal/domain/calendar"
	"hrops/internal/domain/employee"
	"hrops/internal/domain/leave"
	"hrops/internal/domain/payroll"
	"hrops/internal/platform/config"
	"hrops/internal/platform/crypto"
	"hrops/internal/platform/db"
	"hrops/internal/platform/jobs"
	"hrops/internal/platform/metrics"
	"hrops/internal/transport/http/api"
	adminhandler "hrops/internal/transport/http/handlers/admin"
	attendancehandler "hrops/internal/transport/http/handlers/attendance"
	authhandler "hrops/internal/transport/http/handlers/auth"
	employeehandler "hrops/internal/transport/http/handlers/employee"
	leavehandler "hrops/internal/transport/http/handlers/leave"
	payrollhandler "hrops/internal/transport/http/handlers/payroll"
	settingshandler "hrops/internal/transport/http/handlers/settings"
	"hrops/internal/transport/http/middleware"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if err := db.Seed(ctx, pool, cfg); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	cryptoSvc, err := crypto.New(cfg.PayslipEncryptionKey)
	if err != nil {
		log.Fatalf("crypto init failed: %v", err)
	}

	collector := metrics.New()
	auditSvc := audit.New(pool)
	jobsSvc := jobs.New(pool, cfg.JobQueueSize)
	jobsSvc.Start(ctx)

	calendarStore := calendar.NewStore(pool)
	authStore := auth.NewStore(pool)
	employeeSvc := employee.NewService(employee.NewStore(pool))
	leaveSvc := leave.NewService(leave.NewStore(pool), calendarStore)
	attendanceSvc := attendance.NewService(attendance.NewStore(pool), calendarStore,
		attendance.Weights{WFH: cfg.WFHWeight, Permission: cfg.PermissionWeight})
	payrollSvc := payroll.NewService(payroll.NewStore(pool), employee.NewStore(pool), attendanceSvc,
		cryptoSvc, cfg.PayslipDir, cfg.SalaryFloor)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recover)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, cfg.JWTSecret).RegisterRoutes(r)
		employeehandler.NewHandler(employeeSvc, auditSvc).RegisterRoutes(r)
		leavehandler.NewHandler(leaveSvc, auditSvc, collector).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceSvc).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollSvc, auditSvc, jobsSvc, collector).RegisterRoutes(r)
		settingshandler.NewHandler(calendarStore, auditSvc).RegisterRoutes(r)
		adminhandler.NewHandler(auditSvc, jobsSvc).RegisterRoutes(r)
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
}
