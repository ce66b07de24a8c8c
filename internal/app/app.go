package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hr-portal/internal/config"
	"hr-portal/internal/csrf"
	"hr-portal/internal/database"
	"hr-portal/internal/handler"
	"hr-portal/internal/middleware"
	"hr-portal/internal/oauth"
	"hr-portal/internal/ratelimit"
	"hr-portal/internal/repository"
	"hr-portal/internal/router"
	"hr-portal/internal/service"
	"hr-portal/internal/token"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	leaveRepo := repository.NewLeaveRepository(pool)
	announcementRepo := repository.NewAnnouncementRepository(pool)
	slog.Info("database ready")

	var provider *oauth.Provider
	if cfg.OIDCEnabled() {
		provider, err = oauth.NewProvider(context.Background(),
			cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret, cfg.OIDCRedirectURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize oidc provider: %w", err)
		}
		slog.Info("provider session bridge enabled", "issuer", cfg.OIDCIssuer)
	}

	auditService := service.NewAuditService(auditRepo)
	codec := token.NewCodec(cfg.JWTSecret)
	loginLimiter := ratelimit.NewWindow(cfg.LoginRateLimit, cfg.LoginRateWindow)

	// The auth service takes the provider through an interface; a typed nil
	// *Provider must not end up in it.
	var authService *service.AuthService
	if provider != nil {
		authService = service.NewAuthService(codec, userRepo, sessionRepo, roleRepo, employeeRepo,
			auditService, loginLimiter, provider, cfg.SessionTTL, cfg.AllowPlaintext)
	} else {
		authService = service.NewAuthService(codec, userRepo, sessionRepo, roleRepo, employeeRepo,
			auditService, loginLimiter, nil, cfg.SessionTTL, cfg.AllowPlaintext)
	}
	sessionService := service.NewSessionService(sessionRepo, auditService)
	attendanceService := service.NewAttendanceService(attendanceRepo, auditService)
	leaveService := service.NewLeaveService(leaveRepo, auditService)
	announcementService := service.NewAnnouncementService(announcementRepo, auditService)
	employeeService := service.NewEmployeeService(employeeRepo, auditService)

	csrfManager := csrf.NewManager(int(cfg.CSRFTTL.Seconds()), cfg.CookieSecure)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService, csrfManager, cfg.CookieSecure),
		Session:      handler.NewSessionHandler(sessionService),
		Attendance:   handler.NewAttendanceHandler(attendanceService),
		Leave:        handler.NewLeaveHandler(leaveService),
		Announcement: handler.NewAnnouncementHandler(announcementService),
		Employee:     handler.NewEmployeeHandler(employeeService),
	}
	if provider != nil {
		handlers.OAuth = handler.NewOAuthHandler(provider, cfg.CookieSecure, int(cfg.SessionTTL.Seconds()))
	}

	appRouter := router.New(cfg, authMiddleware, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				db.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
