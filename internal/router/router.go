package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hr-portal/internal/config"
	"hr-portal/internal/handler"
	"hr-portal/internal/middleware"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	OAuth        *handler.OAuthHandler // nil when the provider bridge is off
	Session      *handler.SessionHandler
	Attendance   *handler.AttendanceHandler
	Leave        *handler.LeaveHandler
	Announcement *handler.AnnouncementHandler
	Employee     *handler.EmployeeHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(authMiddleware.Resolve)

		api.Route("/auth", func(auth chi.Router) {
			auth.Get("/csrf", h.Auth.Csrf)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/logout", h.Auth.Logout)
			auth.Get("/me", h.Auth.Me)
			if h.OAuth != nil {
				auth.Get("/provider/login", h.OAuth.Start)
				auth.Get("/provider/callback", h.OAuth.Callback)
			}
		})

		requireSession := authMiddleware.RequireSession

		api.With(requireSession, authMiddleware.RequireAnyPermission("ATTENDANCE_LOG")).
			Get("/attendance/today", h.Attendance.Today)
		api.With(requireSession, authMiddleware.RequireAnyPermission("ATTENDANCE_LOG")).
			Post("/attendance", h.Attendance.Log)

		api.With(requireSession, authMiddleware.RequireAnyPermission("LEAVE_REQUEST")).
			Post("/leaves", h.Leave.Submit)
		api.With(requireSession, authMiddleware.RequireAnyPermission("LEAVE_REQUEST")).
			Get("/leaves", h.Leave.ListMine)
		api.With(requireSession, authMiddleware.RequireAnyPermission("LEAVE_APPROVE")).
			Get("/leaves/pending", h.Leave.ListPending)
		api.With(requireSession, authMiddleware.RequireAnyPermission("LEAVE_APPROVE")).
			Post("/leaves/{id}/decide", h.Leave.Decide)

		api.With(requireSession).Get("/announcements", h.Announcement.List)
		api.With(requireSession, authMiddleware.RequireAnyPermission("ANN_MANAGE")).
			Post("/announcements", h.Announcement.Create)

		api.With(requireSession, authMiddleware.RequireAnyPermission("EMP_VIEW", "EMP_EDIT")).
			Get("/employees", h.Employee.List)
		api.With(requireSession, authMiddleware.RequireAnyPermission("EMP_EDIT")).
			Patch("/employees/{id}/status", h.Employee.UpdateStatus)

		api.Route("/admin/sessions", func(admin chi.Router) {
			admin.Use(requireSession, authMiddleware.RequireAnyPermission("USER_CREATE", "EMP_EDIT"))
			admin.Get("/", h.Session.List)
			admin.Post("/{jti}/revoke", h.Session.Revoke)
		})
	})

	return r
}
