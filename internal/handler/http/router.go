package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/ozziework/contracts-backend-go/internal/handler/http/middleware"
	"github.com/ozziework/contracts-backend-go/internal/pkg/jwt"
)

func NewRouter(
	logger *slog.Logger,
	frontendURL string,
	jwtService jwt.Service,
	offerHandler OfferHandler,
	timesheetHandler TimesheetHandler,
	payslipHandler PayslipHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// SSE stream authenticates with its own short-lived token
		r.Get("/notifications/stream", notificationHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/applications/{applicationID}", func(r chi.Router) {
				r.Route("/offer", func(r chi.Router) {
					r.Post("/", offerHandler.CreateOrUpdate)
					r.Get("/", offerHandler.Get)
					r.Post("/respond", offerHandler.Respond)
					r.Post("/cancel", offerHandler.Cancel)
				})

				r.Route("/timesheet", func(r chi.Router) {
					r.Put("/", timesheetHandler.Upsert)
					r.Get("/", timesheetHandler.Get)
					r.Post("/submit", timesheetHandler.Submit)
					r.Post("/approve", timesheetHandler.Approve)
				})

				r.Route("/payslip", func(r chi.Router) {
					r.Post("/", payslipHandler.RunPayroll)
					r.Get("/", payslipHandler.Get)
					r.Get("/aba", payslipHandler.DownloadABA)
					r.Post("/confirm-settlement", payslipHandler.ConfirmSettlement)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Post("/mark-read", notificationHandler.MarkAsRead)
				r.Post("/mark-all-read", notificationHandler.MarkAllAsRead)
				r.Get("/stream-token", notificationHandler.GetStreamToken)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}
