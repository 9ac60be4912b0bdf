package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/justinas/alice"

	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/app"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/auth"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/handlers"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/internal/observability"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/middleware"
	"github.com/Codethemind/EduTrackr-ServerSideClean-sub001/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	cfg := deps.Config

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
	}
	r.Use(observability.Tracing(deps.TracerProvider))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(deps.DatabaseChecker(), deps.RedisClient(), deps.Logger)
	assignments := handlers.NewAssignmentHandler(deps.AssignmentService, deps.Logger)
	submissions := handlers.NewSubmissionHandler(deps.SubmissionService, cfg.Uploads.MaxBytes, deps.Logger)
	rtcTokens := handlers.NewRTCHandler(deps.RTCIssuer, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	authenticated := alice.New(deps.AuthMiddleware.Authenticate)
	staff := authenticated.Append(deps.AuthMiddleware.RequireRoles(auth.RoleTeacher, auth.RoleAdmin))
	students := authenticated.Append(deps.AuthMiddleware.RequireRoles(auth.RoleStudent))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/assignments", func(r chi.Router) {
			r.Method(http.MethodGet, "/", authenticated.ThenFunc(assignments.HandleList))
			r.Method(http.MethodPost, "/", staff.ThenFunc(assignments.HandleCreate))
			r.Method(http.MethodGet, "/{id}", authenticated.ThenFunc(assignments.HandleGet))

			r.Method(http.MethodPost, "/{id}/submissions", students.ThenFunc(submissions.HandleCreate))
			r.Method(http.MethodGet, "/{id}/submissions", staff.ThenFunc(submissions.HandleList))
		})

		r.Method(http.MethodPost, "/rtc/token", authenticated.ThenFunc(rtcTokens.HandleToken))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	return r
}
