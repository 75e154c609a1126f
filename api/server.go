/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. Metrics:    Prometheus request counters by route pattern
  5. CORS:       Cross-origin requests for the frontend
  6. RateLimit:  Global requests per second (ulule/limiter, in memory)

ROUTE GROUPS:
  /api/departments, employees, occurrences, training, costs    HR
  /api/surveys/*, /api/survey-questions/*                      Climate
  /api/disc/*                                                  DISC
  /api/strategy/*                                              Strategy
  /api/risks/*                                                 Risk matrix
  /api/documents/*                                             ISO documents
  /api/questionnaires/*                                        Wizards
  /api/demo/*                                                  Demo datasets
  /api/admin/*                                                 Admin operations
  /metrics, /healthz                                           Operations

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ulule/limiter/v3"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// DefaultCORSOrigins are the local front-end dev servers.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// RouterOptions configures the outer middleware.
type RouterOptions struct {
	CORSOrigins []string
	// RateLimitRPS caps requests per second per client IP. Zero disables it.
	RateLimitRPS int64
	// Scheduler, when set, exposes POST /api/admin/review-check.
	Scheduler *ReviewScheduler
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = DefaultCORSOrigins
	}
	// Credentials are never shared with a wildcard origin.
	credentials := !slices.Contains(origins, "*")

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: credentials,
	}))
	if opts.RateLimitRPS > 0 {
		rate := limiter.Rate{Period: time.Second, Limit: opts.RateLimitRPS}
		r.Use(limiterhttp.NewMiddleware(limiter.New(memory.NewStore(), rate)).Handler)
	}

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", h.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/navigation", h.GetNavigation)
		r.Get("/activity", h.ListActivity)

		// HR
		r.Route("/departments", func(r chi.Router) {
			res := h.departments()
			r.Get("/", h.ListDepartments)
			r.Post("/", res.Create(h))
			r.Get("/{id}", res.Get(h))
			r.Put("/{id}", res.Update(h))
			r.Delete("/{id}", res.Delete(h))
			r.Get("/{id}/headcount", h.GetHeadcount)
		})
		r.Route("/employees", func(r chi.Router) {
			res := h.employees()
			r.Get("/", h.ListEmployees)
			r.Post("/", res.Create(h))
			r.Post("/import", h.ImportEmployees)
			r.Get("/export", h.ExportEmployees)
			r.Get("/{id}", res.Get(h))
			r.Put("/{id}", res.Update(h))
			r.Delete("/{id}", res.Delete(h))
		})
		r.Route("/occurrences", func(r chi.Router) {
			res := h.occurrences()
			r.Get("/", h.ListOccurrences)
			r.Post("/", res.Create(h))
			r.Get("/stats", h.GetOccurrenceStats)
			r.Get("/{id}", res.Get(h))
			r.Put("/{id}", res.Update(h))
			r.Delete("/{id}", res.Delete(h))
		})
		r.Route("/training", func(r chi.Router) {
			res := h.training()
			r.Get("/", h.ListTraining)
			r.Post("/", res.Create(h))
			r.Get("/stats", h.GetTrainingStats)
			r.Get("/{id}", res.Get(h))
			r.Put("/{id}", res.Update(h))
			r.Delete("/{id}", res.Delete(h))
		})
		r.Route("/costs", func(r chi.Router) {
			res := h.costs()
			r.Get("/", h.ListCosts)
			r.Post("/", res.Create(h))
			r.Get("/summary", h.GetCostSummary)
			r.Get("/{id}", res.Get(h))
			r.Put("/{id}", res.Update(h))
			r.Delete("/{id}", res.Delete(h))
		})

		// Climate surveys
		r.Route("/surveys", func(r chi.Router) {
			res := h.surveys()
			r.Get("/", h.ListSurveys)
			r.Post("/", res.Create(h))
			r.Get("/{id}", res.Get(h))
			r.Put("/{id}", res.Update(h))
			r.Delete("/{id}", res.Delete(h))
			r.Get("/{id}/questions", h.ListSurveyQuestions)
			r.Post("/{id}/questions", h.AddSurveyQuestion)
			r.Get("/{id}/responses", h.ListResponses)
			r.Post("/{id}/responses", h.SubmitResponse)
			r.Get("/{id}/summary", h.GetSurveySummary)
		})
		r.Route("/survey-questions", func(r chi.Router) {
			res := h.questions()
			r.Get("/", h.ListQuestions)
			r.Get("/{id}", res.Get(h))
			r.Put("/{id}", res.Update(h))
			r.Delete("/{id}", res.Delete(h))
		})

		// DISC
		r.Route("/disc", func(r chi.Router) {
			res := h.assessments()
			r.Get("/questions", h.GetDiscQuestions)
			r.Get("/stats", h.GetDiscStats)
			r.Get("/assessments", h.ListAssessments)
			r.Post("/assessments", res.Create(h))
			r.Get("/assessments/{id}", res.Get(h))
			r.Put("/assessments/{id}", res.Update(h))
			r.Delete("/assessments/{id}", res.Delete(h))
		})

		// Strategy
		r.Route("/strategy", func(r chi.Router) {
			res := h.indicators()
			r.Get("/identity", h.GetIdentity)
			r.Put("/identity", h.PutIdentity)
			r.Delete("/identity", h.DeleteIdentity)
			r.Post("/identity/generate", h.GenerateIdentity)
			r.Get("/indicators", h.ListIndicators)
			r.Post("/indicators", res.Create(h))
			r.Post("/indicators/generate", h.GenerateIndicators)
			r.Get("/indicators/{id}", res.Get(h))
			r.Put("/indicators/{id}", res.Update(h))
			r.Delete("/indicators/{id}", res.Delete(h))
		})

		// Risks
		r.Route("/risks", func(r chi.Router) {
			res := h.risks()
			r.Get("/", h.ListRisks)
			r.Post("/", res.Create(h))
			r.Get("/matrix", h.GetRiskMatrix)
			r.Get("/matrix/hit", h.HitRiskMatrix)
			r.Get("/summary", h.GetRiskSummary)
			r.Get("/{id}", res.Get(h))
			r.Put("/{id}", res.Update(h))
			r.Delete("/{id}", res.Delete(h))
		})

		// ISO documents
		r.Route("/documents", func(r chi.Router) {
			res := h.documents()
			r.Get("/", h.ListDocuments)
			r.Post("/", res.Create(h))
			r.Get("/review-due", h.ListDocumentsDue)
			r.Get("/summary", h.GetDocumentSummary)
			r.Get("/{id}", res.Get(h))
			r.Put("/{id}", res.Update(h))
			r.Delete("/{id}", h.DeleteDocument)
			r.Post("/{id}/status", h.SetDocumentStatus)
			r.Put("/{id}/status", h.SetDocumentStatus)
			r.Post("/{id}/attachment", h.UploadAttachment)
			r.Get("/{id}/attachment", h.DownloadAttachment)
		})

		// Questionnaire wizards
		r.Route("/questionnaires", func(r chi.Router) {
			r.Get("/sessions", h.ListSessions)
			r.Get("/sessions/{id}", h.GetSession)
			r.Delete("/sessions/{id}", h.DeleteSession)
			r.Post("/sessions/{id}/answers", h.AnswerSession)
			r.Post("/sessions/{id}/next", h.NextQuestion)
			r.Post("/sessions/{id}/previous", h.PreviousQuestion)
			r.Post("/sessions/{id}/goto", h.GoToQuestion)
			r.Post("/sessions/{id}/complete", h.CompleteSession)
			r.Post("/{kind}/sessions", h.CreateSession)
		})

		// Demo datasets
		r.Route("/demo", func(r chi.Router) {
			r.Get("/datasets", h.ListDatasets)
			r.Get("/current", h.GetCurrentDataset)
			r.Post("/load", h.LoadDataset)
			r.Post("/reset", h.ResetDemo)
		})

		// Admin routes
		if opts.Scheduler != nil {
			r.Post("/admin/review-check", opts.Scheduler.TriggerReviewCheck)
		}

		r.Post("/reset", h.ResetDatabase)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found", nil)
	})

	return r
}
