// Package api exposes the HTTP surface: household/member/tool CRUD,
// meal plan access and exports, synchronous plan generation, the
// asynchronous job API with its SSE event stream, the setup assistant,
// and recipe import.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ecofood-backend/internal/assistant"
	"ecofood-backend/internal/household"
	"ecofood-backend/internal/jobs"
	"ecofood-backend/internal/mealplan"
	"ecofood-backend/internal/metrics"
	"ecofood-backend/internal/planner"
	"ecofood-backend/internal/recipes"
)

// Server wires the HTTP handlers to the application services.
type Server struct {
	households *household.Repository
	plans      *mealplan.Repository
	registry   *jobs.Registry
	workflow   *planner.Workflow
	assistant  *assistant.Assistant
	importer   *recipes.Importer
	catalogue  *recipes.Catalogue
	metrics    *metrics.Store

	frontendOrigin string
	logger         *zap.Logger
	validate       *validator.Validate
}

// NewServer creates a Server. importer and metrics may be nil when the
// matching feature is not configured.
func NewServer(
	households *household.Repository,
	plans *mealplan.Repository,
	registry *jobs.Registry,
	workflow *planner.Workflow,
	assist *assistant.Assistant,
	importer *recipes.Importer,
	catalogue *recipes.Catalogue,
	metricsStore *metrics.Store,
	frontendOrigin string,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		households:     households,
		plans:          plans,
		registry:       registry,
		workflow:       workflow,
		assistant:      assist,
		importer:       importer,
		catalogue:      catalogue,
		metrics:        metricsStore,
		frontendOrigin: frontendOrigin,
		logger:         logger,
		validate:       validator.New(),
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.frontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Last-Event-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/households", func(r chi.Router) {
			r.Get("/", s.handleListHouseholds)
			r.Post("/", s.handleCreateHousehold)
			r.Route("/{householdID}", func(r chi.Router) {
				r.Get("/", s.handleGetHousehold)
				r.Put("/", s.handleRenameHousehold)
				r.Delete("/", s.handleDeleteHousehold)

				r.Post("/members", s.handleAddMember)
				r.Route("/members/{memberID}", func(r chi.Router) {
					r.Patch("/", s.handleUpdateMember)
					r.Put("/meals", s.handleUpdateMemberSchedule)
					r.Delete("/", s.handleDeleteMember)
				})

				r.Post("/tools", s.handleAddTool)
				r.Put("/tools/{toolID}", s.handleUpdateTool)
				r.Delete("/tools/{toolID}", s.handleDeleteTool)

				r.Get("/plans", s.handleListPlans)
				r.Get("/plans/{weekStart}", s.handleGetPlanForWeek)
			})
		})

		r.Route("/plans", func(r chi.Router) {
			r.Route("/{planID}", func(r chi.Router) {
				r.Get("/", s.handleGetPlan)
				r.Delete("/", s.handleDeletePlan)
				r.Get("/calendar.ics", s.handlePlanCalendar)
				r.Get("/shopping-list.txt", s.handlePlanShoppingList)
				r.Patch("/entries/{entryID}", s.handlePatchEntry)
			})
		})

		r.Post("/plan/generate", s.handleGenerateSync)

		r.Route("/plan-jobs", func(r chi.Router) {
			r.Post("/", s.handleCreateJob)
			r.Route("/{jobID}", func(r chi.Router) {
				r.Get("/", s.handleGetJob)
				r.Delete("/", s.handleCancelJob)
				r.Get("/events", s.handleJobEvents)
			})
		})

		r.Post("/assistant/message", s.handleAssistantMessage)

		r.Get("/recipes", s.handleListRecipes)
		r.Post("/recipes/import", s.handleImportRecipe)

		r.Get("/metrics", s.handleMetrics)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
