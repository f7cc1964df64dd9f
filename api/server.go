/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/claims/*         Claim lifecycle operations
  /api/policies/*       Policy management and coverage queries
  /api/templates/*      Questionnaire template versioning
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. Actor identity arrives in
  X-Actor-Id / X-Actor-Role headers and is trusted as-is; a gateway in
  front of this service must set them from a verified session.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor-Id", "X-Actor-Role"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Claim routes
		r.Route("/claims", func(r chi.Router) {
			r.Get("/", h.ListClaims)
			r.Post("/", h.CreateClaim)
			r.Get("/{id}", h.GetClaim)
			r.Post("/{id}/questionnaire", h.LoadQuestionnaire)
			r.Post("/{id}/answers", h.AnswerQuestion)
			r.Post("/{id}/amount", h.SetAmount)
			r.Post("/{id}/documents", h.AttachDocuments)
			r.Post("/{id}/submit", h.SubmitClaim)
			r.Post("/{id}/cancel", h.CancelClaim)
			r.Post("/{id}/hr-transition", h.HRTransition)
			r.Post("/{id}/review", h.StartReview)
			r.Post("/{id}/decision", h.Decide)
			r.Post("/{id}/notes", h.AddNote)
		})

		// Policy routes
		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.ListPolicies)
			r.Post("/", h.CreatePolicy)
			r.Get("/{id}", h.GetPolicy)
			r.Delete("/{id}", h.DeletePolicy)
			r.Post("/{id}/beneficiaries", h.AddBeneficiary)
			r.Delete("/{id}/beneficiaries/{beneficiaryId}", h.RemoveBeneficiary)
			r.Get("/{id}/remaining", h.RemainingCoverage)
			r.Get("/{id}/consistency", h.CoverageConsistency)
		})

		// Template routes
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.ListTemplates)
			r.Post("/", h.CreateTemplate)
			r.Get("/{id}", h.GetTemplate)
			r.Post("/{id}/clone", h.CloneTemplate)
			r.Post("/{id}/promote", h.PromoteTemplate)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	// Minimal index page for anyone opening the service in a browser.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Claims Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Claims Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/policies">/api/policies</a> - List policies</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List demo scenarios</li>
<li>/api/claims?status=submitted - HR work queue</li>
</ul>
</body>
</html>`))
	})

	return r
}
