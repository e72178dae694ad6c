// Package http exposes the budgeting service as a small JSON API. All
// semantics live in the services and engine packages; handlers only parse,
// delegate, and encode.
package http

import (
	"net/http"
	"time"

	applog "buste/internal/log"
	"buste/internal/services"
)

type Server struct {
	svc    *services.BudgetService
	logger *applog.Logger
	start  time.Time
}

// NewServer builds the API server with its routes and logging middleware.
func NewServer(addr string, svc *services.BudgetService, logger *applog.Logger) *http.Server {
	s := &Server{
		svc:    svc,
		logger: logger.WithComponent(applog.ComponentHTTP),
		start:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/budgets/{id}/view", s.handleView)
	mux.HandleFunc("GET /api/budgets/{id}/period", s.handlePeriod)
	mux.HandleFunc("GET /api/budgets/{id}/period/next", s.handlePeriodNext)
	mux.HandleFunc("GET /api/budgets/{id}/period/previous", s.handlePeriodPrevious)
	mux.HandleFunc("PUT /api/budgets/{id}/categories/{category}/expected", s.handleSetExpected)
	mux.HandleFunc("GET /api/budgets/{id}/recurring", s.handleUpcoming)
	mux.HandleFunc("PATCH /api/recurring/{id}", s.handlePatchRecurring)

	return &http.Server{
		Addr:    addr,
		Handler: applog.Middleware(s.logger)(mux),
	}
}
