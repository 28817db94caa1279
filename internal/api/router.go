package api

import (
	"convoy-route-service/internal/api/handlers"
	"convoy-route-service/internal/ports"
	"convoy-route-service/internal/services"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(assembler *services.Assembler, proposals ports.ProposalRepository) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{
		Assembler: assembler,
		Proposals: proposals,
	}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("POST /routes/generate", routeHandler.Generate)
	mux.HandleFunc("GET /routes/{id}", routeHandler.Get)
	mux.HandleFunc("GET /routes/{id}/obstacles", routeHandler.Obstacles)
	mux.HandleFunc("GET /routes/{id}/validate", routeHandler.Validate)
	mux.HandleFunc("POST /routes/{id}/approve", routeHandler.Approve)
	mux.HandleFunc("POST /routes/{id}/reject", routeHandler.Reject)
	mux.HandleFunc("POST /routes/{id}/optimize", routeHandler.Optimize)
	mux.HandleFunc("GET /missions/{id}/routes", routeHandler.ListByMission)

	return loggingMiddleware(mux)
}
