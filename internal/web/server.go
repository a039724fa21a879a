// Package web provides a read-only status page for triage.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/metalagman/triage/internal/item"
	"github.com/metalagman/triage/internal/ticket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server provides the status page handlers and state.
type Server struct {
	items   *item.Store
	tickets *ticket.Store
}

// NewServer creates a new status server.
func NewServer(items *item.Store, tickets *ticket.Store) *Server {
	return &Server{items: items, tickets: tickets}
}

//go:embed templates/*.html
var templatesFS embed.FS

// Routes returns the router for the status UI.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

type indexData struct {
	Ready     []item.WorkItem
	Open      []ticket.Ticket
	Escalated []ticket.Ticket
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var data indexData
	if data.Ready, err = s.items.ListReady(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if data.Open, err = s.tickets.ListByStatus(r.Context(), ticket.StatusOpen); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if data.Escalated, err = s.tickets.ListByStatus(r.Context(), ticket.StatusEscalated); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
