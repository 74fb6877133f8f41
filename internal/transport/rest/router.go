package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"classpulse/internal/service"
)

// Container holds the services the HTTP layer exposes.
type Container struct {
	Facade *service.AnalysisFacade
	Search *service.SearchService
	Chat   *service.ChatService
	Logger *zap.Logger
}

// NewRouter wires the analysis endpoints.
func NewRouter(c *Container) *mux.Router {
	h := &handler{
		facade: c.Facade,
		search: c.Search,
		chat:   c.Chat,
		logger: c.Logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/subjects/{id}/sentiment", h.sentiment).Methods(http.MethodGet)
	api.HandleFunc("/subjects/{id}/insights", h.insights).Methods(http.MethodGet)
	api.HandleFunc("/subjects/{id}/risks", h.risks).Methods(http.MethodGet)
	api.HandleFunc("/subjects/{id}/alerts", h.alerts).Methods(http.MethodGet)
	api.HandleFunc("/subjects/{id}/summary", h.summary).Methods(http.MethodGet)
	api.HandleFunc("/subjects/compare", h.compare).Methods(http.MethodPost)
	api.HandleFunc("/search", h.searchResponses).Methods(http.MethodPost)
	api.HandleFunc("/responses/index", h.indexResponse).Methods(http.MethodPost)
	api.HandleFunc("/chat", h.chatQuery).Methods(http.MethodPost)

	return r
}
