package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/email-finder/internal/config"
	"github.com/user/email-finder/internal/pipeline"
	"github.com/user/email-finder/internal/search"
	"github.com/user/email-finder/internal/storage"
)

// Server holds the dependencies for the HTTP server. The Postgres store and
// Redis visited store may be nil when not configured; handlers degrade
// accordingly.
type Server struct {
	config      *config.Config
	router      http.Handler
	httpServer  *http.Server
	coordinator *pipeline.Coordinator
	searcher    search.Provider
	pgStore     *storage.PostgresStore
	visited     pipeline.Visited
	logger      *zap.Logger
}

func NewServer(
	cfg *config.Config,
	coord *pipeline.Coordinator,
	searcher search.Provider,
	ps *storage.PostgresStore,
	visited pipeline.Visited,
	l *zap.Logger,
) *Server {
	s := &Server{
		config:      cfg,
		coordinator: coord,
		searcher:    searcher,
		pgStore:     ps,
		visited:     visited,
		logger:      l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // a scrape batch runs within the request
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
