package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/email-finder/internal/domain"
	"github.com/user/email-finder/internal/pipeline"
	"github.com/user/email-finder/internal/search"
)

func (s *Server) handleScrapeRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.URLs) == 0 && req.Keyword == "" {
		s.respondWithError(w, http.StatusBadRequest, "Either urls or keyword is required")
		return
	}

	urls := req.URLs
	if len(urls) == 0 {
		found, err := s.searcher.Search(r.Context(), search.Query{
			Keyword: req.Keyword,
			Locale:  req.Locale,
			Limit:   req.Limit,
		})
		if err != nil {
			// Search failure is not fatal; the batch just has nothing to do.
			s.logger.Warn("search failed", zap.String("keyword", req.Keyword), zap.Error(err))
		}
		urls = found
	}

	visited := s.visited
	if visited == nil {
		visited = pipeline.NewMemoryVisited()
	}
	results := s.coordinator.RunWithVisited(r.Context(), urls, visited)

	if s.pgStore != nil {
		if err := s.pgStore.SaveResults(r.Context(), results); err != nil {
			s.logger.Error("failed to persist results", zap.Error(err))
		}
	}

	s.respondWithJSON(w, http.StatusOK, domain.ScrapeResponse{
		Processed: len(results),
		Results:   results,
	})
}

func (s *Server) handleResultRequest(w http.ResponseWriter, r *http.Request) {
	homepage := r.URL.Query().Get("homepage")
	if homepage == "" {
		s.respondWithError(w, http.StatusBadRequest, "homepage query parameter is required")
		return
	}
	if s.pgStore == nil {
		s.respondWithError(w, http.StatusNotImplemented, "No result store configured")
		return
	}

	res, err := s.pgStore.ResultFor(r.Context(), homepage)
	if err != nil {
		if err.Error() == "not_found" {
			s.respondWithError(w, http.StatusNotFound, "Homepage not processed")
			return
		}
		s.logger.Error("failed to load result", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve result")
		return
	}
	s.respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := map[string]string{"pipeline": "healthy"}
	healthy := true

	if s.pgStore != nil {
		if err := s.pgStore.Ping(ctx); err != nil {
			healthStatus["postgres"] = "unhealthy"
			healthy = false
			s.logger.Error("health check failed for postgres", zap.Error(err))
		} else {
			healthStatus["postgres"] = "healthy"
		}
	}

	if pinger, ok := s.visited.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(ctx); err != nil {
			healthStatus["redis"] = "unhealthy"
			healthy = false
			s.logger.Error("health check failed for redis", zap.Error(err))
		} else {
			healthStatus["redis"] = "healthy"
		}
	}

	if !healthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
