package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/granada/granada-os/internal/catalog"
)

func (s *Server) handleListOpportunities(c echo.Context) error {
	params := catalog.ListParams{
		Query:      c.QueryParam("q"),
		Country:    c.QueryParam("country"),
		Sector:     c.QueryParam("sector"),
		SourceName: c.QueryParam("source"),
		Limit:      20,
	}

	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	if v, err := strconv.ParseFloat(c.QueryParam("min_amount"), 64); err == nil && v > 0 {
		params.MinAmount = v
	}
	if v, err := strconv.ParseFloat(c.QueryParam("max_amount"), 64); err == nil && v > 0 {
		params.MaxAmount = v
	}
	if c.QueryParam("verified") == "true" {
		params.VerifiedOnly = true
	}

	// Semantic ordering when a query is present; keyword search is the
	// fallback when the embedding service is unavailable.
	if params.Query != "" && s.AI != nil {
		aiCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		vec, err := s.AI.GenerateEmbedding(aiCtx, params.Query)
		if err != nil {
			s.logger.Warn("query embedding failed, using keyword search", zap.Error(err))
		} else {
			params.QueryEmbedding = vec
		}
	}

	result, err := s.Catalog.List(c.Request().Context(), params)
	if err != nil {
		s.logger.Error("failed to list opportunities", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	opp, err := s.Catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, opp)
}

func (s *Server) handleGetSources(c echo.Context) error {
	sources, err := s.Catalog.Sources(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, sources)
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.Catalog.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleIngestSource(c echo.Context) error {
	sourceID := c.Param("id")

	stats, err := s.Pipeline.IngestSource(c.Request().Context(), sourceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": sourceID + " ingestion complete",
		"stats":   stats,
	})
}

func (s *Server) handleIngestAll(c echo.Context) error {
	results := s.Pipeline.IngestAll(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "All registry sources ingestion complete",
		"results": results,
	})
}
