package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/granada/granada-os/internal/match"
	"github.com/granada/granada-os/internal/models"
)

// resolveProfile loads the user's profile, falling back to a generic
// small-NGO profile so the dashboard still renders for new or unknown
// users.
func (s *Server) resolveProfile(c echo.Context) (models.UserProfile, bool) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return models.UserProfile{}, false
	}

	p, err := s.Profiles.Get(c.Request().Context(), userID)
	if err != nil {
		return models.UserProfile{
			UserID:           userID,
			OrganizationName: s.cfg.DefaultOrganization,
			OrganizationType: models.OrgSmallNGO,
			Country:          "Global",
		}, true
	}
	return p, true
}

// loadCatalog returns all opportunities, degrading to an empty catalog
// when storage is unavailable. Personalized views must never 500 just
// because the catalog is down; they render zeroed cards instead.
func (s *Server) loadCatalog(c echo.Context) []models.Opportunity {
	opps, err := s.Catalog.ListAll(c.Request().Context())
	if err != nil {
		s.logger.Error("catalog unavailable for personalization", zap.Error(err))
		return nil
	}
	return opps
}

func (s *Server) handleFundingEstimate(c echo.Context) error {
	p, ok := s.resolveProfile(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
	}

	estimate := s.Engine.EstimateFunding(p, s.loadCatalog(c))
	return c.JSON(http.StatusOK, estimate)
}

func (s *Server) handleSectorFocus(c echo.Context) error {
	p, ok := s.resolveProfile(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
	}

	opps := s.loadCatalog(c)
	estimate := s.Engine.EstimateFunding(p, opps)
	focus := s.Engine.SectorFocus(opps, p.Country, estimate.TotalAmount)
	return c.JSON(http.StatusOK, focus)
}

func (s *Server) handleInsights(c echo.Context) error {
	p, ok := s.resolveProfile(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
	}

	opps := s.loadCatalog(c)
	estimate := s.Engine.EstimateFunding(p, opps)
	insights := s.Engine.Insights(opps, p, estimate)
	return c.JSON(http.StatusOK, map[string]interface{}{"insights": insights})
}

func (s *Server) handleCustomActions(c echo.Context) error {
	p, ok := s.resolveProfile(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
	}

	actions := s.Engine.CustomActions(s.loadCatalog(c), p)
	return c.JSON(http.StatusOK, actions)
}

func (s *Server) handleRankedOpportunities(c echo.Context) error {
	p, ok := s.resolveProfile(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
	}

	ranked := s.Engine.Rank(p, s.loadCatalog(c), match.DefaultRankLimit)
	return c.JSON(http.StatusOK, ranked)
}
