package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/granada/granada-os/internal/ai"
	"github.com/granada/granada-os/internal/auth"
	"github.com/granada/granada-os/internal/catalog"
	"github.com/granada/granada-os/internal/config"
	"github.com/granada/granada-os/internal/ingest"
	"github.com/granada/granada-os/internal/match"
	"github.com/granada/granada-os/internal/models"
	"github.com/granada/granada-os/internal/notify"
	"github.com/granada/granada-os/internal/profile"
)

// CatalogStore is the catalog surface the handlers need. Narrowed to an
// interface so handler tests can run against an in-memory stub.
type CatalogStore interface {
	List(ctx context.Context, params catalog.ListParams) (*catalog.ListResult, error)
	ListAll(ctx context.Context) ([]models.Opportunity, error)
	Get(ctx context.Context, id string) (*models.Opportunity, error)
	Upsert(ctx context.Context, o models.Opportunity) error
	Sources(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (map[string]interface{}, error)
}

// ProfileStore resolves user profiles for personalization.
type ProfileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (models.UserProfile, error)
	Update(ctx context.Context, p models.UserProfile) error
}

type Server struct {
	Echo          *echo.Echo
	DB            *pgxpool.Pool
	Catalog       CatalogStore
	Profiles      ProfileStore
	Notifications notify.Store
	Engine        *match.Engine
	AuthService   *auth.Service
	AI            *ai.OllamaClient
	Pipeline      *ingest.Pipeline

	cfg         *config.Config
	logger      *zap.Logger
	adminSecret string
}

func NewServer(pool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	authService, err := auth.NewService(pool, cfg.JWTSecret, cfg.DefaultOrganization, logger)
	if err != nil {
		return nil, err
	}

	adminSecret := strings.TrimSpace(cfg.AdminSecret)
	if adminSecret == "" {
		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
		}
		adminSecret = base64.RawURLEncoding.EncodeToString(buf)
		logger.Warn("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	}

	catalogStore := catalog.NewStore(pool)
	aiClient := ai.NewOllamaClient(cfg.OllamaHost, cfg.EmbedModel)

	registry, err := ingest.LoadRegistry("internal/ingest/config/sources.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load source registry: %w", err)
	}

	s := &Server{
		Echo:          e,
		DB:            pool,
		Catalog:       catalogStore,
		Profiles:      profile.NewStore(pool),
		Notifications: notify.NewPGStore(pool, logger),
		Engine:        match.New(nil),
		AuthService:   authService,
		AI:            aiClient,
		Pipeline:      ingest.NewPipeline(catalogStore, registry, aiClient, logger),
		cfg:           cfg,
		logger:        logger,
		adminSecret:   adminSecret,
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	api.GET("/opportunities", s.handleListOpportunities)
	api.GET("/opportunities/:id", s.handleGetOpportunity)
	api.GET("/sources", s.handleGetSources)
	api.GET("/stats", s.handleGetStats)

	api.GET("/personalized/estimate/:userId", s.handleFundingEstimate)
	api.GET("/personalized/sectors/:userId", s.handleSectorFocus)
	api.GET("/personalized/insights/:userId", s.handleInsights)
	api.GET("/personalized/actions/:userId", s.handleCustomActions)
	api.GET("/personalized/opportunities/:userId", s.handleRankedOpportunities)

	api.GET("/notifications/user/:userId", s.handleListNotifications)
	api.GET("/notifications/user/:userId/unread-count", s.handleUnreadCount)
	api.POST("/notifications", s.handleCreateNotification)
	api.PATCH("/notifications/:id/read", s.handleMarkRead)
	api.PATCH("/notifications/:id/clicked", s.handleMarkClicked)
	api.DELETE("/notifications/:id", s.handleDeleteNotification)

	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	me := api.Group("/profile")
	me.Use(s.AuthService.Middleware)
	me.GET("", s.handleGetProfile)
	me.PUT("", s.handleUpdateProfile)

	admin := api.Group("")
	admin.Use(s.adminMiddleware)
	admin.POST("/ingest/source/:id", s.handleIngestSource)
	admin.POST("/ingest/all", s.handleIngestAll)
	admin.POST("/seed", s.handleSeed)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == s.adminSecret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == s.adminSecret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

// requestLogger emits one structured line per request.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.Info("request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			)
			return err
		}
	}
}
