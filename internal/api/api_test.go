package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/granada/granada-os/internal/catalog"
	"github.com/granada/granada-os/internal/config"
	"github.com/granada/granada-os/internal/match"
	"github.com/granada/granada-os/internal/models"
	"github.com/granada/granada-os/internal/notify"
)

type stubCatalog struct {
	opps    []models.Opportunity
	listErr error
}

func (s *stubCatalog) List(_ context.Context, params catalog.ListParams) (*catalog.ListResult, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return &catalog.ListResult{Opportunities: s.opps, Total: len(s.opps)}, nil
}

func (s *stubCatalog) ListAll(_ context.Context) ([]models.Opportunity, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.opps, nil
}

func (s *stubCatalog) Get(_ context.Context, id string) (*models.Opportunity, error) {
	for i := range s.opps {
		if s.opps[i].ID.String() == id {
			return &s.opps[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubCatalog) Upsert(_ context.Context, o models.Opportunity) error { return nil }

func (s *stubCatalog) Sources(_ context.Context) ([]string, error) { return []string{"USAID"}, nil }

func (s *stubCatalog) Stats(_ context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"total": len(s.opps)}, nil
}

type stubProfiles struct {
	profiles map[uuid.UUID]models.UserProfile
}

func (s *stubProfiles) Get(_ context.Context, userID uuid.UUID) (models.UserProfile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return models.UserProfile{}, errors.New("profile not found")
	}
	return p, nil
}

func (s *stubProfiles) Update(_ context.Context, p models.UserProfile) error { return nil }

func newTestServer(opps []models.Opportunity, profiles map[uuid.UUID]models.UserProfile) *Server {
	return &Server{
		Echo:          echo.New(),
		Catalog:       &stubCatalog{opps: opps},
		Profiles:      &stubProfiles{profiles: profiles},
		Notifications: notify.NewMemStore(),
		Engine:        match.New(match.NewSource(1)),
		cfg:           &config.Config{DefaultOrganization: "Impact First Foundation"},
		logger:        zap.NewNop(),
	}
}

func doRequest(s *Server, method, target, body string, handler echo.HandlerFunc, pathParams map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := s.Echo.NewContext(req, rec)

	var names, values []string
	for k, v := range pathParams {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	_ = handler(c)
	return rec
}

func kenyaOpps() []models.Opportunity {
	var opps []models.Opportunity
	for i := 0; i < 5; i++ {
		opps = append(opps, models.Opportunity{
			ID:      uuid.New(),
			Title:   "Health Grant",
			Country: "Kenya",
			Sector:  "Health",
		})
	}
	return opps
}

func TestHandleFundingEstimate(t *testing.T) {
	userID := uuid.New()
	s := newTestServer(kenyaOpps(), map[uuid.UUID]models.UserProfile{
		userID: {
			UserID:           userID,
			OrganizationType: models.OrgSmallNGO,
			Country:          "Kenya",
			Sector:           "Health",
		},
	})

	rec := doRequest(s, http.MethodGet, "/", "", s.handleFundingEstimate,
		map[string]string{"userId": userID.String()})

	require.Equal(t, http.StatusOK, rec.Code)

	var est match.FundingEstimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &est))
	assert.Equal(t, 5, est.SuitableCount)
	assert.NotEmpty(t, est.TotalFormatted)
}

func TestHandleFundingEstimateUnknownUserFallsBack(t *testing.T) {
	s := newTestServer(kenyaOpps(), map[uuid.UUID]models.UserProfile{})

	rec := doRequest(s, http.MethodGet, "/", "", s.handleFundingEstimate,
		map[string]string{"userId": uuid.New().String()})

	// Unknown users get the default small NGO profile, not an error.
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleFundingEstimateInvalidID(t *testing.T) {
	s := newTestServer(nil, nil)
	rec := doRequest(s, http.MethodGet, "/", "", s.handleFundingEstimate,
		map[string]string{"userId": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleFundingEstimateCatalogDown(t *testing.T) {
	userID := uuid.New()
	s := newTestServer(nil, map[uuid.UUID]models.UserProfile{
		userID: {UserID: userID, OrganizationType: models.OrgSmallNGO, Country: "Kenya"},
	})
	s.Catalog = &stubCatalog{listErr: errors.New("connection refused")}

	rec := doRequest(s, http.MethodGet, "/", "", s.handleFundingEstimate,
		map[string]string{"userId": userID.String()})

	// Catalog outage degrades to a zeroed card rather than a 500.
	require.Equal(t, http.StatusOK, rec.Code)
	var est match.FundingEstimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &est))
	assert.Zero(t, est.SuitableCount)
	assert.Equal(t, "$0", est.TotalFormatted)
}

func TestHandleSectorFocus(t *testing.T) {
	userID := uuid.New()
	s := newTestServer(kenyaOpps(), map[uuid.UUID]models.UserProfile{
		userID: {UserID: userID, OrganizationType: models.OrgSmallNGO, Country: "Kenya", Sector: "Health"},
	})

	rec := doRequest(s, http.MethodGet, "/", "", s.handleSectorFocus,
		map[string]string{"userId": userID.String()})

	require.Equal(t, http.StatusOK, rec.Code)
	var focus []match.SectorFocus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &focus))
	require.Len(t, focus, 1)
	assert.Equal(t, "Health", focus[0].Name)
}

func TestHandleRankedOpportunities(t *testing.T) {
	userID := uuid.New()
	s := newTestServer(kenyaOpps(), map[uuid.UUID]models.UserProfile{
		userID: {UserID: userID, OrganizationType: models.OrgSmallNGO, Country: "Kenya", Sector: "Health"},
	})

	rec := doRequest(s, http.MethodGet, "/", "", s.handleRankedOpportunities,
		map[string]string{"userId": userID.String()})

	require.Equal(t, http.StatusOK, rec.Code)
	var ranked []match.ScoredOpportunity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranked))
	require.Len(t, ranked, 5)
	assert.Equal(t, 15, ranked[0].Score, "sector match weight")
}

func TestNotificationLifecycle(t *testing.T) {
	s := newTestServer(nil, nil)
	userID := uuid.New()

	body := `{"user_id":"` + userID.String() + `","title":"New grant","message":"Check it out","type":"info"}`
	rec := doRequest(s, http.MethodPost, "/", body, s.handleCreateNotification, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created notify.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEqual(t, uuid.Nil, created.ID)

	rec = doRequest(s, http.MethodPatch, "/", "", s.handleMarkClicked,
		map[string]string{"id": created.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = doRequest(s, http.MethodGet, "/", "", s.handleUnreadCount,
		map[string]string{"userId": userID.String()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0}`, rec.Body.String(), "click implies read")

	rec = doRequest(s, http.MethodGet, "/", "", s.handleListNotifications,
		map[string]string{"userId": userID.String()})
	require.Equal(t, http.StatusOK, rec.Code)
	var list []notify.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].IsClicked)
	assert.Equal(t, 1, list[0].ClickCount)
}

func TestCreateNotificationValidation(t *testing.T) {
	s := newTestServer(nil, nil)

	body := `{"user_id":"` + uuid.New().String() + `","message":"no title","type":"info"}`
	rec := doRequest(s, http.MethodPost, "/", body, s.handleCreateNotification, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkReadUnknownNotification(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := doRequest(s, http.MethodPatch, "/", "", s.handleMarkRead,
		map[string]string{"id": uuid.New().String()})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteNotificationIdempotent(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := doRequest(s, http.MethodDelete, "/", "", s.handleDeleteNotification,
		map[string]string{"id": uuid.New().String()})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleListOpportunities(t *testing.T) {
	s := newTestServer(kenyaOpps(), nil)

	rec := doRequest(s, http.MethodGet, "/?country=Kenya", "", s.handleListOpportunities, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result catalog.ListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 5, result.Total)
}

func TestAdminMiddleware(t *testing.T) {
	s := newTestServer(nil, nil)
	s.adminSecret = "topsecret"

	handler := s.adminMiddleware(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(s.Echo.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Admin-Secret", "topsecret")
	rec = httptest.NewRecorder()
	require.NoError(t, handler(s.Echo.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer topsecret")
	rec = httptest.NewRecorder()
	require.NoError(t, handler(s.Echo.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}
