package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/granada/granada-os/internal/models"
)

// handleSeed loads a small curated catalog so fresh deployments have
// something to match against before the first ingestion run.
func (s *Server) handleSeed(c echo.Context) error {
	ctx := c.Request().Context()

	seeds := []models.Opportunity{
		{
			Title:       "Gates Foundation Grand Challenges - Global Health Innovation",
			Description: "The Bill & Melinda Gates Foundation seeks bold ideas that explore innovative approaches to global health. Awards support early-stage research and proof-of-concept projects in low-income countries.",
			Country:     "Global",
			Sector:      "Health",
			AmountMin:   50_000,
			AmountMax:   100_000,
			Currency:    "USD",
			SourceName:  "Grand Challenges",
			SourceURL:   "https://gcgh.grandchallenges.org/grants",
			Keywords:    []string{"health", "innovation", "research"},
			IsVerified:  true,
		},
		{
			Title:       "USAID Development Innovation Ventures",
			Description: "DIV invests in breakthrough solutions to the world's most intractable development challenges. Funding ranges from pilot to scale across agriculture, education, health, and economic growth.",
			Country:     "Global",
			Sector:      "Community Development",
			AmountMin:   25_000,
			AmountMax:   15_000_000,
			Currency:    "USD",
			SourceName:  "USAID",
			SourceURL:   "https://www.usaid.gov/div",
			Keywords:    []string{"development", "innovation", "scale"},
			Deadline:    timePtr(time.Date(2026, 9, 30, 23, 59, 0, 0, time.UTC)),
			IsVerified:  true,
		},
		{
			Title:       "Amref Health Africa Community Health Grants",
			Description: "Grants for community-based organizations strengthening primary health care delivery in East Africa, with a focus on maternal health and disease prevention.",
			Country:     "Kenya",
			Sector:      "Health",
			AmountMin:   10_000,
			AmountMax:   75_000,
			Currency:    "USD",
			SourceName:  "Amref Health Africa",
			SourceURL:   "https://amref.org/grants/community-health",
			Keywords:    []string{"health", "community", "maternal"},
			Deadline:    timePtr(time.Date(2026, 5, 15, 17, 0, 0, 0, time.UTC)),
			IsVerified:  true,
		},
		{
			Title:       "Mastercard Foundation Young Africa Works - Education",
			Description: "Supports programs expanding access to quality secondary education and vocational training for young people across Africa, with priority for women and displaced youth.",
			Country:     "Kenya",
			Sector:      "Education",
			AmountMin:   50_000,
			AmountMax:   500_000,
			Currency:    "USD",
			SourceName:  "Mastercard Foundation",
			SourceURL:   "https://mastercardfdn.org/young-africa-works-education",
			Keywords:    []string{"education", "youth", "training"},
			IsVerified:  true,
		},
		{
			Title:       "EU Horizon Europe - Climate Neutral Cities 2030",
			Description: "Part of the European Commission's Horizon Europe programme. Supports urban transformation projects including clean energy, sustainable mobility, and circular economy initiatives.",
			Country:     "Global",
			Sector:      "Environment",
			AmountMin:   500_000,
			AmountMax:   2_000_000,
			Currency:    "EUR",
			SourceName:  "European Commission",
			SourceURL:   "https://ec.europa.eu/info/funding-tenders/opportunities/portal/screen/opportunities/climate-neutral-cities",
			Keywords:    []string{"climate", "cities", "energy"},
			Deadline:    timePtr(time.Date(2026, 6, 15, 17, 0, 0, 0, time.UTC)),
			IsVerified:  true,
		},
		{
			Title:       "AGRA Smallholder Agriculture Transformation Fund",
			Description: "Funding for organizations improving smallholder farmer productivity, market access, and climate resilience in Sub-Saharan Africa.",
			Country:     "Kenya",
			Sector:      "Agriculture",
			AmountMin:   20_000,
			AmountMax:   250_000,
			Currency:    "USD",
			SourceName:  "AGRA",
			SourceURL:   "https://agra.org/grants/smallholder-transformation",
			Keywords:    []string{"agriculture", "farmers", "resilience"},
			Deadline:    timePtr(time.Date(2026, 7, 31, 23, 59, 0, 0, time.UTC)),
			IsVerified:  true,
		},
		{
			Title:       "Google.org Impact Challenge: AI for Social Good",
			Description: "Google.org invites nonprofits, social enterprises, and research institutions to propose how they would use AI to create positive social impact. Selected projects receive funding and mentorship.",
			Country:     "Global",
			Sector:      "Technology",
			AmountMin:   100_000,
			AmountMax:   2_000_000,
			Currency:    "USD",
			SourceName:  "Google.org",
			SourceURL:   "https://impactchallenge.withgoogle.com/ai-for-social-good",
			Keywords:    []string{"technology", "ai", "social good"},
			Deadline:    timePtr(time.Date(2026, 4, 1, 23, 59, 0, 0, time.UTC)),
			IsVerified:  true,
		},
		{
			Title:       "Ford Foundation - Creativity and Free Expression",
			Description: "The Ford Foundation supports creative work that challenges inequality and advances understanding across cultures. Grants are available for film, visual arts, literature, journalism, and digital media.",
			Country:     "USA",
			Sector:      "Community Development",
			AmountMin:   50_000,
			AmountMax:   500_000,
			Currency:    "USD",
			SourceName:  "Ford Foundation",
			SourceURL:   "https://www.fordfoundation.org/work/challenging-inequality/creativity-and-free-expression/",
			Keywords:    []string{"arts", "media", "justice"},
			IsVerified:  true,
		},
		{
			Title:       "Wellcome Trust - Discovery Research Grant",
			Description: "Wellcome's Discovery Research scheme provides funding for experienced researchers to pursue important questions in science, spanning basic biology to population health.",
			Country:     "Global",
			Sector:      "Health",
			AmountMin:   300_000,
			AmountMax:   3_500_000,
			Currency:    "GBP",
			SourceName:  "Wellcome Trust",
			SourceURL:   "https://wellcome.org/grant-funding/schemes/discovery-research",
			Keywords:    []string{"research", "science", "health"},
			IsVerified:  true,
		},
		{
			Title:       "MIT Solve - Global Challenges 2026",
			Description: "MIT Solve connects social entrepreneurs with funding, mentorship, and resources to scale their impact. Open to any organization or individual worldwide with a technology-based solution.",
			Country:     "Global",
			Sector:      "Technology",
			AmountMin:   10_000,
			AmountMax:   50_000,
			Currency:    "USD",
			SourceName:  "MIT Solve",
			SourceURL:   "https://solve.mit.edu/challenges",
			Keywords:    []string{"technology", "entrepreneurship"},
			Deadline:    timePtr(time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)),
			IsVerified:  true,
		},
	}

	count := 0
	for _, seed := range seeds {
		if err := s.Catalog.Upsert(ctx, seed); err != nil {
			s.logger.Error("failed to seed opportunity",
				zap.String("title", seed.Title), zap.Error(err))
			continue
		}
		count++
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Seed complete",
		"count":   count,
	})
}

func timePtr(t time.Time) *time.Time {
	return &t
}
