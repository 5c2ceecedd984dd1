package match

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/granada/granada-os/internal/models"
)

// Score weights for the personalized ranking.
const (
	amountFitWeight   = 10
	sectorMatchWeight = 15
	keywordWeight     = 5

	// DefaultRankLimit caps the ranked result when the caller passes no limit.
	DefaultRankLimit = 20
)

// ScoredOpportunity is an opportunity with its relevance score attached.
type ScoredOpportunity struct {
	models.Opportunity
	Score int `json:"score"`
}

// Rank filters the catalog to the user's country (Global always passes),
// scores each opportunity against the profile, deduplicates by id and
// returns the top entries by score. The sort is stable, so equal scores keep
// catalog order.
func (e *Engine) Rank(profile models.UserProfile, opps []models.Opportunity, limit int) []ScoredOpportunity {
	if limit <= 0 {
		limit = DefaultRankLimit
	}

	interests := strings.ToLower(strings.Join(profile.Interests, " "))

	var scored []ScoredOpportunity
	seen := map[uuid.UUID]bool{}
	for _, opp := range opps {
		if profile.Country != "" && opp.Country != "Global" && opp.Country != profile.Country {
			continue
		}
		if opp.ID != uuid.Nil {
			if seen[opp.ID] {
				continue
			}
			seen[opp.ID] = true
		}
		scored = append(scored, ScoredOpportunity{
			Opportunity: opp,
			Score:       scoreOpportunity(profile, opp, interests),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	if scored == nil {
		scored = []ScoredOpportunity{}
	}
	return scored
}

func scoreOpportunity(profile models.UserProfile, opp models.Opportunity, interests string) int {
	score := 0

	// Funding amount aligned with the profile's typical range.
	switch profile.OrganizationType {
	case models.OrgSmallNGO:
		if opp.AmountMax > 0 && opp.AmountMax <= 100_000 {
			score += amountFitWeight
		}
	case models.OrgLargeNGO:
		if opp.AmountMin >= 100_000 {
			score += amountFitWeight
		}
	}

	if profile.Sector != "" && opp.Sector == profile.Sector {
		score += sectorMatchWeight
	}

	if interests != "" {
		for _, kw := range opp.Keywords {
			if kw != "" && strings.Contains(interests, strings.ToLower(kw)) {
				score += keywordWeight
			}
		}
	}

	return score
}
