package match

import (
	"reflect"
	"strings"
	"testing"

	"github.com/granada/granada-os/internal/models"
)

func opp(title, country, sector string, amountMax float64) models.Opportunity {
	return models.Opportunity{
		Title:     title,
		Country:   country,
		Sector:    sector,
		AmountMax: amountMax,
	}
}

// kenyaCatalog is the mixed catalog used across engine tests: 8 entries
// visible from Kenya (local plus Global) out of 20 total.
func kenyaCatalog() []models.Opportunity {
	opps := []models.Opportunity{
		opp("Community Clinics", "Kenya", "Health", 50_000),
		opp("Rural Health Outreach", "Kenya", "Health", 80_000),
		opp("School Meals", "Kenya", "Education", 30_000),
		opp("Teacher Training", "Kenya", "Education", 45_000),
		opp("Water Access", "Kenya", "Environment", 60_000),
		opp("Global Health Fund", "Global", "Health", 200_000),
		opp("Global Learning Initiative", "Global", "Education", 150_000),
		opp("Worldwide Climate Grants", "Global", "Environment", 500_000),
	}
	for i := 0; i < 12; i++ {
		opps = append(opps, opp("Elsewhere", "Brazil", "Technology", 25_000))
	}
	return opps
}

func TestEstimateFunding(t *testing.T) {
	profile := models.UserProfile{
		OrganizationType: models.OrgSmallNGO,
		Country:          "Kenya",
		Sector:           "Health",
	}

	e := New(NewSource(1))
	est := e.EstimateFunding(profile, kenyaCatalog())

	if est.SuitableCount != 8 {
		t.Fatalf("SuitableCount = %d, want 8", est.SuitableCount)
	}

	// small NGO range 5,000..150,000: avg 48,500, times 8/10.
	if est.TotalAmount != 38_800 {
		t.Errorf("TotalAmount = %v, want 38800", est.TotalAmount)
	}
	if est.TotalFormatted != "$39K" {
		t.Errorf("TotalFormatted = %q, want $39K", est.TotalFormatted)
	}

	if est.MatchScore < 75 || est.MatchScore >= 95 {
		t.Errorf("MatchScore = %v, want [75, 95)", est.MatchScore)
	}
	if est.SuccessRate < 70 || est.SuccessRate >= 90 {
		t.Errorf("SuccessRate = %v, want [70, 90)", est.SuccessRate)
	}
	if !strings.HasSuffix(est.ProcessingTime, " hours") {
		t.Errorf("ProcessingTime = %q, want hours suffix", est.ProcessingTime)
	}
	if !strings.HasPrefix(est.WeeklyGrowth, "+") || !strings.HasSuffix(est.WeeklyGrowth, "%") {
		t.Errorf("WeeklyGrowth = %q, want +N.N%% form", est.WeeklyGrowth)
	}
}

func TestEstimateFundingCapsSuitableCount(t *testing.T) {
	profile := models.UserProfile{OrganizationType: models.OrgStudent, Country: "Kenya"}

	var opps []models.Opportunity
	for i := 0; i < 40; i++ {
		opps = append(opps, opp("Scholarship", "Kenya", "Education", 10_000))
	}

	est := New(NewSource(1)).EstimateFunding(profile, opps)
	if est.SuitableCount != 15 {
		t.Fatalf("SuitableCount = %d, want cap of 15", est.SuitableCount)
	}
}

func TestEstimateFundingUnknownOrgTypeFallsBack(t *testing.T) {
	known := New(NewSource(7)).EstimateFunding(
		models.UserProfile{OrganizationType: models.OrgSmallNGO, Country: "Kenya"}, kenyaCatalog())
	unknown := New(NewSource(7)).EstimateFunding(
		models.UserProfile{OrganizationType: "cooperative", Country: "Kenya"}, kenyaCatalog())

	if known.TotalAmount != unknown.TotalAmount {
		t.Errorf("unknown org type total = %v, want small NGO total %v",
			unknown.TotalAmount, known.TotalAmount)
	}
}

func TestEstimateFundingEmptyCatalog(t *testing.T) {
	est := New(NewSource(1)).EstimateFunding(
		models.UserProfile{OrganizationType: models.OrgSmallNGO, Country: "Kenya"}, nil)

	if est.SuitableCount != 0 {
		t.Errorf("SuitableCount = %d, want 0", est.SuitableCount)
	}
	if est.TotalAmount != 0 {
		t.Errorf("TotalAmount = %v, want 0", est.TotalAmount)
	}
	if est.TotalFormatted != "$0" {
		t.Errorf("TotalFormatted = %q, want $0", est.TotalFormatted)
	}
}

func TestSectorFocus(t *testing.T) {
	e := New(NewSource(1))
	focus := e.SectorFocus(kenyaCatalog(), "Kenya", 100_000)

	if len(focus) != 3 {
		t.Fatalf("len(focus) = %d, want 3", len(focus))
	}

	// 8 in-country entries: Health 3, Education 3, Environment 2.
	if focus[0].Name != "Health" || focus[1].Name != "Education" || focus[2].Name != "Environment" {
		t.Fatalf("sector order = %s, %s, %s", focus[0].Name, focus[1].Name, focus[2].Name)
	}

	// Health: round(3/8*100) = 38% of 100,000.
	if focus[0].Percentage != 38 {
		t.Errorf("Health percentage = %d, want 38", focus[0].Percentage)
	}
	if focus[0].Amount != "$38K" {
		t.Errorf("Health amount = %q, want $38K", focus[0].Amount)
	}
	if focus[0].Icon != "fas fa-heartbeat" || focus[0].Color != "blue" {
		t.Errorf("Health style = %s/%s", focus[0].Icon, focus[0].Color)
	}
}

func TestSectorFocusTiesKeepFirstAppearance(t *testing.T) {
	opps := []models.Opportunity{
		opp("A", "Kenya", "Education", 0),
		opp("B", "Kenya", "Health", 0),
		opp("C", "Kenya", "Environment", 0),
		opp("D", "Kenya", "Agriculture", 0),
	}

	e := New(NewSource(1))
	for i := 0; i < 5; i++ {
		focus := e.SectorFocus(opps, "Kenya", 10_000)
		var names []string
		for _, f := range focus {
			names = append(names, f.Name)
		}
		want := []string{"Education", "Health", "Environment"}
		if !reflect.DeepEqual(names, want) {
			t.Fatalf("run %d: order = %v, want %v", i, names, want)
		}
	}
}

func TestSectorFocusDisplayFloor(t *testing.T) {
	opps := []models.Opportunity{opp("Tiny", "Kenya", "Health", 0)}
	for i := 0; i < 49; i++ {
		opps = append(opps, opp("Big", "Kenya", "Education", 0))
	}

	focus := New(NewSource(1)).SectorFocus(opps, "Kenya", 100_000)
	for _, f := range focus {
		if f.Percentage < 5 {
			t.Errorf("%s percentage = %d, want >= 5", f.Name, f.Percentage)
		}
	}
	// Health is 2% underneath: its amount uses the real share, not the floor.
	last := focus[len(focus)-1]
	if last.Name != "Health" {
		t.Fatalf("last sector = %s, want Health", last.Name)
	}
	if last.Percentage != 5 {
		t.Errorf("Health display percentage = %d, want floor of 5", last.Percentage)
	}
	if last.Amount != "$2K" {
		t.Errorf("Health amount = %q, want $2K from the unfloored share", last.Amount)
	}
}

func TestSectorFocusEmpty(t *testing.T) {
	focus := New(NewSource(1)).SectorFocus(nil, "Kenya", 0)
	if focus == nil {
		t.Fatal("focus is nil, want empty slice")
	}
	if len(focus) != 0 {
		t.Fatalf("len(focus) = %d, want 0", len(focus))
	}
}

func TestInsightsGeneral(t *testing.T) {
	profile := models.UserProfile{
		OrganizationType: models.OrgSmallNGO,
		Country:          "Kenya",
		Sector:           "Health",
	}
	catalog := kenyaCatalog()
	catalog[0].SourceName = "USAID"
	catalog[1].SourceName = "Gates Foundation"
	catalog[5].SourceName = "World Bank"

	e := New(NewSource(1))
	est := e.EstimateFunding(profile, catalog)
	insights := e.Insights(catalog, profile, est)

	if len(insights) != 4 {
		t.Fatalf("len(insights) = %d, want 4", len(insights))
	}
	if !strings.Contains(insights[0], "small ngo in Kenya") {
		t.Errorf("insights[0] = %q, want org label and country", insights[0])
	}
	if !strings.Contains(insights[0], est.TotalFormatted) {
		t.Errorf("insights[0] = %q, want total %s", insights[0], est.TotalFormatted)
	}
	if !strings.Contains(insights[1], "USAID, Gates Foundation, World Bank") {
		t.Errorf("insights[1] = %q, want top three sources", insights[1])
	}
	// 8 relevant entries means low competition.
	if !strings.Contains(insights[3], "Competition level is low") {
		t.Errorf("insights[3] = %q, want low competition", insights[3])
	}
}

func TestInsightsStudent(t *testing.T) {
	profile := models.UserProfile{
		OrganizationType: models.OrgStudent,
		Country:          "Kenya",
		Sector:           "Health",
	}

	e := New(NewSource(1))
	est := e.EstimateFunding(profile, kenyaCatalog())
	insights := e.Insights(kenyaCatalog(), profile, est)

	if len(insights) != 4 {
		t.Fatalf("len(insights) = %d, want 4", len(insights))
	}
	if !strings.HasPrefix(insights[0], "As a student in Kenya") {
		t.Errorf("insights[0] = %q, want student framing", insights[0])
	}
	if !strings.Contains(insights[1], "Academic scholarships (45%)") {
		t.Errorf("insights[1] = %q, want scholarship breakdown", insights[1])
	}
}

func TestInsightsModerateCompetition(t *testing.T) {
	profile := models.UserProfile{
		OrganizationType: models.OrgSmallNGO,
		Country:          "Kenya",
		Sector:           "Health",
	}
	var opps []models.Opportunity
	for i := 0; i < 11; i++ {
		opps = append(opps, opp("Grant", "Kenya", "Health", 10_000))
	}

	e := New(NewSource(1))
	insights := e.Insights(opps, profile, e.EstimateFunding(profile, opps))
	if !strings.Contains(insights[3], "Competition level is moderate") {
		t.Errorf("insights[3] = %q, want moderate competition above 10 matches", insights[3])
	}
}

func TestCustomActionsStudent(t *testing.T) {
	profile := models.UserProfile{
		OrganizationType: models.OrgStudent,
		Country:          "Kenya",
		Sector:           "Health",
	}

	actions := New(NewSource(1)).CustomActions(nil, profile)
	if len(actions) != 4 {
		t.Fatalf("len(actions) = %d, want 4", len(actions))
	}
	if actions[0].Title != "Academic Writing Suite" {
		t.Errorf("actions[0].Title = %q", actions[0].Title)
	}
	if actions[3].URL != "/academic-network" {
		t.Errorf("actions[3].URL = %q", actions[3].URL)
	}
}

func TestCustomActionsGeneral(t *testing.T) {
	profile := models.UserProfile{
		OrganizationType: models.OrgSmallNGO,
		Country:          "Kenya",
		Sector:           "Health",
	}
	catalog := kenyaCatalog()
	for i := range catalog {
		switch {
		case i < 4:
			catalog[i].SourceName = "USAID"
		case i < 6:
			catalog[i].SourceName = "Gates Foundation"
		default:
			catalog[i].SourceName = "World Bank"
		}
	}

	actions := New(NewSource(1)).CustomActions(catalog, profile)
	if len(actions) != 4 {
		t.Fatalf("len(actions) = %d, want top three funders plus network card", len(actions))
	}
	if actions[0].Title != "Apply to USAID Programs" {
		t.Errorf("actions[0].Title = %q", actions[0].Title)
	}
	if actions[0].Icon != "fas fa-flag-usa" || actions[0].Color != "blue" {
		t.Errorf("USAID style = %s/%s", actions[0].Icon, actions[0].Color)
	}
	last := actions[len(actions)-1]
	if last.Title != "Connect with Expert Network" {
		t.Errorf("last action = %q", last.Title)
	}
	if last.URL != "/network" {
		t.Errorf("last URL = %q", last.URL)
	}
}

func TestSeededEngineIsDeterministic(t *testing.T) {
	profile := models.UserProfile{
		OrganizationType: models.OrgSmallNGO,
		Country:          "Kenya",
		Sector:           "Health",
	}

	a := New(NewSource(42)).EstimateFunding(profile, kenyaCatalog())
	b := New(NewSource(42)).EstimateFunding(profile, kenyaCatalog())
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced different estimates:\n%+v\n%+v", a, b)
	}
}
