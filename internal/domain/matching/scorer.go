package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Criteria is the targeting input to a match run
// The campaign context maps its target criteria into this shape
type Criteria struct {
	Sports           []string
	Divisions        []string
	Regions          []string
	ContentTypes     []string
	MinFollowers     int
	BudgetPerAthlete decimal.Decimal
}

// Candidate is a scoreable athlete snapshot
// The profile context maps active athlete profiles into this shape
type Candidate struct {
	ProfileID         uuid.UUID
	DisplayName       string
	Sport             string
	Division          string
	Region            string
	TotalFollowers    int
	ContentTags       []string
	CompensationFloor decimal.Decimal
}

// Scoring weights; they sum to 100
const (
	weightSport     = 40
	weightFollowers = 25
	weightContent   = 20
	weightBudget    = 15
)

// Score computes a deterministic 0-100 match score for a candidate
// Components: sport match, follower band vs the campaign minimum,
// content tag overlap, and budget fit against the compensation floor
func Score(c Candidate, criteria Criteria) (decimal.Decimal, []string) {
	score := 0
	reasons := make([]string, 0, 4)

	if containsFold(criteria.Sports, c.Sport) {
		score += weightSport
		reasons = append(reasons, fmt.Sprintf("sport %s targeted", c.Sport))
	}

	score += followerScore(c.TotalFollowers, criteria.MinFollowers)
	if c.TotalFollowers >= criteria.MinFollowers && c.TotalFollowers > 0 {
		reasons = append(reasons, fmt.Sprintf("%d followers meets minimum", c.TotalFollowers))
	}

	if overlap := tagOverlap(c.ContentTags, criteria.ContentTypes); overlap > 0 {
		score += weightContent * overlap / len(criteria.ContentTypes)
		reasons = append(reasons, fmt.Sprintf("%d matching content types", overlap))
	} else if len(criteria.ContentTypes) == 0 {
		// No content targeting: the component is a free pass
		score += weightContent
	}

	if budgetFits(c.CompensationFloor, criteria.BudgetPerAthlete) {
		score += weightBudget
		reasons = append(reasons, "within budget")
	}

	return decimal.NewFromInt(int64(score)), reasons
}

// followerScore awards the full follower weight at or above the minimum
// and a proportional partial score below it
func followerScore(followers, minimum int) int {
	if minimum <= 0 {
		return weightFollowers
	}
	if followers >= minimum {
		return weightFollowers
	}
	if followers <= 0 {
		return 0
	}
	return weightFollowers * followers / minimum
}

func tagOverlap(tags, wanted []string) int {
	if len(wanted) == 0 {
		return 0
	}
	overlap := 0
	for _, w := range wanted {
		if containsFold(tags, w) {
			overlap++
		}
	}
	return overlap
}

// budgetFits is true when the campaign has no per-athlete budget or the
// athlete's floor fits inside it; athletes with no floor always fit
func budgetFits(floor, budget decimal.Decimal) bool {
	if budget.LessThanOrEqual(decimal.Zero) {
		return true
	}
	return floor.LessThanOrEqual(budget)
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

// RankCandidates scores candidates and returns results ordered by score
// descending; ties break on follower count then profile ID so the
// ordering is stable across runs
func RankCandidates(candidates []Candidate, criteria Criteria, limit int) []MatchResult {
	results := make([]MatchResult, 0, len(candidates))
	for _, c := range candidates {
		score, reasons := Score(c, criteria)
		results = append(results, MatchResult{
			AthleteProfileID: c.ProfileID,
			DisplayName:      c.DisplayName,
			Sport:            c.Sport,
			TotalFollowers:   c.TotalFollowers,
			Score:            score,
			Reasons:          reasons,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].Score.Equal(results[j].Score) {
			return results[i].Score.GreaterThan(results[j].Score)
		}
		if results[i].TotalFollowers != results[j].TotalFollowers {
			return results[i].TotalFollowers > results[j].TotalFollowers
		}
		return results[i].AthleteProfileID.String() < results[j].AthleteProfileID.String()
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
