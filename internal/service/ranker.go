package service

import (
	"cmp"
	"slices"
	"strings"

	"caradvisor/internal/model"
)

// Match reason constants
const (
	ReasonPriceMatch     = "Price within budget"
	ReasonConditionMatch = "Condition as preferred"
	ReasonBodyTypeMatch  = "Body type match"
	ReasonFamilyFit      = "Room for the family"
	ReasonCityFriendly   = "Easy to park in the city"
	ReasonHighwayComfort = "Comfortable on the highway"
	ReasonLowMileage     = "Low mileage for its age"
	ReasonLongCOE        = "Long registration remaining"
	ReasonHighValue      = "High value score"
	ReasonGeneralMatch   = "General match"
)

const (
	longCOEYears     = 7.0
	lowMileageScore  = 0.75
	largeFamilyCount = 5
)

// Ranker orders scored listings
type Ranker struct {
	defaultK int
}

// NewRanker creates a ranker returning defaultK results when no k is given
func NewRanker(defaultK int) *Ranker {
	return &Ranker{defaultK: defaultK}
}

// Rank sorts by Value Score descending, ties broken by listing id
// ascending, and returns at most k results. k <= 0 uses the default.
// The input slice is not modified.
func (r *Ranker) Rank(scored []model.ScoredListing, k int) []model.ScoredListing {
	if k <= 0 {
		k = r.defaultK
	}
	out := slices.Clone(scored)
	slices.SortFunc(out, func(a, b model.ScoredListing) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ListingID, b.ListingID)
	})
	if len(out) > k {
		out = out[:k]
	}
	if out == nil {
		out = []model.ScoredListing{}
	}
	return out
}

// Annotate fills MatchedReasons for each result against the profile
func (r *Ranker) Annotate(results []model.ScoredListing, p *model.Profile) {
	for i := range results {
		results[i].MatchedReasons = r.generateMatchedReasons(&results[i], p)
	}
}

// generateMatchedReasons generates human-readable reasons for why this listing matched
func (r *Ranker) generateMatchedReasons(result *model.ScoredListing, p *model.Profile) []string {
	reasons := []string{}
	l := &result.Listing
	body := ""
	if l.BodyType != nil {
		body = strings.ToLower(*l.BodyType)
	}

	if p != nil {
		if p.BudgetMax != nil && l.PriceSGD <= *p.BudgetMax && (p.BudgetMin == nil || l.PriceSGD >= *p.BudgetMin) {
			reasons = append(reasons, ReasonPriceMatch)
		}

		if p.Condition != nil && *p.Condition != model.ConditionEither && strings.EqualFold(l.Category, string(*p.Condition)) {
			reasons = append(reasons, ReasonConditionMatch)
		}

		if p.BodyType != nil && p.BodyType.Matches(body) {
			reasons = append(reasons, ReasonBodyTypeMatch)
		}

		if p.FamilySize != nil && *p.FamilySize >= largeFamilyCount && model.BodyTypeSUVOrMPV.Matches(body) {
			reasons = append(reasons, ReasonFamilyFit)
		}

		if p.DrivingEnvironment != nil {
			switch *p.DrivingEnvironment {
			case model.DrivingCity:
				if body == string(model.BodyTypeHatchback) || body == string(model.BodyTypeSedan) {
					reasons = append(reasons, ReasonCityFriendly)
				}
			case model.DrivingHighway:
				if body == string(model.BodyTypeSedan) || body == string(model.BodyTypeSUV) || body == string(model.BodyTypeWagon) {
					reasons = append(reasons, ReasonHighwayComfort)
				}
			}
		}
	}

	for _, f := range result.Factors {
		if f.Name == FactorMileage && f.SubScore >= lowMileageScore {
			reasons = append(reasons, ReasonLowMileage)
		}
	}

	if l.COELeftYears >= longCOEYears {
		reasons = append(reasons, ReasonLongCOE)
	}

	if result.Band == BandHigh {
		reasons = append(reasons, ReasonHighValue)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}

	return reasons
}
