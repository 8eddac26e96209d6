package service

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"caradvisor/internal/config"
	"caradvisor/internal/model"
	"caradvisor/internal/utils"
)

// Score factor names
const (
	FactorDepreciation = "depreciation"
	FactorMileage      = "mileage"
	FactorRegistration = "registration"
	FactorBrand        = "brand"
)

const (
	neutralSubScore = 0.5
	minScore        = 0.0
	maxScore        = 100.0
)

// Value bands on the 0-100 scale
const (
	BandHigh = "High"
	BandGood = "Good"
	BandFair = "Fair"
)

// brandReliability maps a normalized make to a multiplier in [0,1]
var brandReliability = map[string]float64{
	"toyota":        0.92,
	"lexus":         0.95,
	"honda":         0.90,
	"mazda":         0.85,
	"subaru":        0.78,
	"suzuki":        0.80,
	"mitsubishi":    0.72,
	"nissan":        0.72,
	"hyundai":       0.76,
	"kia":           0.76,
	"porsche":       0.74,
	"volvo":         0.68,
	"mercedes-benz": 0.66,
	"bmw":           0.64,
	"audi":          0.62,
	"volkswagen":    0.60,
	"skoda":         0.62,
	"tesla":         0.70,
	"byd":           0.65,
	"mini":          0.55,
	"peugeot":       0.50,
	"citroen":       0.48,
	"renault":       0.48,
	"jaguar":        0.40,
	"land rover":    0.38,
	"alfa romeo":    0.40,
}

// ValueScorer computes the Value Score of listings relative to their
// filtered population
type ValueScorer struct {
	cfg config.ScoringConfig
}

// NewValueScorer creates a scorer. cfg is assumed validated.
func NewValueScorer(cfg config.ScoringConfig) *ValueScorer {
	return &ValueScorer{cfg: cfg}
}

// Population holds the depreciation bounds of a filtered candidate set
type Population struct {
	minDep, maxDep float64
	size           int
}

// NewPopulation measures the annual depreciation range of listings
func (s *ValueScorer) NewPopulation(listings []model.Listing) Population {
	pop := Population{minDep: math.Inf(1), maxDep: math.Inf(-1), size: len(listings)}
	for i := range listings {
		d := s.AnnualDepreciation(&listings[i])
		pop.minDep = math.Min(pop.minDep, d)
		pop.maxDep = math.Max(pop.maxDep, d)
	}
	return pop
}

// ScoreAll scores every listing against the population they form, keeping
// input order
func (s *ValueScorer) ScoreAll(listings []model.Listing) []model.ScoredListing {
	pop := s.NewPopulation(listings)
	out := make([]model.ScoredListing, len(listings))
	for i := range listings {
		out[i] = s.Score(listings[i], pop)
	}
	return out
}

// Score computes one listing's Value Score. It depends only on the listing
// and the population bounds.
func (s *ValueScorer) Score(l model.Listing, pop Population) model.ScoredListing {
	dep := s.AnnualDepreciation(&l)
	depSub := neutralSubScore
	if spread := pop.maxDep - pop.minDep; spread > 0 && !math.IsInf(spread, 0) {
		depSub = clamp01(1 - (dep-pop.minDep)/spread)
	}

	age := s.ageYears(&l)
	expectedKM := age * s.cfg.ExpectedKMPerYear
	mileageSub := clamp01(1 - (l.MileageKM/expectedKM)/2)

	regSub := clamp01(math.Min(l.COELeftYears, s.cfg.SchemeYears) / s.cfg.SchemeYears)

	brand := utils.NormalizeBrand(l.Make)
	brandSub, known := brandReliability[brand]
	if !known {
		brandSub = neutralSubScore
	}

	factors := []model.ScoreFactor{
		factor(FactorDepreciation, s.cfg.WeightDepreciation, depSub,
			fmt.Sprintf("S$%.0f/yr depreciation (range S$%.0f-S$%.0f)", dep, finite(pop.minDep, dep), finite(pop.maxDep, dep))),
		factor(FactorMileage, s.cfg.WeightMileage, mileageSub,
			fmt.Sprintf("%.0f km against %.0f km expected for %.1f years", l.MileageKM, expectedKM, age)),
		factor(FactorRegistration, s.cfg.WeightRegistration, regSub,
			fmt.Sprintf("%.1f of %.0f registration years left", l.COELeftYears, s.cfg.SchemeYears)),
		factor(FactorBrand, s.cfg.WeightBrand, brandSub, brandDetail(brand, brandSub, known)),
	}

	total := 0.0
	for _, f := range factors {
		total += f.Points
	}
	total = math.Max(minScore, math.Min(maxScore, total))
	total = math.Round(total*100) / 100

	// largest contribution first; SortStableFunc keeps component order on ties
	slices.SortStableFunc(factors, func(a, b model.ScoreFactor) int {
		return cmp.Compare(b.Points, a.Points)
	})

	return model.ScoredListing{
		Listing: l,
		Score:   total,
		Band:    ValueBand(total),
		Factors: factors,
	}
}

// AnnualDepreciation is the dataset value when present, otherwise the
// price divided by the car's age
func (s *ValueScorer) AnnualDepreciation(l *model.Listing) float64 {
	if l.DepreciationPerYear != nil && *l.DepreciationPerYear > 0 {
		return *l.DepreciationPerYear
	}
	return l.PriceSGD / s.ageYears(l)
}

// ageYears derives the car's age from the registration scheme, floored at
// one year
func (s *ValueScorer) ageYears(l *model.Listing) float64 {
	return math.Max(s.cfg.SchemeYears-l.COELeftYears, 1)
}

// ValueBand buckets a Value Score
func ValueBand(score float64) string {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 65:
		return BandGood
	default:
		return BandFair
	}
}

func factor(name string, weight, sub float64, detail string) model.ScoreFactor {
	return model.ScoreFactor{
		Name:     name,
		Weight:   weight,
		SubScore: math.Round(sub*1000) / 1000,
		Points:   weight * sub,
		Detail:   detail,
	}
}

func brandDetail(brand string, sub float64, known bool) string {
	if brand == "" {
		return "unknown make, neutral reliability"
	}
	if !known {
		return fmt.Sprintf("%s: no reliability data, neutral", brand)
	}
	return fmt.Sprintf("%s reliability %.2f", brand, sub)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return neutralSubScore
	}
	return math.Max(0, math.Min(1, v))
}

func finite(v, fallback float64) float64 {
	if math.IsInf(v, 0) {
		return fallback
	}
	return v
}
