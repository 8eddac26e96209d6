package service

import (
	"testing"

	"caradvisor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSingleListingPopulation(t *testing.T) {
	s := NewValueScorer(defaultScoring())

	scored := s.ScoreAll([]model.Listing{listing(1, "Toyota", "new", 100000, 0, 10)})
	require.Len(t, scored, 1)
	r := scored[0]

	// depreciation is neutral in a population of one
	assert.InDelta(t, 81.3, r.Score, 0.001)
	assert.Equal(t, BandHigh, r.Band)

	names := make([]string, len(r.Factors))
	for i, f := range r.Factors {
		names[i] = f.Name
	}
	assert.Equal(t, []string{FactorMileage, FactorRegistration, FactorDepreciation, FactorBrand}, names)
	assert.InDelta(t, 0.5, r.Factors[2].SubScore, 1e-9)
}

func TestScoreAlwaysInRange(t *testing.T) {
	s := NewValueScorer(defaultScoring())
	listings := []model.Listing{
		listing(1, "Toyota", "used", 50000, 0, 12),
		listing(2, "Unknown Motors", "used", 250000, 900000, 0.1),
		listing(3, "", "used", 0, 0, 10),
		listing(4, "merc", "used", 120000, 120000, 3),
		listing(5, "Honda", "used", 80000, 20000, 5),
	}
	listings[1].DepreciationPerYear = model.Float64(-10)

	for _, r := range s.ScoreAll(listings) {
		assert.GreaterOrEqual(t, r.Score, 0.0, r.Make)
		assert.LessOrEqual(t, r.Score, 100.0, r.Make)
		for _, f := range r.Factors {
			assert.GreaterOrEqual(t, f.SubScore, 0.0)
			assert.LessOrEqual(t, f.SubScore, 1.0)
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s := NewValueScorer(defaultScoring())
	listings := []model.Listing{
		listing(1, "Toyota", "used", 90000, 60000, 6),
		listing(2, "BMW", "used", 110000, 30000, 8),
	}
	assert.Equal(t, s.ScoreAll(listings), s.ScoreAll(listings))
}

func TestDepreciationNormalization(t *testing.T) {
	s := NewValueScorer(defaultScoring())
	cheap := listing(1, "Toyota", "used", 50000, 50000, 5) // 10000/yr
	dear := listing(2, "Toyota", "used", 100000, 50000, 5) // 20000/yr

	scored := s.ScoreAll([]model.Listing{cheap, dear})
	assert.Equal(t, 1.0, findFactor(scored[0], FactorDepreciation).SubScore)
	assert.Equal(t, 0.0, findFactor(scored[1], FactorDepreciation).SubScore)
	assert.Greater(t, scored[0].Score, scored[1].Score)
}

func TestAnnualDepreciation(t *testing.T) {
	s := NewValueScorer(defaultScoring())

	l := listing(1, "Toyota", "used", 100000, 0, 5)
	assert.Equal(t, 20000.0, s.AnnualDepreciation(&l))

	l.DepreciationPerYear = model.Float64(12500)
	assert.Equal(t, 12500.0, s.AnnualDepreciation(&l))

	// age is scheme years minus registration left: 10 - 0
	zero := listing(2, "Toyota", "used", 30000, 0, 0)
	assert.Equal(t, 3000.0, s.AnnualDepreciation(&zero))

	// age is floored at one year
	fresh := listing(3, "Toyota", "used", 30000, 0, 10)
	assert.Equal(t, 30000.0, s.AnnualDepreciation(&fresh))
}

func TestDepreciationFollowsAge(t *testing.T) {
	s := NewValueScorer(defaultScoring())
	young := listing(1, "Toyota", "used", 100000, 0, 9) // age 1
	old := listing(2, "Toyota", "used", 100000, 0, 1)   // age 9

	assert.Equal(t, 100000.0, s.AnnualDepreciation(&young))
	assert.InDelta(t, 11111.11, s.AnnualDepreciation(&old), 0.01)

	scored := s.ScoreAll([]model.Listing{young, old})
	assert.Equal(t, 0.0, findFactor(scored[0], FactorDepreciation).SubScore)
	assert.Equal(t, 1.0, findFactor(scored[1], FactorDepreciation).SubScore)
}

func TestMileageAndBrandSubScores(t *testing.T) {
	s := NewValueScorer(defaultScoring())

	// 5 years old, expected 75000 km
	atBaseline := s.ScoreAll([]model.Listing{listing(1, "Proton", "used", 50000, 75000, 5)})[0]
	assert.InDelta(t, 0.5, findFactor(atBaseline, FactorMileage).SubScore, 1e-9)
	assert.InDelta(t, 0.5, findFactor(atBaseline, FactorBrand).SubScore, 1e-9)
	assert.InDelta(t, 0.5, findFactor(atBaseline, FactorRegistration).SubScore, 1e-9)

	alias := s.ScoreAll([]model.Listing{listing(1, "Merc", "used", 50000, 300000, 5)})[0]
	assert.InDelta(t, 0.66, findFactor(alias, FactorBrand).SubScore, 1e-9)
	assert.Equal(t, 0.0, findFactor(alias, FactorMileage).SubScore)
}

func TestValueBand(t *testing.T) {
	assert.Equal(t, BandHigh, ValueBand(80))
	assert.Equal(t, BandGood, ValueBand(65))
	assert.Equal(t, BandFair, ValueBand(64.99))
}

func findFactor(r model.ScoredListing, name string) model.ScoreFactor {
	for _, f := range r.Factors {
		if f.Name == name {
			return f
		}
	}
	return model.ScoreFactor{}
}
