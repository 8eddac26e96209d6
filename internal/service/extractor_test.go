package service

import (
	"testing"

	"caradvisor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBudget(t *testing.T) {
	e := NewFieldExtractor()

	tests := []struct {
		name    string
		answer  string
		wantMin float64
		wantMax float64
	}{
		{"single k amount", "around 100k", 70000, 100000},
		{"range with shared unit", "80-120k", 80000, 120000},
		{"range with both units", "somewhere 80k to 120k", 80000, 120000},
		{"reversed range", "120k-80k", 80000, 120000},
		{"dollar amount with commas", "my budget is $120,000", 84000, 120000},
		{"bare integer", "120000", 84000, 120000},
		{"millions", "1.2m tops", 840000, 1200000},
		{"between with and", "between 80k and 120k", 80000, 120000},
		{"unit on lower bound", "80k-120", 80000, 120000},
		{"amount next to a head count", "100k and 5 of us", 70000, 100000},
		{"range starting at zero", "0-100k", 70000, 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := e.Extract(tt.answer, model.StateAskBudget)
			require.NotNil(t, p.BudgetMax)
			require.NotNil(t, p.BudgetMin)
			assert.Equal(t, tt.wantMin, *p.BudgetMin)
			assert.Equal(t, tt.wantMax, *p.BudgetMax)
		})
	}
}

func TestExtractBudgetKeepsHeadCount(t *testing.T) {
	e := NewFieldExtractor()

	p := e.Extract("100k and 5 of us", model.StateAskBudget)
	require.NotNil(t, p.FamilySize)
	assert.Equal(t, 5, *p.FamilySize)

	p = e.Extract("we are 5 and 80k is the max", model.StateAskBudget)
	require.NotNil(t, p.BudgetMax)
	assert.Equal(t, 56000.0, *p.BudgetMin)
	assert.Equal(t, 80000.0, *p.BudgetMax)
	require.NotNil(t, p.FamilySize)
	assert.Equal(t, 5, *p.FamilySize)
}

func TestIsCorrection(t *testing.T) {
	e := NewFieldExtractor()

	assert.True(t, e.IsCorrection("actually make it 120k"))
	assert.True(t, e.IsCorrection("let's go used instead"))
	assert.True(t, e.IsCorrection("I want to change the budget to 90k"))
	assert.False(t, e.IsCorrection("not sure, we already spend 20000 a year on transport"))
	assert.False(t, e.IsCorrection("around 100k"))
}

func TestExtractBudgetIgnoresNoise(t *testing.T) {
	e := NewFieldExtractor()

	for _, answer := range []string{
		"not sure yet",
		"I drive about 15000 km a year",
		"maybe 300",
		"",
	} {
		p := e.Extract(answer, model.StateAskBudget)
		assert.Nil(t, p.BudgetMax, answer)
		assert.Nil(t, p.BudgetMin, answer)
	}
}

func TestExtractFamilySize(t *testing.T) {
	e := NewFieldExtractor()

	p := e.Extract("we are a family of 4", model.StateAskFamily)
	require.NotNil(t, p.FamilySize)
	assert.Equal(t, 4, *p.FamilySize)

	p = e.Extract("budget 80-120k for 5 of us", model.StateAskBudget)
	require.NotNil(t, p.FamilySize)
	assert.Equal(t, 5, *p.FamilySize)
	assert.Equal(t, 80000.0, *p.BudgetMin)

	p = e.Extract("12 people in my office", model.StateAskFamily)
	assert.Nil(t, p.FamilySize)

	p = e.Extract("four of us", model.StateAskFamily)
	require.NotNil(t, p.FamilySize)
	assert.Equal(t, 4, *p.FamilySize)

	p = e.Extract("four of us", model.StateAskBudget)
	assert.Nil(t, p.FamilySize)
}

func TestExtractCondition(t *testing.T) {
	e := NewFieldExtractor()

	tests := []struct {
		answer string
		state  model.InterviewState
		want   *model.Condition
	}{
		{"brand new please", model.StateAskCondition, model.ConditionPtr(model.ConditionNew)},
		{"a used one is fine", model.StateAskCondition, model.ConditionPtr(model.ConditionUsed)},
		{"second-hand", model.StateAskCondition, model.ConditionPtr(model.ConditionUsed)},
		{"new or used, whatever", model.StateAskCondition, model.ConditionPtr(model.ConditionEither)},
		{"either is fine", model.StateAskCondition, model.ConditionPtr(model.ConditionEither)},
		{"either is fine", model.StateAskBudget, nil},
		{"no idea", model.StateAskCondition, nil},
	}

	for _, tt := range tests {
		t.Run(tt.answer+"/"+string(tt.state), func(t *testing.T) {
			p := e.Extract(tt.answer, tt.state)
			assert.Equal(t, tt.want, p.Condition)
		})
	}
}

func TestExtractKeywordTables(t *testing.T) {
	e := NewFieldExtractor()

	tests := []struct {
		answer  string
		body    *model.BodyType
		driving *model.DrivingEnvironment
	}{
		{"an SUV for the kids", model.BodyTypePtr(model.BodyTypeSUV), nil},
		{"something for the family", model.BodyTypePtr(model.BodyTypeSUVOrMPV), nil},
		{"a sedan, mostly highway", model.BodyTypePtr(model.BodyTypeSedan), model.DrivingPtr(model.DrivingHighway)},
		{"city driving mostly", nil, model.DrivingPtr(model.DrivingCity)},
		{"a mix of city and highway", nil, model.DrivingPtr(model.DrivingMixed)},
		{"expressway commute every day", nil, model.DrivingPtr(model.DrivingHighway)},
		{"nothing in particular", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			p := e.Extract(tt.answer, model.StateAskPreference)
			assert.Equal(t, tt.body, p.BodyType)
			assert.Equal(t, tt.driving, p.DrivingEnvironment)
		})
	}
}

func TestExtractIsPure(t *testing.T) {
	e := NewFieldExtractor()
	answer := "family of 5, used car around 100k, mostly city"

	first := e.Extract(answer, model.StateAskBudget)
	second := e.Extract(answer, model.StateAskBudget)
	assert.Equal(t, first, second)
	assert.Equal(t,
		[]model.Field{model.FieldBudget, model.FieldFamilySize, model.FieldCondition, model.FieldBodyType, model.FieldDrivingEnvironment},
		first.Fields())
}
