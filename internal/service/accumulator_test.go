package service

import (
	"testing"

	"caradvisor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSetOnceFields(t *testing.T) {
	acc := NewProfileAccumulator(5)

	changed := acc.Merge(&model.Profile{FamilySize: model.Int(4)}, model.StateAskFamily, false)
	assert.Equal(t, []model.Field{model.FieldFamilySize}, changed)

	changed = acc.Merge(&model.Profile{FamilySize: model.Int(4)}, model.StateAskFamily, true)
	assert.Empty(t, changed)
	assert.Equal(t, 4, *acc.Profile().FamilySize)

	acc.Merge(&model.Profile{
		FamilySize:         model.Int(2),
		BodyType:           model.BodyTypePtr(model.BodyTypeSedan),
		DrivingEnvironment: model.DrivingPtr(model.DrivingCity),
	}, model.StateAskFamily, false)
	acc.Merge(&model.Profile{
		BodyType:           model.BodyTypePtr(model.BodyTypeSUV),
		DrivingEnvironment: model.DrivingPtr(model.DrivingHighway),
	}, model.StateAskPreference, true)

	p := acc.Profile()
	assert.Equal(t, 4, *p.FamilySize)
	assert.Equal(t, model.BodyTypeSedan, *p.BodyType)
	assert.Equal(t, model.DrivingCity, *p.DrivingEnvironment)
}

func TestMergeCorrectionOverwrites(t *testing.T) {
	acc := NewProfileAccumulator(5)

	acc.Merge(&model.Profile{BudgetMin: model.Float64(70000), BudgetMax: model.Float64(100000)}, model.StateAskBudget, false)
	acc.Merge(&model.Profile{Condition: model.ConditionPtr(model.ConditionNew)}, model.StateAskCondition, false)

	changed := acc.Merge(&model.Profile{
		BudgetMin: model.Float64(80000),
		BudgetMax: model.Float64(120000),
		Condition: model.ConditionPtr(model.ConditionUsed),
	}, model.StateAskUsage, true)
	assert.Equal(t, []model.Field{model.FieldBudget, model.FieldCondition}, changed)

	p := acc.Profile()
	assert.Equal(t, 80000.0, *p.BudgetMin)
	assert.Equal(t, 120000.0, *p.BudgetMax)
	assert.Equal(t, model.ConditionUsed, *p.Condition)
}

func TestMergeKeepsBudgetOnOtherQuestions(t *testing.T) {
	acc := NewProfileAccumulator(5)
	acc.Merge(&model.Profile{BudgetMin: model.Float64(70000), BudgetMax: model.Float64(100000)}, model.StateAskBudget, false)

	// "we already spend 20000 a year on transport" while asked about family
	changed := acc.Merge(&model.Profile{BudgetMin: model.Float64(14000), BudgetMax: model.Float64(20000)}, model.StateAskFamily, false)
	assert.Empty(t, changed)

	p := acc.Profile()
	assert.Equal(t, 70000.0, *p.BudgetMin)
	assert.Equal(t, 100000.0, *p.BudgetMax)

	// re-asking the budget question replaces it
	changed = acc.Merge(&model.Profile{BudgetMin: model.Float64(84000), BudgetMax: model.Float64(120000)}, model.StateAskBudget, false)
	assert.Equal(t, []model.Field{model.FieldBudget}, changed)
	assert.Equal(t, 120000.0, *acc.Profile().BudgetMax)
}

func TestMergeFirstMentionSetsBudgetAnywhere(t *testing.T) {
	acc := NewProfileAccumulator(5)

	changed := acc.Merge(&model.Profile{BudgetMin: model.Float64(56000), BudgetMax: model.Float64(80000)}, model.StateAskFamily, false)
	assert.Equal(t, []model.Field{model.FieldBudget}, changed)
	assert.Equal(t, 80000.0, *acc.Profile().BudgetMax)
}

func TestMergeConditionOnlyOnItsQuestion(t *testing.T) {
	acc := NewProfileAccumulator(5)
	acc.Merge(&model.Profile{
		BudgetMin: model.Float64(70000),
		BudgetMax: model.Float64(100000),
		Condition: model.ConditionPtr(model.ConditionNew),
	}, model.StateAskBudget, false)

	changed := acc.Merge(&model.Profile{Condition: model.ConditionPtr(model.ConditionUsed)}, model.StateAskUsage, false)
	assert.Empty(t, changed)
	assert.Equal(t, model.ConditionNew, *acc.Profile().Condition)

	changed = acc.Merge(&model.Profile{
		BudgetMin: model.Float64(14000),
		BudgetMax: model.Float64(20000),
		Condition: model.ConditionPtr(model.ConditionUsed),
	}, model.StateAskCondition, false)
	assert.Equal(t, []model.Field{model.FieldCondition}, changed)

	p := acc.Profile()
	assert.Equal(t, model.ConditionUsed, *p.Condition)
	assert.Equal(t, 100000.0, *p.BudgetMax)
}

func TestMergeNilAndEmpty(t *testing.T) {
	acc := NewProfileAccumulator(5)
	assert.Empty(t, acc.Merge(nil, model.StateAskBudget, false))
	assert.Empty(t, acc.Merge(&model.Profile{}, model.StateAskBudget, true))
	assert.True(t, acc.Profile().IsEmpty())
}

func TestProfileIsCopy(t *testing.T) {
	acc := NewProfileAccumulator(5)
	acc.Merge(&model.Profile{FamilySize: model.Int(3)}, model.StateAskFamily, false)

	p := acc.Profile()
	*p.FamilySize = 9
	assert.Equal(t, 3, *acc.Profile().FamilySize)
}

func TestIsComplete(t *testing.T) {
	t.Run("budget alone is not enough", func(t *testing.T) {
		acc := NewProfileAccumulator(5)
		acc.Merge(&model.Profile{BudgetMin: model.Float64(70000), BudgetMax: model.Float64(100000)}, model.StateAskBudget, false)
		assert.False(t, acc.IsComplete())
	})

	t.Run("budget plus one field", func(t *testing.T) {
		acc := NewProfileAccumulator(5)
		acc.Merge(&model.Profile{BudgetMax: model.Float64(100000), Condition: model.ConditionPtr(model.ConditionEither)}, model.StateAskBudget, false)
		assert.True(t, acc.IsComplete())
	})

	t.Run("fields without budget", func(t *testing.T) {
		acc := NewProfileAccumulator(5)
		acc.Merge(&model.Profile{FamilySize: model.Int(2), BodyType: model.BodyTypePtr(model.BodyTypeSUV)}, model.StateAskFamily, false)
		assert.False(t, acc.IsComplete())
	})

	t.Run("question cap reached", func(t *testing.T) {
		acc := NewProfileAccumulator(2)
		acc.RecordAnswer()
		require.False(t, acc.IsComplete())
		acc.RecordAnswer()
		assert.True(t, acc.IsComplete())
	})
}
