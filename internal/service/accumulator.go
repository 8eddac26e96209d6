package service

import (
	"caradvisor/internal/model"
)

// ProfileAccumulator owns the profile of one interview session.
//
// Budget and condition preference are set by the first answer that mentions
// them. Afterwards they change only when the question being answered asks
// for that field or the answer reads as a correction. Family size, body type
// and driving environment are set once; later mentions are ignored.
type ProfileAccumulator struct {
	profile      *model.Profile
	answered     int
	maxQuestions int
}

// NewProfileAccumulator creates an accumulator for a session capped at
// maxQuestions answers
func NewProfileAccumulator(maxQuestions int) *ProfileAccumulator {
	return &ProfileAccumulator{
		profile:      &model.Profile{},
		maxQuestions: maxQuestions,
	}
}

// Merge folds a partial profile extracted from an answer to the question in
// state into the session profile and returns the fields that changed.
// correction marks answers that revise something said earlier.
func (a *ProfileAccumulator) Merge(partial *model.Profile, state model.InterviewState, correction bool) []model.Field {
	if partial == nil {
		return nil
	}
	var changed []model.Field
	p := a.profile

	if partial.BudgetMax != nil && (p.BudgetMax == nil || state == model.StateAskBudget || correction) {
		if !sameFloat(p.BudgetMax, partial.BudgetMax) || !sameFloat(p.BudgetMin, partial.BudgetMin) {
			p.BudgetMin = copyFloat(partial.BudgetMin)
			p.BudgetMax = copyFloat(partial.BudgetMax)
			changed = append(changed, model.FieldBudget)
		}
	}

	if partial.Condition != nil && (p.Condition == nil ||
		(*p.Condition != *partial.Condition && (state == model.StateAskCondition || correction))) {
		c := *partial.Condition
		p.Condition = &c
		changed = append(changed, model.FieldCondition)
	}

	if partial.FamilySize != nil && p.FamilySize == nil {
		p.FamilySize = model.Int(*partial.FamilySize)
		changed = append(changed, model.FieldFamilySize)
	}

	if partial.BodyType != nil && p.BodyType == nil {
		p.BodyType = model.BodyTypePtr(*partial.BodyType)
		changed = append(changed, model.FieldBodyType)
	}

	if partial.DrivingEnvironment != nil && p.DrivingEnvironment == nil {
		p.DrivingEnvironment = model.DrivingPtr(*partial.DrivingEnvironment)
		changed = append(changed, model.FieldDrivingEnvironment)
	}

	return changed
}

// RecordAnswer counts one answered question
func (a *ProfileAccumulator) RecordAnswer() {
	a.answered++
}

// Answered returns the number of answered questions
func (a *ProfileAccumulator) Answered() int {
	return a.answered
}

// MaxQuestions returns the question cap
func (a *ProfileAccumulator) MaxQuestions() int {
	return a.maxQuestions
}

// IsComplete reports whether the profile holds a budget and at least one
// other field, or the question cap has been reached
func (a *ProfileAccumulator) IsComplete() bool {
	if a.answered >= a.maxQuestions {
		return true
	}
	p := a.profile
	if !p.Has(model.FieldBudget) {
		return false
	}
	return p.Has(model.FieldFamilySize) || p.Has(model.FieldCondition) ||
		p.Has(model.FieldBodyType) || p.Has(model.FieldDrivingEnvironment)
}

// Profile returns a copy of the accumulated profile
func (a *ProfileAccumulator) Profile() *model.Profile {
	return a.profile.Clone()
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return model.Float64(*v)
}
