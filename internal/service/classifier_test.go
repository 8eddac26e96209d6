package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"caradvisor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator returns canned output, optionally per prompt substring
type stubGenerator struct {
	out   string
	err   error
	calls atomic.Int32
	fn    func(ctx context.Context, prompt string) (string, error)
}

func (s *stubGenerator) Name() string { return "stub" }

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls.Add(1)
	if s.fn != nil {
		return s.fn(ctx, prompt)
	}
	return s.out, s.err
}

func TestLLMClassifier(t *testing.T) {
	tests := []struct {
		name  string
		out   string
		field model.Field
		want  *model.Profile
	}{
		{
			name:  "condition from fenced json",
			out:   "```json\n{\"condition_preference\": \"used\"}\n```",
			field: model.FieldCondition,
			want:  &model.Profile{Condition: model.ConditionPtr(model.ConditionUsed)},
		},
		{
			name:  "budget max derives floor",
			out:   `{"budget_max": 90000}`,
			field: model.FieldBudget,
			want:  &model.Profile{BudgetMin: model.Float64(63000), BudgetMax: model.Float64(90000)},
		},
		{
			name:  "other fields are dropped",
			out:   `{"family_size": 3, "body_type": "suv"}`,
			field: model.FieldFamilySize,
			want:  &model.Profile{FamilySize: model.Int(3)},
		},
		{
			name:  "nothing stated",
			out:   `{}`,
			field: model.FieldDrivingEnvironment,
			want:  &model.Profile{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewLLMClassifier(&stubGenerator{out: tt.out})
			got, err := c.Classify(context.Background(), "q", "a", tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLLMClassifierRejectsInvalid(t *testing.T) {
	for _, out := range []string{
		`{"family_size": 40}`,
		`not json at all`,
	} {
		c := NewLLMClassifier(&stubGenerator{out: out})
		_, err := c.Classify(context.Background(), "q", "a", model.FieldFamilySize)
		assert.Error(t, err, out)
	}

	c := NewLLMClassifier(&stubGenerator{out: `{"body_type": "tractor"}`})
	_, err := c.Classify(context.Background(), "q", "a", model.FieldBodyType)
	assert.Error(t, err)

	c = NewLLMClassifier(&stubGenerator{err: errors.New("down")})
	_, err = c.Classify(context.Background(), "q", "a", model.FieldBodyType)
	assert.Error(t, err)
}
