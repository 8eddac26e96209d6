package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"caradvisor/internal/model"
	"caradvisor/internal/utils"

	"github.com/rotisserie/eris"
)

var fieldHints = map[model.Field]string{
	model.FieldBudget:             `"budget_min" and "budget_max": numbers in SGD ("100k" = 100000)`,
	model.FieldFamilySize:         `"family_size": integer between 1 and 9`,
	model.FieldCondition:          `"condition_preference": one of "new", "used", "either"`,
	model.FieldBodyType:           `"body_type": one of "hatchback", "sedan", "suv", "mpv", "wagon", "sports", "suv_or_mpv"`,
	model.FieldDrivingEnvironment: `"driving_environment": one of "city", "highway", "mixed"`,
}

// LLMClassifier extracts one profile field from an answer with a text
// generator that is asked for JSON
type LLMClassifier struct {
	gen TextGenerator
}

// NewLLMClassifier creates a classifier backed by gen
func NewLLMClassifier(gen TextGenerator) *LLMClassifier {
	return &LLMClassifier{gen: gen}
}

// Classify returns a profile holding at most the requested field
func (c *LLMClassifier) Classify(ctx context.Context, question, answer string, field model.Field) (*model.Profile, error) {
	hint, ok := fieldHints[field]
	if !ok {
		return nil, eris.Errorf("unknown field %q", field)
	}

	prompt := fmt.Sprintf(`A car buyer in Singapore was asked: %q
They answered: %q

Extract only this field if the answer states it: %s.
Respond ONLY with a JSON object. If the answer does not state it, respond with {}.`, question, answer, hint)

	out, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, eris.Wrap(err, "classifier generate")
	}

	var parsed model.Profile
	if err := utils.ParseAIJSON(out, &parsed); err != nil {
		return nil, eris.Wrapf(err, "classifier output %q", strings.TrimSpace(out))
	}

	result := parsed.Only(field)
	if field == model.FieldBudget && result.BudgetMax != nil && result.BudgetMin == nil {
		result.BudgetMin = model.Float64(math.Round(*result.BudgetMax * 7 / 10))
	}
	if field == model.FieldBudget && result.BudgetMax == nil {
		result.BudgetMin = nil
	}
	if err := result.Validate(); err != nil {
		return nil, eris.Wrap(err, "classifier returned invalid value")
	}
	return result, nil
}
