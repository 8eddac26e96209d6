package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"caradvisor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankedFixture() []model.ScoredListing {
	s := NewValueScorer(defaultScoring())
	scored := s.ScoreAll([]model.Listing{
		listing(1, "Toyota", "used", 90000, 40000, 6),
		listing(2, "Honda", "used", 95000, 60000, 5),
		listing(3, "Mazda", "used", 100000, 30000, 7),
	})
	return NewRanker(3).Rank(scored, 3)
}

func TestExplanationRequestPrompt(t *testing.T) {
	ranked := rankedFixture()
	p := &model.Profile{BudgetMax: model.Float64(100000), FamilySize: model.Int(4)}
	history := []model.Turn{{Question: model.Question{Text: "Budget?"}, Answer: "100k"}}

	req := BuildExplanationRequest(p, history, 1, ranked[0])
	prompt := req.Prompt()

	assert.Equal(t, 1, req.Rank)
	assert.Contains(t, prompt, "family of 4")
	assert.Contains(t, prompt, "Q: Budget?")
	assert.Contains(t, prompt, "Car #1: "+ranked[0].Title())
	assert.Contains(t, prompt, FactorDepreciation)
}

func TestExplainTimeoutFallsBackForOneListing(t *testing.T) {
	ranked := rankedFixture()
	slowTitle := ranked[1].Title()

	gen := &stubGenerator{fn: func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "Car #2: "+slowTitle) {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "Generated prose.", nil
	}}
	e := NewExplainer(gen, 50*time.Millisecond, 3, nil)

	recs, err := e.Explain(context.Background(), &model.Profile{}, nil, ranked, ExplainHooks{})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	for i, rec := range recs {
		assert.Equal(t, i+1, rec.Rank)
		assert.Equal(t, ranked[i].ListingID, rec.Result.ListingID)
	}
	assert.Equal(t, "Generated prose.", recs[0].Explanation)
	assert.False(t, recs[0].Fallback)
	assert.Equal(t, FallbackExplanation, recs[1].Explanation)
	assert.True(t, recs[1].Fallback)
	assert.Equal(t, "Generated prose.", recs[2].Explanation)
}

func TestExplainFallbacks(t *testing.T) {
	ranked := rankedFixture()

	for name, gen := range map[string]TextGenerator{
		"no generator": nil,
		"empty output": &stubGenerator{out: "   "},
		"error":        &stubGenerator{err: errors.New("503")},
	} {
		t.Run(name, func(t *testing.T) {
			recs, err := NewExplainer(gen, time.Second, 2, nil).Explain(context.Background(), nil, nil, ranked, ExplainHooks{})
			require.NoError(t, err)
			require.Len(t, recs, 3)
			for _, rec := range recs {
				assert.Equal(t, FallbackExplanation, rec.Explanation)
				assert.True(t, rec.Fallback)
			}
		})
	}
}

func TestExplainHooks(t *testing.T) {
	ranked := rankedFixture()
	e := NewExplainer(&stubGenerator{out: "ok"}, time.Second, 2, nil)

	var done []int
	_, err := e.Explain(context.Background(), nil, nil, ranked, ExplainHooks{
		OnDone: func(rec model.Recommendation) error {
			done = append(done, rec.Rank)
			return nil
		},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3}, done)

	hookErr := errors.New("client gone")
	_, err = e.Explain(context.Background(), nil, nil, ranked, ExplainHooks{
		OnDone: func(rec model.Recommendation) error { return hookErr },
	})
	assert.ErrorIs(t, err, hookErr)
}

func TestExplainEmpty(t *testing.T) {
	recs, err := NewExplainer(&stubGenerator{out: "x"}, time.Second, 2, nil).Explain(context.Background(), nil, nil, nil, ExplainHooks{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}
