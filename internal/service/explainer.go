package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"caradvisor/internal/model"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FallbackExplanation replaces prose that could not be generated
const FallbackExplanation = "This car is one of the best-value matches for your answers, based on its depreciation, mileage, remaining registration and brand reliability. A written explanation is not available right now."

// ExplanationRequest is the structured context for explaining one
// recommended listing
type ExplanationRequest struct {
	Rank           int
	ProfileSummary string
	History        []model.Turn
	Listing        model.Listing
	Score          float64
	Band           string
	Factors        []model.ScoreFactor
	MatchedReasons []string
}

// BuildExplanationRequest assembles the explanation context for the listing
// at rank
func BuildExplanationRequest(p *model.Profile, history []model.Turn, rank int, r model.ScoredListing) ExplanationRequest {
	return ExplanationRequest{
		Rank:           rank,
		ProfileSummary: p.Summary(),
		History:        history,
		Listing:        r.Listing,
		Score:          r.Score,
		Band:           r.Band,
		Factors:        r.Factors,
		MatchedReasons: r.MatchedReasons,
	}
}

// Prompt renders the request for a text generator
func (req ExplanationRequest) Prompt() string {
	var b strings.Builder
	l := req.Listing

	b.WriteString("You are a Singapore car consultant explaining one recommendation to a buyer.\n\n")
	fmt.Fprintf(&b, "Buyer profile: %s\n", req.ProfileSummary)
	if len(req.History) > 0 {
		b.WriteString("Interview:\n")
		for i, t := range req.History {
			fmt.Fprintf(&b, "%d. Q: %s\n   A: %s\n", i+1, t.Question.Text, t.Answer)
		}
	}

	fmt.Fprintf(&b, "\nCar #%d: %s (%s)\n", req.Rank, l.Title(), l.Category)
	fmt.Fprintf(&b, "- Price: S$%.0f\n", l.PriceSGD)
	if l.Year != nil {
		fmt.Fprintf(&b, "- Year: %d\n", *l.Year)
	}
	fmt.Fprintf(&b, "- Mileage: %.0f km\n", l.MileageKM)
	fmt.Fprintf(&b, "- COE left: %.1f years\n", l.COELeftYears)
	if l.BodyType != nil {
		fmt.Fprintf(&b, "- Body type: %s\n", *l.BodyType)
	}
	if l.Efficiency != nil {
		unit := ""
		if l.EfficiencyUnit != nil {
			unit = " " + *l.EfficiencyUnit
		}
		fmt.Fprintf(&b, "- Efficiency: %.1f%s\n", *l.Efficiency, unit)
	}
	if l.DealerName != nil {
		fmt.Fprintf(&b, "- Dealer: %s\n", *l.DealerName)
	}

	fmt.Fprintf(&b, "\nValue score: %.1f/100 (%s)\n", req.Score, req.Band)
	for _, f := range req.Factors {
		fmt.Fprintf(&b, "- %s: %.1f of %.0f points (%s)\n", f.Name, f.Points, f.Weight, f.Detail)
	}
	if len(req.MatchedReasons) > 0 {
		fmt.Fprintf(&b, "Matches: %s\n", strings.Join(req.MatchedReasons, ", "))
	}

	b.WriteString("\nIn 2-3 sentences, say why this car fits THIS buyer, naming the inputs you rely on (budget, family size, usage), its main trade-off, and what drives its value score. Plain prose only.")
	return b.String()
}

// Explainer obtains prose for recommended listings from a text generator.
// A failed, empty or timed-out generation degrades to FallbackExplanation.
type Explainer struct {
	gen         TextGenerator
	timeout     time.Duration
	concurrency int
	logger      *zap.Logger
}

// NewExplainer creates an explainer. gen may be nil, in which case every
// recommendation carries the fallback text.
func NewExplainer(gen TextGenerator, timeout time.Duration, concurrency int, logger *zap.Logger) *Explainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Explainer{gen: gen, timeout: timeout, concurrency: concurrency, logger: logger}
}

// ExplainHooks receive progress while explanations are generated. Calls are
// serialised.
type ExplainHooks struct {
	OnDelta func(rank int, delta string) error
	OnDone  func(rec model.Recommendation) error
}

// Explain generates explanations for ranked results concurrently. Only a
// hook error aborts; generator failures never do.
func (e *Explainer) Explain(ctx context.Context, p *model.Profile, history []model.Turn, ranked []model.ScoredListing, hooks ExplainHooks) ([]model.Recommendation, error) {
	recs := make([]model.Recommendation, len(ranked))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range ranked {
		g.Go(func() error {
			req := BuildExplanationRequest(p, history, i+1, ranked[i])

			var onDelta func(string) error
			if hooks.OnDelta != nil {
				onDelta = func(d string) error {
					mu.Lock()
					defer mu.Unlock()
					return hooks.OnDelta(req.Rank, d)
				}
			}

			text, err := e.generate(gctx, req, onDelta)
			rec := model.Recommendation{Rank: req.Rank, Result: ranked[i], Explanation: text}
			if err != nil {
				e.logger.Warn("explanation failed, using fallback",
					zap.Int("rank", req.Rank),
					zap.Int64("listing_id", ranked[i].ListingID),
					zap.Error(err),
				)
				rec.Explanation = FallbackExplanation
				rec.Fallback = true
			}

			mu.Lock()
			defer mu.Unlock()
			recs[i] = rec
			if hooks.OnDone != nil {
				return hooks.OnDone(rec)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recs, nil
}

func (e *Explainer) generate(ctx context.Context, req ExplanationRequest, onDelta func(string) error) (string, error) {
	if e.gen == nil {
		return "", ErrAIDisabled
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var (
		text string
		err  error
	)
	if sg, ok := e.gen.(StreamingGenerator); ok && onDelta != nil {
		text, err = sg.GenerateStream(ctx, req.Prompt(), onDelta)
	} else {
		text, err = e.gen.Generate(ctx, req.Prompt())
	}
	if err != nil {
		return "", eris.Wrapf(err, "%s generate", e.gen.Name())
	}
	if ctx.Err() != nil {
		return "", eris.Wrap(ctx.Err(), "explanation deadline")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", eris.New("empty explanation")
	}
	return text, nil
}
