package service

import (
	"context"
	"time"

	"caradvisor/internal/model"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Recommendation stream events
const (
	EventFiltering      = "filtering"
	EventScoring        = "scoring"
	EventExplanation    = "explanation"
	EventRecommendation = "recommendation"
	EventResults        = "results"
	EventDone           = "done"
)

// RecommendEventCallback is called for streaming recommendation events
type RecommendEventCallback func(event string, data any) error

// RecommendService runs filter, score, rank and explain for a profile
type RecommendService struct {
	store     ListingStore
	filter    *ListingFilter
	scorer    *ValueScorer
	ranker    *Ranker
	explainer *Explainer
	logger    *zap.Logger
}

// NewRecommendService creates a new recommendation service
func NewRecommendService(
	store ListingStore,
	filter *ListingFilter,
	scorer *ValueScorer,
	ranker *Ranker,
	explainer *Explainer,
	logger *zap.Logger,
) *RecommendService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendService{
		store:     store,
		filter:    filter,
		scorer:    scorer,
		ranker:    ranker,
		explainer: explainer,
		logger:    logger,
	}
}

// Recommend returns the top-k explained listings for p. An empty result is
// a valid outcome.
func (s *RecommendService) Recommend(ctx context.Context, p *model.Profile, history []model.Turn, k int) (*model.RecommendResponse, error) {
	return s.RecommendStream(ctx, p, history, k, nil)
}

// RecommendStream is Recommend with progress events. callback may be nil.
func (s *RecommendService) RecommendStream(ctx context.Context, p *model.Profile, history []model.Turn, k int, callback RecommendEventCallback) (*model.RecommendResponse, error) {
	startTime := time.Now()
	if p == nil {
		p = &model.Profile{}
	}
	if err := p.Validate(); err != nil {
		return nil, eris.Wrap(err, "invalid profile")
	}

	emit := func(event string, data any) error {
		if callback == nil {
			return nil
		}
		return callback(event, data)
	}

	if err := emit(EventFiltering, map[string]any{
		"status":  "Finding listings that match your answers...",
		"profile": p,
	}); err != nil {
		return nil, err
	}

	candidates := s.filter.Query(ctx, p)

	if err := emit(EventScoring, map[string]any{
		"status":     "Scoring value for money...",
		"candidates": len(candidates),
	}); err != nil {
		return nil, err
	}

	scored := s.scorer.ScoreAll(candidates)
	top := s.ranker.Rank(scored, k)
	s.ranker.Annotate(top, p)

	hooks := ExplainHooks{}
	if callback != nil {
		hooks.OnDelta = func(rank int, delta string) error {
			return callback(EventExplanation, map[string]any{"rank": rank, "content": delta})
		}
		hooks.OnDone = func(rec model.Recommendation) error {
			return callback(EventRecommendation, rec)
		}
	}

	recs, err := s.explainer.Explain(ctx, p, history, top, hooks)
	if err != nil {
		return nil, err
	}

	resp := &model.RecommendResponse{
		Profile:         p,
		Recommendations: recs,
		Candidates:      len(candidates),
		Took:            time.Since(startTime).Milliseconds(),
	}

	s.logger.Info("recommendations ready",
		zap.String("profile", p.Summary()),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(recs)),
		zap.Int64("took_ms", resp.Took),
	)

	if err := emit(EventResults, resp); err != nil {
		return nil, err
	}
	return resp, emit(EventDone, map[string]any{"took_ms": resp.Took})
}

// GetListing retrieves a single listing by ID
func (s *RecommendService) GetListing(ctx context.Context, listingID int64) (*model.Listing, error) {
	return s.store.GetListingByID(ctx, listingID)
}
