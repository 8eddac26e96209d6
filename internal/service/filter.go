package service

import (
	"context"
	"strings"
	"time"

	"caradvisor/internal/model"

	"go.uber.org/zap"
)

// ListingStore is the queryable table of listings
type ListingStore interface {
	SearchListings(ctx context.Context, q model.ListingQuery) ([]model.Listing, error)
	GetListingByID(ctx context.Context, listingID int64) (*model.Listing, error)
}

// ListingFilter turns a profile into listing predicates
type ListingFilter struct {
	store   ListingStore
	timeout time.Duration
	logger  *zap.Logger
}

// NewListingFilter creates a filter over store. timeout bounds each store
// query; zero means no bound beyond the caller's context.
func NewListingFilter(store ListingStore, timeout time.Duration, logger *zap.Logger) *ListingFilter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingFilter{store: store, timeout: timeout, logger: logger}
}

// BuildQuery translates a profile into store predicates. Missing profile
// fields impose no predicate; remaining registration is always required.
func BuildQuery(p *model.Profile) model.ListingQuery {
	q := model.ListingQuery{RequireRegistration: true}
	if p == nil {
		return q
	}
	// a floor without a ceiling leaves price unrestricted
	if p.BudgetMax != nil {
		q.PriceMax = model.Float64(*p.BudgetMax)
		q.PriceMin = model.Float64(0)
		if p.BudgetMin != nil {
			q.PriceMin = model.Float64(*p.BudgetMin)
		}
	}
	if p.Condition != nil && *p.Condition != model.ConditionEither {
		c := *p.Condition
		q.Condition = &c
	}
	return q
}

// Matches reports whether a listing satisfies every predicate of q
func Matches(l *model.Listing, q model.ListingQuery) bool {
	if q.RequireRegistration && l.COELeftYears <= 0 {
		return false
	}
	if q.PriceMin != nil && l.PriceSGD < *q.PriceMin {
		return false
	}
	if q.PriceMax != nil && l.PriceSGD > *q.PriceMax {
		return false
	}
	if q.Condition != nil && !strings.EqualFold(l.Category, string(*q.Condition)) {
		return false
	}
	return true
}

// Filter applies the profile predicates to listings in memory, keeping the
// input order. Listings without remaining registration never pass.
func (f *ListingFilter) Filter(p *model.Profile, listings []model.Listing) []model.Listing {
	q := BuildQuery(p)
	out := make([]model.Listing, 0, len(listings))
	for i := range listings {
		if Matches(&listings[i], q) {
			out = append(out, listings[i])
		}
	}
	return out
}

// Query fetches the listings matching p from the store. A store failure is
// logged and yields no listings.
func (f *ListingFilter) Query(ctx context.Context, p *model.Profile) []model.Listing {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	listings, err := f.store.SearchListings(ctx, BuildQuery(p))
	if err != nil {
		f.logger.Warn("listing store query failed, continuing with no listings", zap.Error(err))
		return []model.Listing{}
	}

	// re-check in memory, the registration rule must hold for any store
	filtered := f.Filter(p, listings)
	f.logger.Info("listings filtered",
		zap.Int("fetched", len(listings)),
		zap.Int("matched", len(filtered)),
	)
	return filtered
}
