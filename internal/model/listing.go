package model

import (
	"time"
)

// Listing is one car listing from the dataset. It is read-only to the
// recommendation pipeline.
type Listing struct {
	ID                  int64      `json:"id" db:"id" csv:"-"`
	ListingID           int64      `json:"listing_id" db:"listing_id" csv:"listing_id"`
	Category            string     `json:"category" db:"category" csv:"category"` // "new" or "used"
	Make                string     `json:"make" db:"make" csv:"make"`
	Model               string     `json:"model" db:"model" csv:"model"`
	Variant             *string    `json:"variant,omitempty" db:"variant" csv:"variant,omitempty"`
	BodyType            *string    `json:"body_type,omitempty" db:"body_type" csv:"body_type,omitempty"`
	PriceSGD            float64    `json:"price_sgd" db:"price_sgd" csv:"price_sgd"`
	Year                *int       `json:"year,omitempty" db:"year" csv:"year,omitempty"`
	MileageKM           float64    `json:"mileage_km" db:"mileage_km" csv:"mileage_km,omitempty"`
	COELeftYears        float64    `json:"coe_left_years" db:"coe_left_years" csv:"coe_left_years,omitempty"`
	DepreciationPerYear *float64   `json:"depreciation_per_year,omitempty" db:"depreciation_per_year" csv:"depreciation_per_year,omitempty"`
	Efficiency          *float64   `json:"efficiency,omitempty" db:"efficiency" csv:"efficiency,omitempty"`
	EfficiencyUnit      *string    `json:"efficiency_unit,omitempty" db:"efficiency_unit" csv:"efficiency_unit,omitempty"`
	DealerName          *string    `json:"dealer_name,omitempty" db:"dealer_name" csv:"dealer_name,omitempty"`
	DealerLink          *string    `json:"dealer_link,omitempty" db:"dealer_link" csv:"dealer_link,omitempty"`
	ListingURL          *string    `json:"listing_url,omitempty" db:"listing_url" csv:"listing_url,omitempty"`
	Colour              *string    `json:"colour,omitempty" db:"colour" csv:"colour,omitempty"`
	ScrapedAt           *time.Time `json:"scraped_at,omitempty" db:"scraped_at" csv:"-"`
}

// Title is "Make Model Variant"
func (l *Listing) Title() string {
	title := l.Make + " " + l.Model
	if l.Variant != nil && *l.Variant != "" {
		title += " " + *l.Variant
	}
	return title
}

// IsNew reports whether the listing is a new car
func (l *Listing) IsNew() bool {
	return l.Category == string(ConditionNew)
}

// ScoreFactor is one weighted component of the Value Score
type ScoreFactor struct {
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	SubScore float64 `json:"sub_score"` // 0-1
	Points   float64 `json:"points"`    // Weight * SubScore
	Detail   string  `json:"detail"`
}

// ScoredListing is a listing with its Value Score and contributing factors
type ScoredListing struct {
	Listing
	Score          float64       `json:"score"`
	Band           string        `json:"band"`
	Factors        []ScoreFactor `json:"factors"`
	MatchedReasons []string      `json:"matched_reasons"`
}

// Recommendation is one ranked, explained listing
type Recommendation struct {
	Rank        int           `json:"rank"`
	Result      ScoredListing `json:"result"`
	Explanation string        `json:"explanation"`
	Fallback    bool          `json:"explanation_fallback"`
}

// ListingQuery is the predicate set sent to the listing store
type ListingQuery struct {
	PriceMin            *float64
	PriceMax            *float64
	Condition           *Condition
	RequireRegistration bool // coe_left_years > 0
}

// EmbeddingItem is a single listing embedding
type EmbeddingItem struct {
	ListingID int64     `json:"listing_id" binding:"required"`
	Embedding []float32 `json:"embedding" binding:"required"`
	Text      string    `json:"text,omitempty"`
}
