package service

import (
	"context"
	"errors"

	"caradvisor/internal/config"
	"caradvisor/internal/model"
)

type stubStore struct {
	listings  []model.Listing
	err       error
	lastQuery model.ListingQuery
}

func (s *stubStore) SearchListings(ctx context.Context, q model.ListingQuery) ([]model.Listing, error) {
	s.lastQuery = q
	if s.err != nil {
		return nil, s.err
	}
	return s.listings, nil
}

func (s *stubStore) GetListingByID(ctx context.Context, id int64) (*model.Listing, error) {
	for i := range s.listings {
		if s.listings[i].ListingID == id {
			return &s.listings[i], nil
		}
	}
	return nil, nil
}

var errStoreDown = errors.New("connection refused")

func defaultScoring() config.ScoringConfig {
	return config.ScoringConfig{
		WeightDepreciation: 35,
		WeightMileage:      25,
		WeightRegistration: 25,
		WeightBrand:        15,
		ExpectedKMPerYear:  15000,
		SchemeYears:        10,
	}
}

func listing(id int64, make, category string, price, mileage, coe float64) model.Listing {
	return model.Listing{
		ListingID:    id,
		Category:     category,
		Make:         make,
		Model:        "Model " + make,
		PriceSGD:     price,
		MileageKM:    mileage,
		COELeftYears: coe,
	}
}

func strPtr(s string) *string { return &s }
