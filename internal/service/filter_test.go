package service

import (
	"context"
	"testing"

	"caradvisor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(nil)
	assert.True(t, q.RequireRegistration)
	assert.Nil(t, q.PriceMin)
	assert.Nil(t, q.PriceMax)

	q = BuildQuery(&model.Profile{BudgetMax: model.Float64(100000)})
	require.NotNil(t, q.PriceMin)
	assert.Equal(t, 0.0, *q.PriceMin)
	assert.Equal(t, 100000.0, *q.PriceMax)

	q = BuildQuery(&model.Profile{
		BudgetMin: model.Float64(80000),
		BudgetMax: model.Float64(120000),
		Condition: model.ConditionPtr(model.ConditionUsed),
	})
	assert.Equal(t, 80000.0, *q.PriceMin)
	assert.Equal(t, model.ConditionUsed, *q.Condition)

	q = BuildQuery(&model.Profile{Condition: model.ConditionPtr(model.ConditionEither)})
	assert.Nil(t, q.Condition)

	q = BuildQuery(&model.Profile{BudgetMin: model.Float64(100000)})
	assert.Nil(t, q.PriceMin)
	assert.Nil(t, q.PriceMax)
}

func TestFilterMinOnlyBudgetIsUnrestricted(t *testing.T) {
	f := NewListingFilter(&stubStore{}, 0, nil)
	listings := []model.Listing{
		listing(1, "Toyota", "used", 50000, 50000, 5),
		listing(2, "Honda", "used", 150000, 50000, 5),
	}

	out := f.Filter(&model.Profile{BudgetMin: model.Float64(100000)}, listings)
	assert.Len(t, out, 2)
}

func TestFilterNeverReturnsExpiredRegistration(t *testing.T) {
	listings := []model.Listing{
		listing(1, "Toyota", "used", 90000, 50000, 5),
		listing(2, "Honda", "used", 90000, 50000, 0),
		listing(3, "Mazda", "new", 110000, 0, 10),
		listing(4, "Kia", "used", 60000, 90000, -1),
	}
	f := NewListingFilter(&stubStore{}, 0, nil)

	profiles := []*model.Profile{
		nil,
		{},
		{BudgetMax: model.Float64(200000)},
		{Condition: model.ConditionPtr(model.ConditionEither)},
	}
	for _, p := range profiles {
		for _, l := range f.Filter(p, listings) {
			assert.Greater(t, l.COELeftYears, 0.0)
		}
	}
	assert.Len(t, f.Filter(nil, listings), 2)
}

func TestFilterPredicates(t *testing.T) {
	listings := []model.Listing{
		listing(1, "Toyota", "used", 75000, 50000, 5),
		listing(2, "Honda", "used", 90000, 50000, 5),
		listing(3, "Mazda", "new", 110000, 0, 10),
		listing(4, "Kia", "USED", 120000, 20000, 8),
		listing(5, "BMW", "used", 130000, 20000, 8),
	}
	f := NewListingFilter(&stubStore{}, 0, nil)

	got := f.Filter(&model.Profile{
		BudgetMin: model.Float64(80000),
		BudgetMax: model.Float64(120000),
		Condition: model.ConditionPtr(model.ConditionUsed),
	}, listings)

	var ids []int64
	for _, l := range got {
		ids = append(ids, l.ListingID)
	}
	assert.Equal(t, []int64{2, 4}, ids)

	// deterministic for identical input
	assert.Equal(t, got, f.Filter(&model.Profile{
		BudgetMin: model.Float64(80000),
		BudgetMax: model.Float64(120000),
		Condition: model.ConditionPtr(model.ConditionUsed),
	}, listings))
}

func TestQueryStoreFailureYieldsEmpty(t *testing.T) {
	store := &stubStore{err: errStoreDown}
	f := NewListingFilter(store, 0, nil)

	got := f.Query(context.Background(), &model.Profile{BudgetMax: model.Float64(100000)})
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.True(t, store.lastQuery.RequireRegistration)
}

func TestQueryFiltersStoreRows(t *testing.T) {
	store := &stubStore{listings: []model.Listing{
		listing(1, "Toyota", "used", 90000, 50000, 5),
		listing(2, "Honda", "used", 90000, 50000, 0),
	}}
	f := NewListingFilter(store, 0, nil)

	got := f.Query(context.Background(), &model.Profile{})
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ListingID)
}
