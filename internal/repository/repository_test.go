package repository

import (
	"context"
	"testing"

	"caradvisor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func seedListings() []model.Listing {
	return []model.Listing{
		{ListingID: 3, Category: "used", Make: "Toyota", Model: "Corolla", PriceSGD: 60000, MileageKM: 40000, COELeftYears: 6},
		{ListingID: 1, Category: "used", Make: "Honda", Model: "Jazz", PriceSGD: 45000, MileageKM: 80000, COELeftYears: 0},
		{ListingID: 2, Category: "new", Make: "Mazda", Model: "3", PriceSGD: 120000, COELeftYears: 10},
		{ListingID: 4, Category: "used", Make: "Kia", Model: "Cerato", PriceSGD: 75000, MileageKM: 20000, COELeftYears: 8},
	}
}

func TestUpsertAndSearch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.UpsertListings(ctx, seedListings())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	t.Run("all listings ordered by listing_id", func(t *testing.T) {
		got, err := repo.SearchListings(ctx, model.ListingQuery{})
		require.NoError(t, err)
		require.Len(t, got, 4)
		for i, l := range got {
			assert.Equal(t, int64(i+1), l.ListingID)
		}
	})

	t.Run("registration and price range", func(t *testing.T) {
		got, err := repo.SearchListings(ctx, model.ListingQuery{
			PriceMin:            model.Float64(40000),
			PriceMax:            model.Float64(80000),
			RequireRegistration: true,
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, int64(3), got[0].ListingID)
		assert.Equal(t, int64(4), got[1].ListingID)
	})

	t.Run("condition filter", func(t *testing.T) {
		got, err := repo.SearchListings(ctx, model.ListingQuery{Condition: model.ConditionPtr(model.ConditionNew)})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Mazda", got[0].Make)
	})

	t.Run("either does not constrain", func(t *testing.T) {
		got, err := repo.SearchListings(ctx, model.ListingQuery{Condition: model.ConditionPtr(model.ConditionEither)})
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})
}

func TestUpsertReplacesExisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertListings(ctx, seedListings())
	require.NoError(t, err)

	updated := seedListings()[0]
	updated.PriceSGD = 55000
	_, err = repo.UpsertListings(ctx, []model.Listing{updated})
	require.NoError(t, err)

	got, err := repo.GetListingByID(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 55000.0, got.PriceSGD)

	all, err := repo.SearchListings(ctx, model.ListingQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestGetListingByIDMissing(t *testing.T) {
	repo := newTestRepo(t)
	got, err := repo.GetListingByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEmbeddingsUnsupportedOnSQLite(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.ListingsMissingEmbedding(ctx, 10)
	assert.ErrorIs(t, err, ErrEmbeddingsUnsupported)

	n, errs := repo.BatchUpdateEmbeddings(ctx, []model.EmbeddingItem{{ListingID: 1, Embedding: []float32{0.1}}})
	assert.Equal(t, 0, n)
	assert.NotEmpty(t, errs)
}
