package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"caradvisor/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrEmbeddingsUnsupported is returned by embedding operations on stores
// without a vector column
var ErrEmbeddingsUnsupported = eris.New("embeddings require the postgres store")

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

const listingColumns = `
	id, listing_id, category, make, model, variant, body_type, price_sgd, year,
	mileage_km, coe_left_years, depreciation_per_year, efficiency, efficiency_unit,
	dealer_name, dealer_link, listing_url, colour, scraped_at`

// Repository is the car listing store, backed by PostgreSQL or SQLite
type Repository struct {
	db            *sqlx.DB
	driver        string
	embeddingDims int
}

// NewPostgresRepository connects to PostgreSQL
func NewPostgresRepository(dsn string, maxConn, maxIdleConn, embeddingDims int) (*Repository, error) {
	db, err := sqlx.Connect(DriverPostgres, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "failed to connect to database")
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &Repository{db: db, driver: DriverPostgres, embeddingDims: embeddingDims}, nil
}

// NewSQLiteRepository opens a local SQLite dataset file (":memory:" for tests)
func NewSQLiteRepository(path string) (*Repository, error) {
	db, err := sqlx.Connect(DriverSQLite, path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open sqlite database %s", path)
	}
	// one connection keeps ":memory:" databases shared across queries
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	return &Repository{db: db, driver: DriverSQLite}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Driver returns the database driver name
func (r *Repository) Driver() string {
	return r.driver
}

// EnsureSchema creates the car_listings table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	stmts := []string{sqliteSchema}
	if r.driver == DriverPostgres {
		stmts = []string{
			`CREATE EXTENSION IF NOT EXISTS vector`,
			fmt.Sprintf(postgresSchema, r.embeddingDims),
		}
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return eris.Wrap(err, "failed to create schema")
		}
	}
	return nil
}

// SearchListings returns every listing matching the query predicates,
// ordered by listing_id
func (r *Repository) SearchListings(ctx context.Context, q model.ListingQuery) ([]model.Listing, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}

	if q.RequireRegistration {
		whereClauses = append(whereClauses, "coe_left_years > 0")
	}
	if q.PriceMin != nil {
		whereClauses = append(whereClauses, "price_sgd >= ?")
		args = append(args, *q.PriceMin)
	}
	if q.PriceMax != nil {
		whereClauses = append(whereClauses, "price_sgd <= ?")
		args = append(args, *q.PriceMax)
	}
	if q.Condition != nil && *q.Condition != model.ConditionEither {
		whereClauses = append(whereClauses, "LOWER(category) = ?")
		args = append(args, string(*q.Condition))
	}

	query := r.db.Rebind(fmt.Sprintf(
		"SELECT %s FROM car_listings WHERE %s ORDER BY listing_id ASC",
		listingColumns, strings.Join(whereClauses, " AND "),
	))

	var listings []model.Listing
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, eris.Wrap(err, "failed to fetch listings")
	}
	return listings, nil
}

// GetListingByID retrieves a single listing by its listing_id
func (r *Repository) GetListingByID(ctx context.Context, listingID int64) (*model.Listing, error) {
	var listing model.Listing
	query := r.db.Rebind(fmt.Sprintf("SELECT %s FROM car_listings WHERE listing_id = ?", listingColumns))
	err := r.db.GetContext(ctx, &listing, query, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "failed to get listing")
	}
	return &listing, nil
}

// UpsertListings inserts listings, replacing rows with the same listing_id.
// It returns the number of rows written.
func (r *Repository) UpsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, upsertListing)
	if err != nil {
		return 0, eris.Wrap(err, "failed to prepare statement")
	}
	defer stmt.Close()

	written := 0
	for i := range listings {
		if _, err := stmt.ExecContext(ctx, &listings[i]); err != nil {
			return 0, eris.Wrapf(err, "listing_id %d", listings[i].ListingID)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "failed to commit transaction")
	}
	return written, nil
}

// ListingsMissingEmbedding returns up to limit listings without an embedding
func (r *Repository) ListingsMissingEmbedding(ctx context.Context, limit int) ([]model.Listing, error) {
	if r.driver != DriverPostgres {
		return nil, ErrEmbeddingsUnsupported
	}
	query := fmt.Sprintf(
		"SELECT %s FROM car_listings WHERE embedding IS NULL ORDER BY listing_id LIMIT $1",
		listingColumns,
	)
	var listings []model.Listing
	if err := r.db.SelectContext(ctx, &listings, query, limit); err != nil {
		return nil, eris.Wrap(err, "failed to fetch listings without embedding")
	}
	return listings, nil
}

// BatchUpdateEmbeddings updates embeddings for multiple listings
func (r *Repository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errs []string

	if r.driver != DriverPostgres {
		return 0, []string{ErrEmbeddingsUnsupported.Error()}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, []string{fmt.Sprintf("failed to start transaction: %v", err)}
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE car_listings SET embedding = $1 WHERE listing_id = $2`)
	if err != nil {
		return 0, []string{fmt.Sprintf("failed to prepare statement: %v", err)}
	}
	defer stmt.Close()

	for _, item := range items {
		if r.embeddingDims > 0 && len(item.Embedding) != r.embeddingDims {
			errs = append(errs, fmt.Sprintf("listing_id %d: expected %d dimensions, got %d", item.ListingID, r.embeddingDims, len(item.Embedding)))
			continue
		}
		if _, err := stmt.ExecContext(ctx, pgvector.NewVector(item.Embedding), item.ListingID); err != nil {
			errs = append(errs, fmt.Sprintf("listing_id %d: %v", item.ListingID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		return 0, append(errs, fmt.Sprintf("failed to commit transaction: %v", err))
	}

	return success, errs
}
