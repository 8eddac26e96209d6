package repository

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS car_listings (
	id                    INTEGER PRIMARY KEY AUTOINCREMENT,
	listing_id            INTEGER NOT NULL UNIQUE,
	category              TEXT    NOT NULL DEFAULT 'used',
	make                  TEXT    NOT NULL,
	model                 TEXT    NOT NULL,
	variant               TEXT,
	body_type             TEXT,
	price_sgd             REAL    NOT NULL,
	year                  INTEGER,
	mileage_km            REAL    NOT NULL DEFAULT 0,
	coe_left_years        REAL    NOT NULL DEFAULT 0,
	depreciation_per_year REAL,
	efficiency            REAL,
	efficiency_unit       TEXT,
	dealer_name           TEXT,
	dealer_link           TEXT,
	listing_url           TEXT,
	colour                TEXT,
	scraped_at            DATETIME
);
CREATE INDEX IF NOT EXISTS idx_car_listings_price ON car_listings (price_sgd);
`

// %d is the embedding dimension
const postgresSchema = `
CREATE TABLE IF NOT EXISTS car_listings (
	id                    BIGSERIAL PRIMARY KEY,
	listing_id            BIGINT           NOT NULL UNIQUE,
	category              TEXT             NOT NULL DEFAULT 'used',
	make                  TEXT             NOT NULL,
	model                 TEXT             NOT NULL,
	variant               TEXT,
	body_type             TEXT,
	price_sgd             DOUBLE PRECISION NOT NULL,
	year                  INTEGER,
	mileage_km            DOUBLE PRECISION NOT NULL DEFAULT 0,
	coe_left_years        DOUBLE PRECISION NOT NULL DEFAULT 0,
	depreciation_per_year DOUBLE PRECISION,
	efficiency            DOUBLE PRECISION,
	efficiency_unit       TEXT,
	dealer_name           TEXT,
	dealer_link           TEXT,
	listing_url           TEXT,
	colour                TEXT,
	scraped_at            TIMESTAMPTZ,
	embedding             vector(%d)
);
CREATE INDEX IF NOT EXISTS idx_car_listings_price ON car_listings (price_sgd);
`

const upsertListing = `
INSERT INTO car_listings (
	listing_id, category, make, model, variant, body_type, price_sgd, year,
	mileage_km, coe_left_years, depreciation_per_year, efficiency, efficiency_unit,
	dealer_name, dealer_link, listing_url, colour, scraped_at
) VALUES (
	:listing_id, :category, :make, :model, :variant, :body_type, :price_sgd, :year,
	:mileage_km, :coe_left_years, :depreciation_per_year, :efficiency, :efficiency_unit,
	:dealer_name, :dealer_link, :listing_url, :colour, :scraped_at
)
ON CONFLICT (listing_id) DO UPDATE SET
	category = excluded.category,
	make = excluded.make,
	model = excluded.model,
	variant = excluded.variant,
	body_type = excluded.body_type,
	price_sgd = excluded.price_sgd,
	year = excluded.year,
	mileage_km = excluded.mileage_km,
	coe_left_years = excluded.coe_left_years,
	depreciation_per_year = excluded.depreciation_per_year,
	efficiency = excluded.efficiency,
	efficiency_unit = excluded.efficiency_unit,
	dealer_name = excluded.dealer_name,
	dealer_link = excluded.dealer_link,
	listing_url = excluded.listing_url,
	colour = excluded.colour,
	scraped_at = excluded.scraped_at
`
