// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

// Package main is the cartful-import tool: a one-shot loader that fills the
// PostgreSQL warehouse from the six Instacart CSV exports. It is run once
// before the dashboard server is started, never alongside it.
//
// Usage:
//
//	export DB_USER=cartful DB_PASSWORD=secret DB_HOST=localhost DB_NAME=instacart
//	cartful-import -data ./data
//
// Each table is dropped and recreated, then streamed in via the PostgreSQL
// COPY protocol. Missing CSV files are skipped with a warning so partial
// datasets can be loaded during development.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/cartful-labs/cartful/internal/config"
	"github.com/cartful-labs/cartful/internal/logging"
)

// converter parses one CSV field into its column's Go value. An empty field
// becomes NULL.
type converter func(string) (any, error)

func asInt(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func asFloat(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	return strconv.ParseFloat(s, 64)
}

func asText(s string) (any, error) {
	return s, nil
}

// tableSpec maps one CSV export to its warehouse table.
type tableSpec struct {
	file    string
	name    string
	ddl     string
	columns []string
	convert []converter
}

var tables = []tableSpec{
	{
		file: "aisles.csv",
		name: "aisles",
		ddl: `CREATE TABLE aisles (
			aisle_id INTEGER PRIMARY KEY,
			aisle TEXT NOT NULL
		)`,
		columns: []string{"aisle_id", "aisle"},
		convert: []converter{asInt, asText},
	},
	{
		file: "departments.csv",
		name: "departments",
		ddl: `CREATE TABLE departments (
			department_id INTEGER PRIMARY KEY,
			department TEXT NOT NULL
		)`,
		columns: []string{"department_id", "department"},
		convert: []converter{asInt, asText},
	},
	{
		file: "products.csv",
		name: "products",
		ddl: `CREATE TABLE products (
			product_id INTEGER PRIMARY KEY,
			product_name TEXT NOT NULL,
			aisle_id INTEGER NOT NULL,
			department_id INTEGER NOT NULL
		)`,
		columns: []string{"product_id", "product_name", "aisle_id", "department_id"},
		convert: []converter{asInt, asText, asInt, asInt},
	},
	{
		file: "orders.csv",
		name: "orders",
		ddl: `CREATE TABLE orders (
			order_id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			eval_set TEXT NOT NULL,
			order_number INTEGER NOT NULL,
			order_dow INTEGER NOT NULL,
			order_hour_of_day INTEGER NOT NULL,
			days_since_prior_order DOUBLE PRECISION
		)`,
		columns: []string{"order_id", "user_id", "eval_set", "order_number", "order_dow", "order_hour_of_day", "days_since_prior_order"},
		convert: []converter{asInt, asInt, asText, asInt, asInt, asInt, asFloat},
	},
	{
		file: "order_products__prior.csv",
		name: "order_products_prior",
		ddl: `CREATE TABLE order_products_prior (
			order_id INTEGER NOT NULL,
			product_id INTEGER NOT NULL,
			add_to_cart_order INTEGER NOT NULL,
			reordered INTEGER NOT NULL
		)`,
		columns: []string{"order_id", "product_id", "add_to_cart_order", "reordered"},
		convert: []converter{asInt, asInt, asInt, asInt},
	},
	{
		file: "order_products__train.csv",
		name: "order_products_train",
		ddl: `CREATE TABLE order_products_train (
			order_id INTEGER NOT NULL,
			product_id INTEGER NOT NULL,
			add_to_cart_order INTEGER NOT NULL,
			reordered INTEGER NOT NULL
		)`,
		columns: []string{"order_id", "product_id", "add_to_cart_order", "reordered"},
		convert: []converter{asInt, asInt, asInt, asInt},
	},
}

// Indexes created after load so the COPY runs against bare heaps.
var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_opp_order_id ON order_products_prior (order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_opp_product_id ON order_products_prior (product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_aisle_id ON products (aisle_id)`,
}

func main() {
	dataDir := flag.String("data", envOr("DATA_DIR", "./data"), "directory containing the Instacart CSV files")
	flag.Parse()

	if err := run(*dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "cartful-import: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(dataDir string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console"})

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to warehouse: %w", err)
	}
	defer conn.Close(ctx)

	for _, spec := range tables {
		path := filepath.Join(dataDir, spec.file)
		if _, err := os.Stat(path); err != nil {
			logging.Warn().Str("file", path).Msg("CSV file not found, skipping")
			continue
		}
		if err := loadTable(ctx, conn, spec, path); err != nil {
			return fmt.Errorf("loading %s: %w", spec.name, err)
		}
	}

	for _, ddl := range indexes {
		if _, err := conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	logging.Info().Msg("Import complete")
	return nil
}

func loadTable(ctx context.Context, conn *pgx.Conn, spec tableSpec, path string) error {
	start := time.Now()
	logging.Info().Str("table", spec.name).Str("file", path).Msg("Importing")

	if _, err := conn.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, spec.name)); err != nil {
		return err
	}
	if _, err := conn.Exec(ctx, spec.ddl); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	if _, err := r.Read(); err != nil { // header row
		return fmt.Errorf("reading header: %w", err)
	}

	src := &csvSource{reader: r, convert: spec.convert}
	rows, err := conn.CopyFrom(ctx, pgx.Identifier{spec.name}, spec.columns, src)
	if err != nil {
		return err
	}

	logging.Info().
		Str("table", spec.name).
		Int64("rows", rows).
		Dur("elapsed", time.Since(start)).
		Msg("Table imported")
	return nil
}

// csvSource streams CSV records into the COPY protocol, converting each
// field lazily so the whole file never sits in memory.
type csvSource struct {
	reader  *csv.Reader
	convert []converter
	values  []any
	err     error
}

func (s *csvSource) Next() bool {
	record, err := s.reader.Read()
	if err == io.EOF {
		return false
	}
	if err != nil {
		s.err = err
		return false
	}
	if len(record) != len(s.convert) {
		s.err = fmt.Errorf("row has %d fields, want %d", len(record), len(s.convert))
		return false
	}

	s.values = make([]any, len(record))
	for i, field := range record {
		v, err := s.convert[i](field)
		if err != nil {
			s.err = fmt.Errorf("field %d %q: %w", i, field, err)
			return false
		}
		s.values[i] = v
	}
	return true
}

func (s *csvSource) Values() ([]any, error) {
	return s.values, nil
}

func (s *csvSource) Err() error {
	return s.err
}
