// Package entdriver implements storage.Driver on ent's SQL dialect driver.
// The sqlite and postgres packages open the database and embed *EntDriver.
package entdriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	entschema "entgo.io/ent/dialect/sql/schema"

	"github.com/papercomputeco/innerai/pkg/llm"
	"github.com/papercomputeco/innerai/pkg/storage"
)

// columns in scan order.
var columns = []string{
	"id",
	"request_id",
	"operation",
	"model",
	"language",
	"request",
	"reply",
	"status",
	"error_kind",
	"started_at",
	"duration_ms",
}

// EntDriver provides journal operations using an ent SQL driver.
// It is database-agnostic and can be embedded by specific drivers.
type EntDriver struct {
	Driver *entsql.Driver
}

// Open wraps db with ent's driver for the given dialect and migrates the
// journal tables. The caller keeps ownership of db on error.
func Open(ctx context.Context, dialect string, db *sql.DB) (*EntDriver, error) {
	drv := entsql.OpenDB(dialect, db)

	tables, err := Tables()
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}

	migrate, err := entschema.NewMigrate(drv)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration: %w", err)
	}

	// Append-only: new tables, columns and indexes are added in place.
	if err := migrate.Create(ctx, tables...); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &EntDriver{Driver: drv}, nil
}

// DB returns the underlying database handle.
func (ed *EntDriver) DB() *sql.DB {
	return ed.Driver.DB()
}

// Put stores an exchange. Re-storing an existing ID is a no-op.
func (ed *EntDriver) Put(ctx context.Context, exchange *llm.Exchange) error {
	if exchange == nil {
		return errors.New("cannot store nil exchange")
	}
	if exchange.ID == "" {
		return errors.New("cannot store exchange without an ID")
	}

	query, args := entsql.Dialect(ed.Driver.Dialect()).
		Insert(ExchangesTable).
		Columns(columns...).
		Values(
			exchange.ID,
			exchange.RequestID,
			exchange.Operation,
			exchange.Model,
			exchange.Language,
			string(exchange.Request),
			exchange.Reply,
			exchange.Status,
			exchange.ErrorKind,
			exchange.StartedAt.UTC(),
			exchange.DurationMs,
		).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.DoNothing(),
		).
		Query()

	if err := ed.Driver.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("failed to insert exchange %s: %w", exchange.ID, err)
	}
	return nil
}

// Get retrieves an exchange by its ID.
func (ed *EntDriver) Get(ctx context.Context, id string) (*llm.Exchange, error) {
	selector := ed.selectExchanges()
	entsql.FieldEQ("id", id)(selector)

	exchanges, err := ed.scan(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange %s: %w", id, err)
	}
	if len(exchanges) == 0 {
		return nil, storage.NotFoundError{ID: id}
	}
	return exchanges[0], nil
}

// List returns up to limit exchanges, newest first.
func (ed *EntDriver) List(ctx context.Context, limit int) ([]*llm.Exchange, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	selector := ed.selectExchanges()
	entsql.OrderByField("started_at", entsql.OrderDesc()).ToFunc()(selector)
	entsql.OrderByField("id").ToFunc()(selector)
	selector.Limit(limit)

	exchanges, err := ed.scan(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	return exchanges, nil
}

// Stats summarizes every stored exchange.
func (ed *EntDriver) Stats(ctx context.Context) (*storage.Stats, error) {
	totals, err := ed.countByOperation(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to count exchanges: %w", err)
	}
	failed, err := ed.countByOperation(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to count failed exchanges: %w", err)
	}

	stats := &storage.Stats{ByOperation: totals}
	for _, n := range totals {
		stats.Total += n
	}
	for _, n := range failed {
		stats.Failed += n
	}
	return stats, nil
}

// Close closes the underlying database.
func (ed *EntDriver) Close() error {
	return ed.Driver.Close()
}

func (ed *EntDriver) selectExchanges() *entsql.Selector {
	return entsql.Dialect(ed.Driver.Dialect()).
		Select(columns...).
		From(entsql.Table(ExchangesTable))
}

// countByOperation counts exchanges per operation, only error responses when
// failedOnly is set.
func (ed *EntDriver) countByOperation(ctx context.Context, failedOnly bool) (map[string]int, error) {
	selector := entsql.Dialect(ed.Driver.Dialect()).
		Select("operation", entsql.Count("*")).
		From(entsql.Table(ExchangesTable)).
		GroupBy("operation")
	if failedOnly {
		entsql.FieldGTE("status", 400)(selector)
	}

	query, args := selector.Query()
	rows := &entsql.Rows{}
	if err := ed.Driver.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			operation string
			n         int
		)
		if err := rows.Scan(&operation, &n); err != nil {
			return nil, err
		}
		counts[operation] = n
	}
	return counts, rows.Err()
}

func (ed *EntDriver) scan(ctx context.Context, selector *entsql.Selector) ([]*llm.Exchange, error) {
	query, args := selector.Query()
	rows := &entsql.Rows{}
	if err := ed.Driver.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*llm.Exchange
	for rows.Next() {
		var (
			exchange  llm.Exchange
			request   string
			startedAt time.Time
		)
		err := rows.Scan(
			&exchange.ID,
			&exchange.RequestID,
			&exchange.Operation,
			&exchange.Model,
			&exchange.Language,
			&request,
			&exchange.Reply,
			&exchange.Status,
			&exchange.ErrorKind,
			&startedAt,
			&exchange.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}

		if request != "" {
			exchange.Request = json.RawMessage(request)
		}
		exchange.StartedAt = startedAt.UTC()
		result = append(result, &exchange)
	}
	return result, rows.Err()
}
