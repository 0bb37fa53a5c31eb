// Package store records finished forecast runs in Postgres.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"m5-forecast/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Run is the stored summary of one forecast run.
type Run struct {
	ID               uuid.UUID
	Model            string
	Params           map[string]any
	CreatedAt        time.Time
	Series           int
	LastObservedDay  int
	EvaluationSource string
	Rows             int
	MeanForecast     float64
}

type Store struct {
	db *pgxpool.Pool
}

// Connect opens a bounded pool, checks it and makes sure the schema exists.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	slog.Info("connected to postgres", "max_conns", config.MaxConns)
	return &Store{db: db}, nil
}

func initSchema(ctx context.Context, db *pgxpool.Pool) error {
	runsSQL := `
		CREATE TABLE IF NOT EXISTS forecast_runs (
			id UUID PRIMARY KEY,
			model VARCHAR(64) NOT NULL,
			params JSONB,
			series INT NOT NULL,
			last_observed_day INT NOT NULL,
			evaluation_source VARCHAR(64) NOT NULL,
			row_count INT NOT NULL,
			mean_forecast DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`
	if _, err := db.Exec(ctx, runsSQL); err != nil {
		return err
	}

	valuesSQL := `
		CREATE TABLE IF NOT EXISTS forecast_values (
			run_id UUID NOT NULL REFERENCES forecast_runs(id) ON DELETE CASCADE,
			id VARCHAR(128) NOT NULL,
			step SMALLINT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, id, step)
		);
	`
	_, err := db.Exec(ctx, valuesSQL)
	return err
}

func (s *Store) Close() {
	s.db.Close()
}

// SaveRun inserts a run, assigning an id when it has none.
func (s *Store) SaveRun(ctx context.Context, r *Run) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO forecast_runs (
			id,
			model,
			params,
			series,
			last_observed_day,
			evaluation_source,
			row_count,
			mean_forecast,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		r.ID,
		r.Model,
		r.Params,
		r.Series,
		r.LastObservedDay,
		r.EvaluationSource,
		r.Rows,
		r.MeanForecast,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}
	return nil
}

// SaveForecasts bulk-loads submission rows for a run, one row per id and step (1..28).
func (s *Store) SaveForecasts(ctx context.Context, runID uuid.UUID, rows []model.SubmissionRow) (int64, error) {
	src := make([][]any, 0, len(rows)*model.HorizonDays)
	for _, r := range rows {
		for k, v := range r.Values {
			src = append(src, []any{runID, r.ID, int16(k + 1), v})
		}
	}
	n, err := s.db.CopyFrom(ctx,
		pgx.Identifier{"forecast_values"},
		[]string{"run_id", "id", "step", "value"},
		pgx.CopyFromRows(src),
	)
	if err != nil {
		return 0, fmt.Errorf("copy forecasts for run %s: %w", runID, err)
	}
	return n, nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT
			id,
			model,
			params,
			series,
			last_observed_day,
			evaluation_source,
			row_count,
			mean_forecast,
			created_at
		FROM forecast_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID,
			&r.Model,
			&r.Params,
			&r.Series,
			&r.LastObservedDay,
			&r.EvaluationSource,
			&r.Rows,
			&r.MeanForecast,
			&r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
