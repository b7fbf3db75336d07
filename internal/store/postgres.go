// Package store implements the data-access collaborator contracts over
// PostgreSQL. The analytics core never touches persistence directly; this
// is the reference adapter wired in by cmd/server.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/advisoros/analytics-service/internal/config"
	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
)

// Postgres implements FinancialDataProvider and BudgetProvider over a pgx
// connection pool.
type Postgres struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPostgres connects a pool using the database configuration.
func NewPostgres(ctx context.Context, cfg *config.DatabaseConfig, log *logger.Logger) (*Postgres, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return &Postgres{
		pool: pool,
		log:  log.Named("store"),
	}, nil
}

// Close releases the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

// Ping verifies connectivity, used by the health endpoint.
func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// FetchRecords returns the ledger entries for an organization (optionally
// narrowed to one client) inside the window, oldest first. A nil
// organization id matches any organization, which the risk scorer uses for
// client-keyed lookups.
func (s *Postgres) FetchRecords(ctx context.Context, orgID uuid.UUID, clientID *uuid.UUID, period domain.DateRange) ([]domain.FinancialRecord, error) {
	query := `
		SELECT type, category, amount, occurred_at
		FROM financial_records
		WHERE ($1 = '00000000-0000-0000-0000-000000000000'::uuid OR organization_id = $1)
		  AND ($2::uuid IS NULL OR client_id = $2)
		  AND occurred_at >= $3 AND occurred_at < $4
		ORDER BY occurred_at ASC`

	rows, err := s.pool.Query(ctx, query, orgID, clientID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("query financial records: %w", err)
	}
	defer rows.Close()

	var records []domain.FinancialRecord
	for rows.Next() {
		var r domain.FinancialRecord
		var amount decimal.Decimal
		if err := rows.Scan(&r.Type, &r.Category, &amount, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan financial record: %w", err)
		}
		r.Amount = amount
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate financial records: %w", err)
	}
	return records, nil
}

// FetchBudget returns the planned amount per category for the window.
// Overlapping budget rows for the same category sum together.
func (s *Postgres) FetchBudget(ctx context.Context, orgID uuid.UUID, period domain.DateRange) (map[string]float64, error) {
	query := `
		SELECT category, SUM(planned_amount)
		FROM budget_entries
		WHERE organization_id = $1
		  AND period_start < $3 AND period_end > $2
		GROUP BY category`

	rows, err := s.pool.Query(ctx, query, orgID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("query budget entries: %w", err)
	}
	defer rows.Close()

	budget := make(map[string]float64)
	for rows.Next() {
		var category string
		var planned decimal.Decimal
		if err := rows.Scan(&category, &planned); err != nil {
			return nil, fmt.Errorf("scan budget entry: %w", err)
		}
		budget[category] = planned.InexactFloat64()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget entries: %w", err)
	}
	return budget, nil
}
