package insight

import (
	"context"

	"github.com/google/uuid"

	"github.com/advisoros/analytics-service/internal/domain"
)

// FinancialDataProvider is the data-access collaborator contract. The
// engine owns no persistence; implementations live outside the core.
type FinancialDataProvider interface {
	// FetchRecords returns the ledger entries for an organization (and
	// optionally one client) inside the window.
	FetchRecords(ctx context.Context, orgID uuid.UUID, clientID *uuid.UUID, period domain.DateRange) ([]domain.FinancialRecord, error)
}

// BudgetProvider supplies category -> planned-amount figures for variance
// analysis.
type BudgetProvider interface {
	FetchBudget(ctx context.Context, orgID uuid.UUID, period domain.DateRange) (map[string]float64, error)
}

// BenchmarkProvider supplies the industry benchmark table keyed by metric
// name.
type BenchmarkProvider interface {
	FetchBenchmarks(ctx context.Context, industry string) (map[string]domain.Benchmark, error)
}
