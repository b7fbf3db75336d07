package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/advisoros/analytics-service/internal/domain"
	"github.com/advisoros/analytics-service/internal/pkg/logger"
)

// BreakerProvider wraps a provider pair with a circuit breaker so a
// failing database does not pile up analysis requests. The data fetch is
// the engine's only I/O boundary, so this is the only place a breaker
// belongs.
type BreakerProvider struct {
	records *gobreaker.CircuitBreaker
	budgets *gobreaker.CircuitBreaker

	inner interface {
		FetchRecords(ctx context.Context, orgID uuid.UUID, clientID *uuid.UUID, period domain.DateRange) ([]domain.FinancialRecord, error)
		FetchBudget(ctx context.Context, orgID uuid.UUID, period domain.DateRange) (map[string]float64, error)
	}
	log *logger.Logger
}

// NewBreakerProvider wraps the Postgres adapter.
func NewBreakerProvider(inner *Postgres, log *logger.Logger) *BreakerProvider {
	log = log.Named("breaker")

	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     15 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("circuit breaker state change",
					logger.StringField("breaker", name),
					logger.StringField("from", from.String()),
					logger.StringField("to", to.String()),
				)
			},
		}
	}

	return &BreakerProvider{
		records: gobreaker.NewCircuitBreaker(settings("financial_records")),
		budgets: gobreaker.NewCircuitBreaker(settings("budget_entries")),
		inner:   inner,
		log:     log,
	}
}

// FetchRecords implements insight.FinancialDataProvider.
func (b *BreakerProvider) FetchRecords(ctx context.Context, orgID uuid.UUID, clientID *uuid.UUID, period domain.DateRange) ([]domain.FinancialRecord, error) {
	result, err := b.records.Execute(func() (interface{}, error) {
		return b.inner.FetchRecords(ctx, orgID, clientID, period)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.FinancialRecord), nil
}

// FetchBudget implements insight.BudgetProvider.
func (b *BreakerProvider) FetchBudget(ctx context.Context, orgID uuid.UUID, period domain.DateRange) (map[string]float64, error) {
	result, err := b.budgets.Execute(func() (interface{}, error) {
		return b.inner.FetchBudget(ctx, orgID, period)
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]float64), nil
}
