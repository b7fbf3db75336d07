package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordType classifies a financial record.
type RecordType string

const (
	RecordTypeIncome    RecordType = "income"
	RecordTypeExpense   RecordType = "expense"
	RecordTypeAsset     RecordType = "asset"
	RecordTypeLiability RecordType = "liability"
)

// Liquid-asset and short-term-liability categories used by the current and
// quick ratio calculations.
const (
	CategoryCash               = "cash"
	CategoryAccountsReceivable = "accounts_receivable"
	CategoryInventory          = "inventory"
	CategoryAccountsPayable    = "accounts_payable"
	CategoryShortTermDebt      = "short_term_debt"
)

// FinancialRecord is a single ledger entry sourced from the data-access
// collaborator. Amounts are exact decimals; analysis converts to float64
// only at the statistics boundary.
type FinancialRecord struct {
	Type      RecordType      `json:"type"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// AmountFloat returns the amount as a float64 for statistical use.
func (r FinancialRecord) AmountFloat() float64 {
	return r.Amount.InexactFloat64()
}

// IsCurrentAsset reports whether the record counts toward the current ratio
// numerator.
func (r FinancialRecord) IsCurrentAsset() bool {
	if r.Type != RecordTypeAsset {
		return false
	}
	switch r.Category {
	case CategoryCash, CategoryAccountsReceivable, CategoryInventory:
		return true
	}
	return false
}

// IsQuickAsset reports whether the record counts toward the quick ratio
// numerator (inventory excluded).
func (r FinancialRecord) IsQuickAsset() bool {
	if r.Type != RecordTypeAsset {
		return false
	}
	switch r.Category {
	case CategoryCash, CategoryAccountsReceivable:
		return true
	}
	return false
}

// IsCurrentLiability reports whether the record counts toward the current
// and quick ratio denominators.
func (r FinancialRecord) IsCurrentLiability() bool {
	if r.Type != RecordTypeLiability {
		return false
	}
	switch r.Category {
	case CategoryAccountsPayable, CategoryShortTermDebt:
		return true
	}
	return false
}

// SumByType totals the amounts of all records of the given type.
func SumByType(records []FinancialRecord, t RecordType) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.Type == t {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// ToTimeSeries converts records of one type into a chronological value
// series suitable for the detectors.
func ToTimeSeries(records []FinancialRecord, t RecordType) []TimeSeriesPoint {
	points := make([]TimeSeriesPoint, 0, len(records))
	for _, r := range records {
		if r.Type != t {
			continue
		}
		points = append(points, TimeSeriesPoint{
			Timestamp: r.Timestamp,
			Value:     r.AmountFloat(),
			Category:  r.Category,
		})
	}
	return points
}
