// Package analytics computes the aggregates behind the dashboard charts:
// monthly by-category totals, daily series, month-over-month deltas and the
// unusual-transaction flagging. All functions are pure transformations over
// already-fetched transaction slices; results are recomputed per request.
package analytics

import (
	"sort"
	"time"

	"github.com/ohalushko/moneta/internal/domain"
)

// Kind selects which side of the ledger an aggregate covers.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
	// KindNet charts net spending (expense minus income); entries whose net
	// result is not positive are dropped, so only net spending is charted,
	// never net gain.
	KindNet Kind = "net"
)

// CategoryAmount is one aggregated bar of the by-category chart.
type CategoryAmount struct {
	CategoryID string  `json:"category_id"`
	Amount     float64 `json:"amount"`
}

// DayAmount is one point of the daily series, keyed by ISO date.
type DayAmount struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// CategoryComparison is one row of the month-over-month view.
type CategoryComparison struct {
	CategoryID       string  `json:"category_id"`
	CurrentMonth     float64 `json:"current_month"`
	PreviousMonth    float64 `json:"previous_month"`
	Change           float64 `json:"change"`
	PercentageChange float64 `json:"percentage_change"`
}

// Month identifies one calendar month that has visible transactions.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// visible reports whether a transaction participates in aggregates at all.
// Soft-deleted and hidden records never do; the Transfers category is money
// moved between the user's own accounts, not spending or income.
func visible(t domain.Transaction) bool {
	return !t.IsDeleted && !t.IsHidden && t.CategoryID != domain.CategoryTransfers
}

func inMonth(t domain.Transaction, year int, month time.Month) bool {
	d := t.Date.Local()
	return d.Year() == year && d.Month() == month
}

// signedAmount maps a transaction onto the requested kind: expenses count
// positively for KindExpense and negatively for KindNet income, and so on.
// The bool result is false when the transaction does not participate.
func signedAmount(t domain.Transaction, kind Kind) (float64, bool) {
	switch kind {
	case KindExpense:
		if t.Type == domain.TypeExpense {
			return t.Amount, true
		}
	case KindIncome:
		if t.Type == domain.TypeIncome {
			return t.Amount, true
		}
	case KindNet:
		switch t.Type {
		case domain.TypeExpense:
			return t.Amount, true
		case domain.TypeIncome:
			return -t.Amount, true
		}
	}
	return 0, false
}

// ByCategory groups a wallet's transactions for one month by category and
// sums amounts. The result is sorted descending by amount; ties keep
// first-seen category order (stable sort).
func ByCategory(txs []domain.Transaction, walletID string, year int, month time.Month, kind Kind) []CategoryAmount {
	totals := make(map[string]float64)
	var order []string

	for _, t := range txs {
		if !visible(t) || t.WalletID != walletID || !inMonth(t, year, month) {
			continue
		}
		amount, ok := signedAmount(t, kind)
		if !ok {
			continue
		}
		if _, seen := totals[t.CategoryID]; !seen {
			order = append(order, t.CategoryID)
		}
		totals[t.CategoryID] += amount
	}

	result := make([]CategoryAmount, 0, len(order))
	for _, id := range order {
		amount := totals[id]
		if kind == KindNet && amount <= 0 {
			continue
		}
		result = append(result, CategoryAmount{CategoryID: id, Amount: amount})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Amount > result[j].Amount
	})
	return result
}

// ByDay produces the daily series for one month, keyed YYYY-MM-DD and
// sorted chronologically. Days without matching transactions are absent.
func ByDay(txs []domain.Transaction, walletID string, year int, month time.Month, kind Kind) []DayAmount {
	totals := make(map[string]float64)

	for _, t := range txs {
		if !visible(t) || t.WalletID != walletID || !inMonth(t, year, month) {
			continue
		}
		amount, ok := signedAmount(t, kind)
		if !ok {
			continue
		}
		totals[t.Date.Local().Format("2006-01-02")] += amount
	}

	result := make([]DayAmount, 0, len(totals))
	for day, amount := range totals {
		if kind == KindNet && amount <= 0 {
			continue
		}
		result = append(result, DayAmount{Date: day, Amount: amount})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}

// MonthOverMonth compares two by-category aggregates. Every category present
// in either month appears exactly once. PercentageChange is 0 when the
// previous month had nothing to compare against, never NaN or Inf.
func MonthOverMonth(current, previous []CategoryAmount) []CategoryComparison {
	prevByID := make(map[string]float64, len(previous))
	for _, p := range previous {
		prevByID[p.CategoryID] = p.Amount
	}

	seen := make(map[string]bool, len(current))
	result := make([]CategoryComparison, 0, len(current)+len(previous))

	for _, c := range current {
		prev := prevByID[c.CategoryID]
		result = append(result, compare(c.CategoryID, c.Amount, prev))
		seen[c.CategoryID] = true
	}
	for _, p := range previous {
		if seen[p.CategoryID] {
			continue
		}
		result = append(result, compare(p.CategoryID, 0, p.Amount))
	}
	return result
}

func compare(categoryID string, current, previous float64) CategoryComparison {
	change := current - previous
	var pct float64
	if previous > 0 {
		pct = change / previous * 100
	}
	return CategoryComparison{
		CategoryID:       categoryID,
		CurrentMonth:     current,
		PreviousMonth:    previous,
		Change:           change,
		PercentageChange: pct,
	}
}

// unusualFactor flags expenses above this multiple of the average expense
// amount. A deliberately simple threshold, not a statistical outlier test.
const unusualFactor = 2.0

// Unusual returns the expense transactions whose amount exceeds twice the
// average expense amount of the visible set. An empty or expense-free input
// yields nothing (zero average flags nothing).
func Unusual(txs []domain.Transaction) []domain.Transaction {
	var sum float64
	var count int
	for _, t := range txs {
		if visible(t) && t.Type == domain.TypeExpense {
			sum += t.Amount
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	if avg <= 0 {
		return nil
	}

	var flagged []domain.Transaction
	for _, t := range txs {
		if visible(t) && t.Type == domain.TypeExpense && t.Amount > unusualFactor*avg {
			flagged = append(flagged, t)
		}
	}
	return flagged
}

// AvailableMonths lists the months within the lookback window that have at
// least one visible transaction for the wallet, most recent first.
func AvailableMonths(txs []domain.Transaction, walletID string, lookbackYears int, now time.Time) []Month {
	cutoff := now.AddDate(-lookbackYears, 0, 0)
	seen := make(map[Month]bool)

	for _, t := range txs {
		if !visible(t) || t.WalletID != walletID {
			continue
		}
		if t.Date.Before(cutoff) || t.Date.After(now) {
			continue
		}
		d := t.Date.Local()
		seen[Month{Year: d.Year(), Month: d.Month()}] = true
	}

	months := make([]Month, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year > months[j].Year
		}
		return months[i].Month > months[j].Month
	})
	return months
}
