package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Summary aggregates a subject's transactions and current balances.
type Summary struct {
	TotalIncome      float64            `json:"totalIncome"`
	TotalExpense     float64            `json:"totalExpense"`
	TotalBalance     float64            `json:"totalBalance"`
	CategoryExpenses map[string]float64 `json:"categoryExpenses"`
}

// Summarize accumulates income, expense and per-category expense from the
// transactions, and sums the stored payment method balances. The balance
// total is not recomputed from history.
func Summarize(transactions []Transaction, methods []PaymentMethod) Summary {
	income := decimal.Zero
	expense := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)

	for _, t := range transactions {
		amount := decimal.NewFromFloat(t.Amount)
		if t.Type == Income {
			income = income.Add(amount)
			continue
		}
		expense = expense.Add(amount)
		byCategory[t.CategoryID] = byCategory[t.CategoryID].Add(amount)
	}

	balance := decimal.Zero
	for _, pm := range methods {
		balance = balance.Add(decimal.NewFromFloat(pm.Balance))
	}

	out := Summary{
		TotalIncome:      income.InexactFloat64(),
		TotalExpense:     expense.InexactFloat64(),
		TotalBalance:     balance.InexactFloat64(),
		CategoryExpenses: make(map[string]float64, len(byCategory)),
	}
	for id, v := range byCategory {
		out.CategoryExpenses[id] = v.InexactFloat64()
	}
	return out
}

// SortNewestFirst orders transactions by date, most recent first. Ties keep
// their input order; dates that do not parse sort last.
func SortNewestFirst(ts []Transaction) {
	type keyed struct {
		at time.Time
		t  Transaction
	}
	rows := make([]keyed, len(ts))
	for i, t := range ts {
		rows[i].t = t
		if parsed, err := ParseDate(t.Date); err == nil {
			rows[i].at = parsed
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].at.After(rows[j].at)
	})
	for i := range rows {
		ts[i] = rows[i].t
	}
}
