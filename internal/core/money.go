// Package core holds the ledger entities and the pure rules around them.
//
// Amounts travel as float64 (the wire and store representation) but every
// sum is computed with shopspring/decimal so that adding and then removing
// the same amount returns exactly the starting balance.
package core

import "github.com/shopspring/decimal"

// BalanceDelta is the change a transaction applies to its payment method:
// income adds the amount, expense subtracts it.
func BalanceDelta(t EntryType, amount float64) float64 {
	if t == Income {
		return amount
	}
	return -amount
}

// AddAmounts returns a+b computed in decimal.
func AddAmounts(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}
