package core

import "testing"

func TestBalanceDelta(t *testing.T) {
	if got := BalanceDelta(Income, 40); got != 40 {
		t.Fatalf("income delta = %v, want 40", got)
	}
	if got := BalanceDelta(Expense, 40); got != -40 {
		t.Fatalf("expense delta = %v, want -40", got)
	}
}

func TestAddAmountsInverse(t *testing.T) {
	cases := []struct {
		balance, amount float64
		kind            EntryType
	}{
		{0, 0.1, Income},
		{0.1, 0.2, Income},
		{100, 33.33, Expense},
		{-12.07, 0.01, Expense},
		{1e6, 999.99, Income},
	}
	for _, tc := range cases {
		delta := BalanceDelta(tc.kind, tc.amount)
		after := AddAmounts(AddAmounts(tc.balance, delta), -delta)
		if after != tc.balance {
			t.Fatalf("balance %v with %s %v: round trip gave %v", tc.balance, tc.kind, tc.amount, after)
		}
	}
	if got := AddAmounts(0.1, 0.2); got != 0.3 {
		t.Fatalf("0.1+0.2 = %v, want 0.3", got)
	}
}
