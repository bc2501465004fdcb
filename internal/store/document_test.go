package store

import (
	"encoding/json"
	"testing"
)

func TestMatches(t *testing.T) {
	doc := []byte(`{"userId":"u1","amount":12.5,"isRecurring":false}`)
	cases := []struct {
		filters []Filter
		want    bool
	}{
		{nil, true},
		{[]Filter{Eq("userId", "u1")}, true},
		{[]Filter{Eq("userId", "u2")}, false},
		{[]Filter{Eq("userId", "u1"), Eq("amount", 12.5)}, true},
		{[]Filter{Eq("isRecurring", true)}, false},
		{[]Filter{Eq("missing", "x")}, false},
	}
	for i, tc := range cases {
		got, err := Matches(doc, tc.filters)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if got != tc.want {
			t.Fatalf("case %d: got %v, want %v", i, got, tc.want)
		}
	}
}

func TestMergeFieldsAndAddToField(t *testing.T) {
	doc := []byte(`{"id":"p1","name":"Cash","balance":10}`)
	merged, err := MergeFields(doc, map[string]any{"name": "Wallet"})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	added, err := AddToField(merged, "balance", -2.5)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	var out struct {
		ID      string  `json:"id"`
		Name    string  `json:"name"`
		Balance float64 `json:"balance"`
	}
	if err := json.Unmarshal(added, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != "p1" || out.Name != "Wallet" || out.Balance != 7.5 {
		t.Fatalf("unexpected document: %+v", out)
	}

	if _, err := AddToField([]byte(`{"balance":"ten"}`), "balance", 1); err == nil {
		t.Fatalf("expected error for non numeric field")
	}
	fresh, err := AddToField([]byte(`{}`), "balance", 3)
	if err != nil || string(fresh) != `{"balance":3}` {
		t.Fatalf("missing field should start at zero, got %s (err=%v)", fresh, err)
	}
}
