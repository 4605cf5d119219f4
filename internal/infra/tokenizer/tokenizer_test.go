package tokenizer

import "testing"

func TestEstimate(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{in: "", want: 0},
		{in: "abcd", want: 2},
		{in: "a b c d e", want: 5},
	}
	for _, tc := range cases {
		if got := Estimate(tc.in); got != tc.want {
			t.Fatalf("%q: expected %d got %d", tc.in, tc.want, got)
		}
	}
}

func TestTrimToBudgetKeepsNewest(t *testing.T) {
	count := func(s string) int { return len(s) }
	items := []string{"aaaa", "bb", "ccc"}

	got := TrimToBudget(items, 5, count)
	if len(got) != 2 || got[0] != "bb" || got[1] != "ccc" {
		t.Fatalf("unexpected trim result %v", got)
	}
	if got := TrimToBudget(items, 2, count); len(got) != 0 {
		t.Fatalf("expected nothing to fit, got %v", got)
	}
	if got := TrimToBudget(items, 0, count); got != nil {
		t.Fatalf("expected nil for zero budget, got %v", got)
	}
}
