package askdb

import "testing"

func TestClassifyAggregationQuestions(t *testing.T) {
	cases := []struct {
		question string
		want     bool
	}{
		{"how many times did I have coffee", true},
		{"How Many beers in 2025?", true},
		{"how much protein did I eat yesterday", true},
		{"what was my average weight in march", true},
		{"total calories last week", true},
		{"count my breakfasts", true},
		{"on what number of days did I skip lunch", true},
		{"what should I eat more of", false},
		{"was my dinner healthy", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := Classify(tc.question); got != tc.want {
			t.Fatalf("Classify(%q) = %v, want %v", tc.question, got, tc.want)
		}
	}
}
