package askdb

import "strings"

// aggregationPatterns is the counting/quantity vocabulary that routes a
// question through the structured pipeline. Recall-biased on purpose: a
// false positive is bounded by the validator, a false negative falls back to
// free-text answering.
var aggregationPatterns = []string{
	"how many",
	"how much",
	"count",
	"total",
	"sum",
	"average",
	"avg",
	"frequency",
	"how often",
	"times did",
	"days did",
	"number of",
}

// Classify reports whether a question is aggregation-shaped. Pure and total:
// any input yields a decision, never an error.
func Classify(question string) bool {
	normalized := strings.ToLower(question)
	for _, pattern := range aggregationPatterns {
		if strings.Contains(normalized, pattern) {
			return true
		}
	}
	return false
}
