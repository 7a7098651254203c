package askdb

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	emptyResultText = "no matching entries found."
	listingLimit    = 20
)

type resultShape int

const (
	shapeEmpty resultShape = iota
	shapeAggregate
	shapeListing
)

// aggregateKeys mark a single result row as aggregate-shaped rather than a
// listing row.
var aggregateKeys = []string{
	"days", "day_count",
	"entries", "entry_count",
	"count",
	"total_calories", "total_protein",
	"average_calories", "average_weight",
}

// Format renders a result set into the user-facing answer. Pure and
// deterministic: the same inputs always produce byte-identical text.
func Format(question, sqlText string, result ResultSet) Answer {
	answer := Answer{
		Query:    sqlText,
		RowCount: result.RowCount,
		Duration: result.Duration,
		Method:   MethodStructured,
	}

	switch shapeOf(result) {
	case shapeEmpty:
		answer.Text = emptyResultText
	case shapeAggregate:
		answer.Text = formatAggregate(result.Rows[0])
	default:
		answer.Text = formatListing(result)
	}
	return answer
}

func shapeOf(result ResultSet) resultShape {
	if result.RowCount == 0 {
		return shapeEmpty
	}
	if result.RowCount == 1 {
		row := result.Rows[0]
		for _, key := range aggregateKeys {
			if _, ok := row[key]; ok {
				return shapeAggregate
			}
		}
		for key := range row {
			if strings.HasPrefix(key, "total_") || strings.HasPrefix(key, "average_") {
				return shapeAggregate
			}
		}
	}
	return shapeListing
}

func formatAggregate(row Row) string {
	parts := make([]string, 0, 4)
	if value, ok := numberField(row, "entries", "entry_count"); ok {
		parts = append(parts, fmt.Sprintf("%d entries", roundInt(value)))
	}
	if value, ok := numberField(row, "days", "day_count"); ok {
		parts = append(parts, fmt.Sprintf("across %d different days", roundInt(value)))
	}
	if value, ok := numberField(row, "count"); ok {
		parts = append(parts, fmt.Sprintf("%d matching records", roundInt(value)))
	}
	if value, ok := numberField(row, "total_calories"); ok {
		parts = append(parts, fmt.Sprintf("%d cal in total", roundInt(value)))
	}
	if value, ok := numberField(row, "total_protein"); ok {
		parts = append(parts, fmt.Sprintf("%dg protein in total", roundInt(value)))
	}
	if value, ok := numberField(row, "average_calories"); ok {
		parts = append(parts, fmt.Sprintf("%d cal per day on average", roundInt(value)))
	}
	if value, ok := numberField(row, "average_weight"); ok {
		parts = append(parts, fmt.Sprintf("%.1f kg on average", value))
	}
	if len(parts) == 0 {
		// Aggregate-shaped by a total_/average_ column the templates do not
		// know; render the raw fields in a stable order.
		keys := make([]string, 0, len(row))
		for key := range row {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if number, ok := coerceNumber(row[key]); ok {
				parts = append(parts, fmt.Sprintf("%s: %d", key, roundInt(number)))
			}
		}
	}
	return "Found " + strings.Join(parts, ", ") + "."
}

func formatListing(result ResultSet) string {
	var b strings.Builder
	shown := result.RowCount
	if shown > listingLimit {
		shown = listingLimit
	}
	for i := 0; i < shown; i++ {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(formatListingRow(result.Rows[i]))
	}
	if result.RowCount > listingLimit {
		b.WriteString(fmt.Sprintf("\n...and %d more", result.RowCount-listingLimit))
	}
	return b.String()
}

func formatListingRow(row Row) string {
	var b strings.Builder
	b.WriteString("- ")
	if date, ok := dateField(row, "entry_date", "date", "summary_date", "log_date"); ok {
		b.WriteString(date + ": ")
	}
	if label, ok := stringField(row, "food_name", "name", "label", "meal_type"); ok {
		b.WriteString(label)
	}
	if value, ok := numberField(row, "calories"); ok {
		b.WriteString(fmt.Sprintf(" (%d cal)", roundInt(value)))
	}
	return strings.TrimRight(b.String(), ": ")
}

func numberField(row Row, keys ...string) (float64, bool) {
	for _, key := range keys {
		if raw, ok := row[key]; ok {
			if value, ok := coerceNumber(raw); ok {
				return value, true
			}
		}
	}
	return 0, false
}

func coerceNumber(raw any) (float64, bool) {
	switch value := raw.(type) {
	case int:
		return float64(value), true
	case int32:
		return float64(value), true
	case int64:
		return float64(value), true
	case float32:
		return float64(value), true
	case float64:
		return value, true
	case []byte:
		return parseNumber(string(value))
	case string:
		return parseNumber(value)
	default:
		return 0, false
	}
}

func parseNumber(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func stringField(row Row, keys ...string) (string, bool) {
	for _, key := range keys {
		if raw, ok := row[key]; ok {
			switch value := raw.(type) {
			case string:
				if value != "" {
					return value, true
				}
			case []byte:
				if len(value) > 0 {
					return string(value), true
				}
			}
		}
	}
	return "", false
}

// dateField renders date columns to YYYY-MM-DD whether the driver returned a
// native time or an ISO string.
func dateField(row Row, keys ...string) (string, bool) {
	for _, key := range keys {
		raw, ok := row[key]
		if !ok {
			continue
		}
		switch value := raw.(type) {
		case time.Time:
			return value.Format("2006-01-02"), true
		case string:
			if len(value) >= 10 {
				return value[:10], true
			}
		case []byte:
			if len(value) >= 10 {
				return string(value[:10]), true
			}
		}
	}
	return "", false
}

func roundInt(value float64) int64 {
	return int64(math.Round(value))
}
