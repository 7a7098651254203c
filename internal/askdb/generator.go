package askdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/macrolog/macrolog/internal/llm"
)

// promptExamples are worked question/query pairs embedded in every
// generation prompt. Ordinary data so the examples can evolve without
// touching control flow.
type promptExample struct {
	Question string
	SQL      string
}

var promptExamples = []promptExample{
	{
		Question: "how many times did I have coffee",
		SQL:      "select count(*) as entries, count(distinct entry_date) as days from food_entries where food_name ilike '%coffee%'",
	},
	{
		Question: "how many beers did I have in 2025",
		SQL:      "select count(*) as entries, count(distinct entry_date) as days from food_entries where food_name ilike '%beer%' and entry_date >= '2025-01-01' and entry_date < '2026-01-01'",
	},
	{
		Question: "how much protein did I eat in march 2025",
		SQL:      "select sum(protein) as total_protein from food_entries where entry_date >= '2025-03-01' and entry_date < '2025-04-01'",
	},
	{
		Question: "what was my average daily calorie total in june 2025",
		SQL:      "select avg(total_calories) as average_calories from daily_summary where summary_date >= '2025-06-01' and summary_date < '2025-07-01'",
	},
	{
		Question: "how many days did I log my weight this year",
		SQL:      "select count(distinct log_date) as days from weight_log where log_date >= '2025-01-01' and log_date < '2026-01-01'",
	},
}

// Generator turns a question into a candidate SQL query via the completion
// collaborator. It does not repair malformed output; that is the validator's
// job to catch.
type Generator struct {
	completer llm.Completer
	schema    SchemaDescriptor
}

func NewGenerator(completer llm.Completer, schema SchemaDescriptor) *Generator {
	return &Generator{completer: completer, schema: schema}
}

func (g *Generator) Generate(ctx context.Context, question string) (CandidateQuery, error) {
	completion, err := g.completer.Complete(ctx, g.buildPrompt(question))
	if err != nil {
		return CandidateQuery{}, fmt.Errorf("complete: %w", err)
	}
	return CandidateQuery{
		SQL:         normalizeSQL(completion),
		Question:    question,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (g *Generator) buildPrompt(question string) string {
	var b strings.Builder
	b.WriteString("You convert questions about a personal nutrition log into a single PostgreSQL query.\n\n")
	b.WriteString("Tables:\n")
	b.WriteString(g.schema.PromptDDL())
	b.WriteString("\nRules:\n")
	b.WriteString("- SELECT statements only, one query, no markdown, no explanation.\n")
	b.WriteString("- Match food names fuzzily with ILIKE '%term%'.\n")
	b.WriteString("- Express periods as half-open date ranges: date >= start and date < end.\n")
	b.WriteString("- \"how many times\" means both count(*) as entries and count(distinct entry_date) as days.\n")
	b.WriteString("- \"how much\" means sum() over the relevant numeric column.\n")
	b.WriteString("\nExamples:\n")
	for _, example := range promptExamples {
		b.WriteString("Q: " + example.Question + "\n")
		b.WriteString("A: " + example.SQL + "\n")
	}
	b.WriteString("\nQ: " + strings.TrimSpace(question) + "\nA:")
	return b.String()
}

// normalizeSQL strips code-fence markup, surrounding whitespace, and one
// trailing statement terminator. Nothing else is rewritten.
func normalizeSQL(completion string) string {
	trimmed := strings.TrimSpace(completion)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	trimmed = strings.TrimSuffix(trimmed, ";")
	return strings.TrimSpace(trimmed)
}
