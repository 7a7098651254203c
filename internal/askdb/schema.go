package askdb

import "strings"

// SchemaDescriptor is the single source of truth for which relations a
// generated query may touch. It is embedded verbatim in the generation
// prompt and doubles as the validator's allow-list. Changing the underlying
// tables means changing this descriptor in lockstep.
type SchemaDescriptor struct {
	Version   string
	Relations []Relation
}

type Relation struct {
	Name    string
	Comment string
	Columns []Column
}

type Column struct {
	Name string
	Type string
}

func (s SchemaDescriptor) RelationNames() []string {
	names := make([]string, 0, len(s.Relations))
	for _, relation := range s.Relations {
		names = append(names, relation.Name)
	}
	return names
}

// PromptDDL renders the descriptor as the table listing the generation
// prompt embeds.
func (s SchemaDescriptor) PromptDDL() string {
	var b strings.Builder
	for i, relation := range s.Relations {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(relation.Name)
		if relation.Comment != "" {
			b.WriteString(" -- " + relation.Comment)
		}
		b.WriteString("\n")
		for _, column := range relation.Columns {
			b.WriteString("  " + column.Name + " " + column.Type + "\n")
		}
	}
	return b.String()
}

// DefaultSchema describes the three queryable nutrition log relations.
var DefaultSchema = SchemaDescriptor{
	Version: "1",
	Relations: []Relation{
		{
			Name:    "food_entries",
			Comment: "one row per logged food item",
			Columns: []Column{
				{Name: "id", Type: "bigint"},
				{Name: "entry_date", Type: "date"},
				{Name: "meal_type", Type: "text"},
				{Name: "food_name", Type: "text"},
				{Name: "quantity", Type: "numeric"},
				{Name: "unit", Type: "text"},
				{Name: "calories", Type: "numeric"},
				{Name: "protein", Type: "numeric"},
				{Name: "carbs", Type: "numeric"},
				{Name: "fat", Type: "numeric"},
				{Name: "fiber", Type: "numeric"},
				{Name: "sugar", Type: "numeric"},
				{Name: "sodium", Type: "numeric"},
			},
		},
		{
			Name:    "daily_summary",
			Comment: "one row per day with daily totals",
			Columns: []Column{
				{Name: "summary_date", Type: "date"},
				{Name: "total_calories", Type: "numeric"},
				{Name: "total_protein", Type: "numeric"},
				{Name: "total_carbs", Type: "numeric"},
				{Name: "total_fat", Type: "numeric"},
				{Name: "entry_count", Type: "integer"},
			},
		},
		{
			Name:    "weight_log",
			Comment: "body weight measurements",
			Columns: []Column{
				{Name: "log_date", Type: "date"},
				{Name: "weight_kg", Type: "numeric"},
			},
		},
	},
}
