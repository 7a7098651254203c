package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/macrolog/macrolog/internal/nutrilog"
)

const defaultListLimit = 200

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping log db: %w", err)
	}
	return nil
}

func (r *Repository) InsertFoodEntry(ctx context.Context, in nutrilog.CreateFoodEntryInput) (nutrilog.FoodEntry, error) {
	query := `
INSERT INTO food_entries (entry_date, meal_type, food_name, quantity, unit, calories, protein, carbs, fat, fiber, sugar, sodium)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id, created_at`

	entry := nutrilog.FoodEntry{
		EntryDate: in.EntryDate,
		MealType:  in.MealType,
		FoodName:  in.FoodName,
		Quantity:  in.Quantity,
		Unit:      in.Unit,
		Calories:  in.Calories,
		Protein:   in.Protein,
		Carbs:     in.Carbs,
		Fat:       in.Fat,
		Fiber:     in.Fiber,
		Sugar:     in.Sugar,
		Sodium:    in.Sodium,
	}
	if err := r.db.QueryRowContext(ctx, query,
		in.EntryDate, in.MealType, in.FoodName, in.Quantity, in.Unit,
		in.Calories, in.Protein, in.Carbs, in.Fat, in.Fiber, in.Sugar, in.Sodium,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return nutrilog.FoodEntry{}, fmt.Errorf("insert food entry: %w", err)
	}
	return entry, nil
}

func (r *Repository) ListEntries(ctx context.Context, filter nutrilog.EntryFilter) ([]nutrilog.FoodEntry, error) {
	query := `
SELECT id, entry_date, meal_type, food_name, quantity, unit, calories, protein, carbs, fat, fiber, sugar, sodium, created_at
FROM food_entries
WHERE ($1::date IS NULL OR entry_date >= $1)
  AND ($2::date IS NULL OR entry_date < $2)
  AND ($3::text IS NULL OR meal_type = $3)
ORDER BY entry_date DESC, id DESC
LIMIT $4`

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.db.QueryContext(ctx, query,
		nullDate(filter.From), nullDate(filter.To), nullString(filter.MealType), limit)
	if err != nil {
		return nil, fmt.Errorf("list food entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]nutrilog.FoodEntry, 0)
	for rows.Next() {
		var entry nutrilog.FoodEntry
		if err := rows.Scan(
			&entry.ID, &entry.EntryDate, &entry.MealType, &entry.FoodName,
			&entry.Quantity, &entry.Unit, &entry.Calories, &entry.Protein,
			&entry.Carbs, &entry.Fat, &entry.Fiber, &entry.Sugar, &entry.Sodium,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan food entry row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food entry rows: %w", err)
	}
	return entries, nil
}

func (r *Repository) GetDailySummary(ctx context.Context, date string) (nutrilog.DailySummary, error) {
	query := `
SELECT summary_date, total_calories, total_protein, total_carbs, total_fat, entry_count
FROM daily_summary
WHERE summary_date = $1`

	var summary nutrilog.DailySummary
	if err := r.db.QueryRowContext(ctx, query, date).Scan(
		&summary.SummaryDate,
		&summary.TotalCalories,
		&summary.TotalProtein,
		&summary.TotalCarbs,
		&summary.TotalFat,
		&summary.EntryCount,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nutrilog.DailySummary{}, nutrilog.ErrNotFound
		}
		return nutrilog.DailySummary{}, fmt.Errorf("get daily summary: %w", err)
	}
	return summary, nil
}

func (r *Repository) ListDailySummaries(ctx context.Context, limit int) ([]nutrilog.DailySummary, error) {
	if limit <= 0 {
		limit = 7
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT summary_date, total_calories, total_protein, total_carbs, total_fat, entry_count
FROM daily_summary
ORDER BY summary_date DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list daily summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := make([]nutrilog.DailySummary, 0)
	for rows.Next() {
		var summary nutrilog.DailySummary
		if err := rows.Scan(
			&summary.SummaryDate, &summary.TotalCalories, &summary.TotalProtein,
			&summary.TotalCarbs, &summary.TotalFat, &summary.EntryCount,
		); err != nil {
			return nil, fmt.Errorf("scan daily summary row: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily summary rows: %w", err)
	}
	return summaries, nil
}

func (r *Repository) InsertWeight(ctx context.Context, entry nutrilog.WeightEntry) (nutrilog.WeightEntry, error) {
	query := `
INSERT INTO weight_log (log_date, weight_kg)
VALUES ($1, $2)
ON CONFLICT (log_date) DO UPDATE SET weight_kg = EXCLUDED.weight_kg
RETURNING log_date, weight_kg`

	var saved nutrilog.WeightEntry
	if err := r.db.QueryRowContext(ctx, query, entry.LogDate, entry.WeightKg).Scan(&saved.LogDate, &saved.WeightKg); err != nil {
		return nutrilog.WeightEntry{}, fmt.Errorf("insert weight entry: %w", err)
	}
	return saved, nil
}

func (r *Repository) ListWeights(ctx context.Context, limit int) ([]nutrilog.WeightEntry, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT log_date, weight_kg
FROM weight_log
ORDER BY log_date DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list weight entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]nutrilog.WeightEntry, 0)
	for rows.Next() {
		var entry nutrilog.WeightEntry
		if err := rows.Scan(&entry.LogDate, &entry.WeightKg); err != nil {
			return nil, fmt.Errorf("scan weight row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weight rows: %w", err)
	}
	return entries, nil
}

func nullDate(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
