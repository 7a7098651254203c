// Package nutrilog holds the nutrition log domain model and the repository
// contract the HTTP layer and exporter depend on.
package nutrilog

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type FoodEntry struct {
	ID        int64
	EntryDate time.Time
	MealType  string
	FoodName  string
	Quantity  float64
	Unit      string
	Calories  float64
	Protein   float64
	Carbs     float64
	Fat       float64
	Fiber     float64
	Sugar     float64
	Sodium    float64
	CreatedAt time.Time
}

type CreateFoodEntryInput struct {
	EntryDate time.Time
	MealType  string
	FoodName  string
	Quantity  float64
	Unit      string
	Calories  float64
	Protein   float64
	Carbs     float64
	Fat       float64
	Fiber     float64
	Sugar     float64
	Sodium    float64
}

// EntryFilter narrows ListEntries. Zero values mean "no constraint"; the
// date range is half-open, [From, To).
type EntryFilter struct {
	From     time.Time
	To       time.Time
	MealType string
	Limit    int
}

type DailySummary struct {
	SummaryDate   time.Time
	TotalCalories float64
	TotalProtein  float64
	TotalCarbs    float64
	TotalFat      float64
	EntryCount    int
}

type WeightEntry struct {
	LogDate  time.Time
	WeightKg float64
}
