package export

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/macrolog/macrolog/internal/nutrilog"
)

type ParquetEncodeResult struct {
	Data        []byte
	RecordCount int64
}

type parquetEntry struct {
	ID        int64   `parquet:"id"`
	EntryDate string  `parquet:"entry_date"`
	MealType  string  `parquet:"meal_type"`
	FoodName  string  `parquet:"food_name"`
	Quantity  float64 `parquet:"quantity"`
	Unit      string  `parquet:"unit"`
	Calories  float64 `parquet:"calories"`
	Protein   float64 `parquet:"protein"`
	Carbs     float64 `parquet:"carbs"`
	Fat       float64 `parquet:"fat"`
	Fiber     float64 `parquet:"fiber"`
	Sugar     float64 `parquet:"sugar"`
	Sodium    float64 `parquet:"sodium"`
}

func EncodeEntriesToParquet(entries []nutrilog.FoodEntry) (ParquetEncodeResult, error) {
	if len(entries) == 0 {
		return ParquetEncodeResult{}, fmt.Errorf("entries are required")
	}

	rows := make([]parquetEntry, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, parquetEntry{
			ID:        entry.ID,
			EntryDate: entry.EntryDate.Format("2006-01-02"),
			MealType:  entry.MealType,
			FoodName:  entry.FoodName,
			Quantity:  entry.Quantity,
			Unit:      entry.Unit,
			Calories:  entry.Calories,
			Protein:   entry.Protein,
			Carbs:     entry.Carbs,
			Fat:       entry.Fat,
			Fiber:     entry.Fiber,
			Sugar:     entry.Sugar,
			Sodium:    entry.Sodium,
		})
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[parquetEntry](buf)
	if _, err := writer.Write(rows); err != nil {
		return ParquetEncodeResult{}, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return ParquetEncodeResult{}, fmt.Errorf("close parquet writer: %w", err)
	}

	return ParquetEncodeResult{
		Data:        buf.Bytes(),
		RecordCount: int64(len(rows)),
	}, nil
}
