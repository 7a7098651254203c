package askdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// QueryExecutor runs an already-validated query. The pipeline enforces the
// validation precondition; implementations trust their caller.
type QueryExecutor interface {
	Execute(ctx context.Context, sqlText string) (ResultSet, error)
}

// Executor runs validated queries against the log database, measuring
// wall-clock duration around the call.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
}

func NewExecutor(db *sql.DB, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Executor{db: db, timeout: timeout}
}

func (e *Executor) Execute(ctx context.Context, sqlText string) (ResultSet, error) {
	queryCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	rows, err := e.db.QueryContext(queryCtx, sqlText)
	if err != nil {
		return ResultSet{}, fmt.Errorf("query log db: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return ResultSet{}, fmt.Errorf("read result columns: %w", err)
	}

	result := ResultSet{Rows: make([]Row, 0)}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return ResultSet{}, fmt.Errorf("scan result row: %w", err)
		}
		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return ResultSet{}, fmt.Errorf("iterate result rows: %w", err)
	}

	result.RowCount = len(result.Rows)
	result.Duration = time.Since(start)
	return result, nil
}

func normalizeValue(value any) any {
	if raw, ok := value.([]byte); ok {
		return string(raw)
	}
	return value
}
