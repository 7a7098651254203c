package askdb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeExecutor struct {
	result   ResultSet
	err      error
	executed []string
}

func (f *fakeExecutor) Execute(_ context.Context, sqlText string) (ResultSet, error) {
	f.executed = append(f.executed, sqlText)
	if f.err != nil {
		return ResultSet{}, f.err
	}
	return f.result, nil
}

func newTestPipeline(completer *fakeCompleter, executor *fakeExecutor) *Pipeline {
	return NewPipeline(NewGenerator(completer, DefaultSchema), executor, DefaultSchema, nil)
}

func TestAnswerEndToEnd(t *testing.T) {
	completer := &fakeCompleter{
		completion: "select count(*) as entries, count(distinct entry_date) as days from food_entries where food_name ilike '%beer%' and entry_date >= '2025-01-01' and entry_date < '2026-01-01';",
	}
	executor := &fakeExecutor{
		result: ResultSet{
			Rows:     []Row{{"entries": int64(14), "days": int64(9)}},
			RowCount: 1,
			Duration: 6 * time.Millisecond,
		},
	}
	pipeline := newTestPipeline(completer, executor)

	answer, err := pipeline.Answer(context.Background(), "how many beers did I have in 2025")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Method != MethodStructured {
		t.Fatalf("Method = %q", answer.Method)
	}
	if !strings.Contains(answer.Text, "14 entries") || !strings.Contains(answer.Text, "9 different days") {
		t.Fatalf("Text = %q", answer.Text)
	}
	if len(executor.executed) != 1 {
		t.Fatalf("executed %d queries", len(executor.executed))
	}
	if strings.HasSuffix(executor.executed[0], ";") {
		t.Fatalf("terminator should be stripped before execution: %q", executor.executed[0])
	}
	if answer.Query != executor.executed[0] {
		t.Fatalf("answer.Query = %q, executed = %q", answer.Query, executor.executed[0])
	}
}

func TestAnswerRoutesNonAggregationToFallback(t *testing.T) {
	completer := &fakeCompleter{completion: "select 1 from food_entries"}
	executor := &fakeExecutor{}
	pipeline := newTestPipeline(completer, executor)

	_, err := pipeline.Answer(context.Background(), "what should I eat more of")
	if !errors.Is(err, ErrFallback) {
		t.Fatalf("Answer() error = %v, want ErrFallback", err)
	}
	if len(completer.prompts) != 0 {
		t.Fatal("fallback questions must not reach the generator")
	}
	if len(executor.executed) != 0 {
		t.Fatal("fallback questions must not reach the database")
	}
}

func TestAnswerRejectedQueryNeverExecutes(t *testing.T) {
	completer := &fakeCompleter{completion: "drop table food_entries"}
	executor := &fakeExecutor{}
	pipeline := newTestPipeline(completer, executor)

	_, err := pipeline.Answer(context.Background(), "how many beers did I have")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Answer() error = %T, want *ValidationError", err)
	}
	if validationErr.SQL != "drop table food_entries" {
		t.Fatalf("rejected SQL = %q", validationErr.SQL)
	}
	if validationErr.Reason == "" {
		t.Fatal("rejection reason should be populated")
	}
	if len(executor.executed) != 0 {
		t.Fatal("rejected query must never be executed")
	}
}

func TestAnswerGenerationFailureSkipsDatabase(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("model timeout")}
	executor := &fakeExecutor{}
	pipeline := newTestPipeline(completer, executor)

	_, err := pipeline.Answer(context.Background(), "how many beers did I have in 2025")
	var generationErr *GenerationError
	if !errors.As(err, &generationErr) {
		t.Fatalf("Answer() error = %T, want *GenerationError", err)
	}
	if len(executor.executed) != 0 {
		t.Fatal("generation failure must never reach the database")
	}
}

func TestAnswerSurfacesExecutionFailure(t *testing.T) {
	completer := &fakeCompleter{completion: "select broken from food_entries"}
	executor := &fakeExecutor{err: errors.New(`column "broken" does not exist`)}
	pipeline := newTestPipeline(completer, executor)

	_, err := pipeline.Answer(context.Background(), "how many beers did I have")
	var executionErr *ExecutionError
	if !errors.As(err, &executionErr) {
		t.Fatalf("Answer() error = %T, want *ExecutionError", err)
	}
	if !strings.Contains(executionErr.Error(), "does not exist") {
		t.Fatalf("underlying message lost: %v", executionErr)
	}
	if executionErr.SQL != "select broken from food_entries" {
		t.Fatalf("SQL = %q", executionErr.SQL)
	}
}
