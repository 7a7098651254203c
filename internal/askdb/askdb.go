// Package askdb answers natural-language questions about the nutrition log
// by generating SQL with a language model and gating every generated query
// through a lexical validator before it reaches the database.
package askdb

import (
	"errors"
	"fmt"
	"time"
)

const (
	MethodStructured = "structured"
	MethodFallback   = "fallback"
)

// ErrFallback signals that a question is not aggregation-shaped and should be
// answered by the free-text path instead. It is a routing decision, not a
// failure.
var ErrFallback = errors.New("question routed to free-text answering")

// CandidateQuery is model output. It is untrusted until Validate accepts it.
type CandidateQuery struct {
	SQL         string
	Question    string
	GeneratedAt time.Time
}

// Verdict is the validator's decision for one candidate query.
type Verdict struct {
	Accepted bool
	Reason   string
}

type Row map[string]any

type ResultSet struct {
	Rows     []Row
	RowCount int
	Duration time.Duration
}

// Answer is the unit returned to the caller. Immutable once constructed.
type Answer struct {
	Text     string
	Query    string
	RowCount int
	Duration time.Duration
	Method   string
}

// ValidationError reports a rejected candidate query. The query text is
// carried for diagnosis; it was never executed.
type ValidationError struct {
	Reason string
	SQL    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("query validation failed: %s", e.Reason)
}

type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("sql generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
