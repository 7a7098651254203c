package askdb

import (
	"context"
	"log/slog"

	"github.com/macrolog/macrolog/internal/observability"
)

// Pipeline composes classify, generate, validate, execute and format for one
// question at a time. Invocations are independent and stateless; the
// collaborators are injected at construction and own their own concurrency
// safety.
type Pipeline struct {
	generator *Generator
	executor  QueryExecutor
	schema    SchemaDescriptor
	logger    *slog.Logger
}

func NewPipeline(generator *Generator, executor QueryExecutor, schema SchemaDescriptor, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		generator: generator,
		executor:  executor,
		schema:    schema,
		logger:    logger,
	}
}

// Answer runs one question through the pipeline. It returns ErrFallback for
// non-aggregation questions, a *ValidationError when the generated query is
// rejected (never executed), and *GenerationError / *ExecutionError for
// collaborator failures. No retries: a rejected or failed query surfaces
// once rather than looping a model against a live database.
func (p *Pipeline) Answer(ctx context.Context, question string) (Answer, error) {
	if !Classify(question) {
		return Answer{}, ErrFallback
	}

	candidate, err := p.generator.Generate(ctx, question)
	if err != nil {
		observability.IncrementGenerationFailure()
		return Answer{}, &GenerationError{Err: err}
	}

	verdict := Validate(candidate, p.schema)
	if !verdict.Accepted {
		observability.IncrementValidationRejection()
		if p.logger != nil {
			p.logger.WarnContext(ctx, "generated query rejected",
				slog.String("reason", verdict.Reason),
				slog.String("sql", candidate.SQL),
			)
		}
		return Answer{}, &ValidationError{Reason: verdict.Reason, SQL: candidate.SQL}
	}

	result, err := p.executor.Execute(ctx, candidate.SQL)
	if err != nil {
		return Answer{}, &ExecutionError{SQL: candidate.SQL, Err: err}
	}
	observability.ObserveQueryDuration(result.Duration)
	observability.ObserveQuestion(MethodStructured)

	if p.logger != nil {
		p.logger.DebugContext(ctx, "structured question answered",
			slog.String("sql", candidate.SQL),
			slog.Int("rows", result.RowCount),
			slog.String("duration", result.Duration.String()),
		)
	}
	return Format(question, candidate.SQL, result), nil
}
