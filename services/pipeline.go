package services

import (
	"context"
	"encoding/json"
	"fmt"

	"ga-assistant-backend/internal/logger"
	"ga-assistant-backend/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// QueryState tracks a query's progress through the pipeline.
type QueryState string

const (
	StateNew           QueryState = "NEW"
	StateHistoryParsed QueryState = "HISTORY_PARSED"
	StateRetrieved     QueryState = "RETRIEVED"
	StateRefined       QueryState = "REFINED"
	StateAssembled     QueryState = "ASSEMBLED"
	StateGenerated     QueryState = "GENERATED"
	StateDone          QueryState = "DONE"
	StateFailed        QueryState = "FAILED"
)

// Generator produces an answer for an assembled prompt. Stateless per call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QueryPipeline runs the full query path: history parsing, candidate
// retrieval, two-stage refinement, context assembly, generation. Each query
// is independent; the pipeline holds no per-query state between calls.
type QueryPipeline struct {
	retriever *Retriever
	refiner   *Refiner
	builder   *PromptBuilder
	generator Generator
}

func NewQueryPipeline(retriever *Retriever, refiner *Refiner, builder *PromptBuilder, generator Generator) *QueryPipeline {
	return &QueryPipeline{
		retriever: retriever,
		refiner:   refiner,
		builder:   builder,
		generator: generator,
	}
}

// ParseHistory decodes the raw history JSON into typed turns. Malformed
// input returns models.ErrParse so the caller can degrade to empty history.
func ParseHistory(raw string) ([]models.ConversationTurn, error) {
	if raw == "" {
		return nil, nil
	}
	var turns []models.ConversationTurn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrParse, err)
	}
	return turns, nil
}

// Answer runs one query end to end and returns the generated text. An empty
// corpus or an empty refined set is not a failure: the generator receives an
// empty context and answers with the configured fallback per its template
// instructions.
func (p *QueryPipeline) Answer(ctx context.Context, query, rawHistory string) (string, error) {
	tracer := otel.Tracer("query-pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.answer")
	defer span.End()

	state := StateNew

	history, err := ParseHistory(rawHistory)
	if err != nil {
		// Malformed history is recoverable; the query proceeds without it.
		logger.Warn("Failed to parse conversation history, continuing with empty history", "error", err)
		history = nil
	}
	state = StateHistoryParsed
	logger.Debug("Query state", "state", string(state), "history_turns", len(history))

	candidates, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		return "", p.fail(span, state, err)
	}
	state = StateRetrieved
	span.SetAttributes(attribute.Int("pipeline.candidates", len(candidates)))
	logger.Debug("Query state", "state", string(state), "candidates", len(candidates))

	refined, err := p.refiner.Refine(ctx, query, candidates)
	if err != nil {
		return "", p.fail(span, state, err)
	}
	state = StateRefined
	span.SetAttributes(attribute.Int("pipeline.refined", len(refined)))
	logger.Debug("Query state", "state", string(state), "refined", len(refined))

	prompt, err := p.builder.Assemble(refined, history, query)
	if err != nil {
		return "", p.fail(span, state, err)
	}
	state = StateAssembled
	logger.Debug("Query state", "state", string(state), "prompt_chars", len(prompt.Text))

	answer, err := p.generator.Generate(ctx, prompt.Text)
	if err != nil {
		return "", p.fail(span, state, err)
	}
	state = StateGenerated

	state = StateDone
	logger.Debug("Query state", "state", string(state))
	return answer, nil
}

func (p *QueryPipeline) fail(span trace.Span, from QueryState, err error) error {
	span.SetAttributes(attribute.String("pipeline.failed_from", string(from)))
	logger.Error("Query pipeline failed", "from_state", string(from), "error", err)
	return err
}
