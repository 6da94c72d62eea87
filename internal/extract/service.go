// Package extract is the boundary to the language model that turns free
// text into graph drafts and partial entity records.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"casewall/internal/board"
	"casewall/internal/logger"
)

// Client is what the editor needs from the extraction service.
type Client interface {
	ExtractGraph(ctx context.Context, text string) (GraphDraft, error)
	ExtractEntity(ctx context.Context, text string, t board.NodeType) (EntityDraft, error)
	SuggestPatterns(ctx context.Context, caseJSON string) (string, error)
}

const (
	graphSystem = "You are an investigative analyst. Extract entities and the connections between them from case notes. " +
		"Create nodes for people (pessoa), places (local), events (evento), clues (pista), evidence (prova) and hypotheses (hipotese). " +
		"Edges reference nodes by their exact title. Dates use YYYY-MM-DD."
	entitySystem = "You fill in a single investigation record from free text. " +
		"Leave any field you cannot support from the text empty."
	patternsSystem = "You are a senior forensic analyst. Look for gaps in the timeline, conflicting statements and missing links of evidence. " +
		"Suggest hidden connections, unexplored leads and suspicious patterns."
)

// Service implements Client on top of a Completer with rate-limit retries.
type Service struct {
	llm   Completer
	retry Retry
}

type Option func(*Service)

func WithRetry(r Retry) Option {
	return func(s *Service) { s.retry = r }
}

func NewService(llm Completer, opts ...Option) *Service {
	s := &Service{llm: llm, retry: DefaultRetry()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ExtractGraph proposes nodes and title-linked edges for text.
func (s *Service) ExtractGraph(ctx context.Context, text string) (GraphDraft, error) {
	req := Request{
		System:      graphSystem,
		Prompt:      fmt.Sprintf("Extract the investigative entities and connections from this text:\n\n%s", text),
		Name:        "investigation_graph",
		Description: "Entities and title-referenced connections",
		Schema:      Schema(GraphDraft{}),
		Temperature: 0.1,
	}

	var draft GraphDraft
	if err := s.structured(ctx, "extract_graph", req, &draft); err != nil {
		return GraphDraft{}, err
	}
	if err := draft.Validate(); err != nil {
		return GraphDraft{}, err
	}
	logger.Info("graph extracted", "nodes", len(draft.Nodes), "edges", len(draft.Edges))
	return draft, nil
}

// ExtractEntity fills a single record of type t from text.
func (s *Service) ExtractEntity(ctx context.Context, text string, t board.NodeType) (EntityDraft, error) {
	var hint string
	switch t {
	case board.TypePerson:
		hint = "This is a person: extract tax id (cpf), age and date of birth."
	case board.TypeLocation:
		hint = "This is a location: extract the full address."
	}
	req := Request{
		System: entitySystem,
		Prompt: fmt.Sprintf("Record type %q. %s Pick the best title, a short description, key dates and the likely status. "+
			"Put other relevant facts in customFields.\n\n%s", t, hint, text),
		Name:        "investigation_record",
		Description: "A partial record for one entity",
		Schema:      Schema(EntityDraft{}),
		Temperature: 0.1,
	}

	var draft EntityDraft
	if err := s.structured(ctx, "extract_entity", req, &draft); err != nil {
		return EntityDraft{}, err
	}
	return draft, nil
}

// SuggestPatterns returns a free-text analysis of a serialized case.
func (s *Service) SuggestPatterns(ctx context.Context, caseJSON string) (string, error) {
	req := Request{
		System:      patternsSystem,
		Prompt:      "Analyse this investigation and suggest hidden connections, contradictions or patterns:\n\n" + caseJSON,
		Temperature: 0.3,
	}

	var answer string
	err := s.retry.Do(ctx, "suggest_patterns", func(ctx context.Context) error {
		out, err := s.llm.Complete(ctx, req)
		if err != nil {
			return err
		}
		answer = strings.TrimSpace(out)
		return nil
	})
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", ErrEmptyResponse
	}
	return answer, nil
}

func (s *Service) structured(ctx context.Context, op string, req Request, out any) error {
	start := time.Now()
	var raw string
	err := s.retry.Do(ctx, op, func(ctx context.Context) error {
		var err error
		raw, err = s.llm.Complete(ctx, req)
		return err
	})
	if err != nil {
		logger.Error("extraction failed", "op", op, "err", err)
		return err
	}
	if err := UnmarshalFlexible(raw, out); err != nil {
		logger.Error("malformed extraction response", "op", op, "err", err)
		return fmt.Errorf("%s: malformed response: %w", op, err)
	}
	logger.Debug("extraction done", "op", op, "took", time.Since(start))
	return nil
}
