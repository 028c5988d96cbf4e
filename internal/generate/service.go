// Package generate runs the prompt → model → outline sequence, one request
// at a time.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgallion1/docgen/internal/outline"
	"github.com/dgallion1/docgen/internal/prompt"
	"golang.org/x/sync/semaphore"
)

// Completer sends a prompt to a language model and returns its raw text.
type Completer interface {
	Complete(ctx context.Context, prompt, model string) (string, error)
}

// Kind classifies a generation failure for callers.
type Kind string

const (
	// KindMalformedJSON means the model answered but no outline could be
	// recovered from the text. Retrying the request may help.
	KindMalformedJSON Kind = "malformed_json"
	// KindGenerationFailed covers every other failure, including rate-limit
	// and transport exhaustion.
	KindGenerationFailed Kind = "generation_failed"
)

// Error is returned by Generate.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Detail }
func (e *Error) Unwrap() error { return e.Err }

// Service serializes generations behind a single-slot semaphore. Waiters
// are admitted in arrival order.
type Service struct {
	llm  Completer
	lock *semaphore.Weighted
	log  *slog.Logger

	waiting  atomic.Int64
	inFlight atomic.Int64
}

func NewService(llm Completer, log *slog.Logger) *Service {
	return &Service{
		llm:  llm,
		lock: semaphore.NewWeighted(1),
		log:  log,
	}
}

// Waiting is the number of requests queued behind the current generation.
func (s *Service) Waiting() int { return int(s.waiting.Load()) }

// InFlight is 1 while a generation holds the lock.
func (s *Service) InFlight() int { return int(s.inFlight.Load()) }

// Generate compiles req, calls the model and extracts the outline. ctx
// bounds only the wait for the lock; once admitted the generation runs to
// completion or terminal failure.
func (s *Service) Generate(ctx context.Context, req prompt.Request) (*outline.Section, error) {
	log := s.log.With("topic", req.Topic, "doc_type", string(req.DocType), "page_target", req.PageTarget)

	queued := time.Now()
	s.waiting.Add(1)
	err := s.lock.Acquire(ctx, 1)
	s.waiting.Add(-1)
	if err != nil {
		return nil, &Error{Kind: KindGenerationFailed, Detail: "cancelled while queued", Err: err}
	}
	defer s.lock.Release(1)
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	ctx = context.WithoutCancel(ctx)
	log.Info("generation started", "queue_wait_ms", time.Since(queued).Milliseconds())

	compiled := prompt.Compile(req, prompt.LayoutForPages(req.PageTarget))
	log.Info("prompt compiled",
		"word_budget", compiled.WordBudget,
		"template_sections", len(compiled.Template),
		"prompt_chars", len(compiled.Text),
	)

	start := time.Now()
	text, err := s.llm.Complete(ctx, compiled.Text, req.Model)
	if err != nil {
		log.Error("model call failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, &Error{Kind: KindGenerationFailed, Detail: err.Error(), Err: err}
	}
	log.Info("model answered", "duration_ms", time.Since(start).Milliseconds(), "response_chars", len(text))

	sec, err := outline.Extract(text)
	if err != nil {
		log.Warn("model output not usable", "error", err)
		return nil, classifyExtract(err)
	}

	sections := 0
	sec.Walk(func(*outline.Section, int) { sections++ })
	log.Info("generation finished",
		"sections", sections,
		"words", sec.CountWords(),
		"word_budget", compiled.WordBudget,
	)
	return sec, nil
}

func classifyExtract(err error) *Error {
	if errors.Is(err, outline.ErrEmptyResponse) || errors.Is(err, outline.ErrMalformedJSON) {
		return &Error{Kind: KindMalformedJSON, Detail: err.Error(), Err: err}
	}
	return &Error{Kind: KindGenerationFailed, Detail: fmt.Sprintf("extract outline: %v", err), Err: err}
}
