package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
)

const (
	dateIdeaPrompt = "Give one creative, short and romantic date idea for a couple. " +
		"Keep it under 15 words and phrase it as a suggestion. Reply with the idea only, no introduction."
	coupleQuestionPrompt = "Write one insightful and playful open-ended question for a couple to ask each other " +
		"to deepen their connection. It must not be a yes/no question. Reply with the question only."
)

// IdeaService passes fixed prompts to the external generator. A process-wide
// token bucket keeps the app inside the provider's quota.
type IdeaService struct {
	generator driven.IdeaGenerator
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewIdeaService creates an IdeaService allowing perSecond requests with a
// burst of at least one. generator may be nil when no API key is configured.
func NewIdeaService(generator driven.IdeaGenerator, perSecond float64, logger *slog.Logger) *IdeaService {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &IdeaService{
		generator: generator,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), burst),
		logger:    logger,
	}
}

// Available reports whether a generator is configured.
func (s *IdeaService) Available() bool {
	return s.generator != nil
}

// DateIdea returns a short date suggestion.
func (s *IdeaService) DateIdea(ctx context.Context) (string, error) {
	return s.generate(ctx, "date_idea", dateIdeaPrompt)
}

// CoupleQuestion returns an open question for the couple to discuss.
func (s *IdeaService) CoupleQuestion(ctx context.Context) (string, error) {
	return s.generate(ctx, "couple_question", coupleQuestionPrompt)
}

func (s *IdeaService) generate(ctx context.Context, kind, prompt string) (string, error) {
	if s.generator == nil {
		return "", ErrGeneratorUnavailable
	}

	if !s.limiter.Allow() {
		return "", ErrRateLimited
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("idea generation failed", "kind", kind, "error", err)
		return "", fmt.Errorf("%w: %w", ErrGeneratorFailed, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrGeneratorFailed)
	}

	return text, nil
}
