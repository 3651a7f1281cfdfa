package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdeaService_Unconfigured(t *testing.T) {
	svc := NewIdeaService(nil, 1, discardLogger())

	assert.False(t, svc.Available())
	_, err := svc.DateIdea(context.Background())
	assert.ErrorIs(t, err, ErrGeneratorUnavailable)
}

func TestIdeaService_Generate(t *testing.T) {
	gen := &stubGenerator{text: "  Watch the sunrise together.\n"}
	svc := NewIdeaService(gen, 10, discardLogger())

	idea, err := svc.DateIdea(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Watch the sunrise together.", idea)

	_, err = svc.CoupleQuestion(context.Background())
	require.NoError(t, err)

	require.Len(t, gen.prompts, 2)
	assert.Equal(t, dateIdeaPrompt, gen.prompts[0])
	assert.Equal(t, coupleQuestionPrompt, gen.prompts[1])
}

func TestIdeaService_Failures(t *testing.T) {
	upstream := errors.New("quota exceeded")
	svc := NewIdeaService(&stubGenerator{err: upstream}, 10, discardLogger())

	_, err := svc.DateIdea(context.Background())
	assert.ErrorIs(t, err, ErrGeneratorFailed)
	assert.ErrorIs(t, err, upstream)

	svc = NewIdeaService(&stubGenerator{text: "   "}, 10, discardLogger())
	_, err = svc.CoupleQuestion(context.Background())
	assert.ErrorIs(t, err, ErrGeneratorFailed)
}

func TestIdeaService_RateLimited(t *testing.T) {
	svc := NewIdeaService(&stubGenerator{text: "idea"}, 0.001, discardLogger())

	_, err := svc.DateIdea(context.Background())
	require.NoError(t, err, "burst allows the first request")

	_, err = svc.DateIdea(context.Background())
	assert.ErrorIs(t, err, ErrRateLimited)
}
