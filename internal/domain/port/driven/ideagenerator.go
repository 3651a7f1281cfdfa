package driven

import "context"

// IdeaGenerator defines the driven port for the external generative-text API.
type IdeaGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
