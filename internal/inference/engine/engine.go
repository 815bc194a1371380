package engine

import "context"

// CompletionRequest asks a provider to complete a generated prompt.
// PromptType is one of summary|analysis|suggestion and lets providers that
// support it pick a response shape.
type CompletionRequest struct {
	Module     string
	PromptType string
	Prompt     string
}

// CompletionProvider turns a prompt into text. Prompt construction never
// depends on which provider is configured.
type CompletionProvider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
