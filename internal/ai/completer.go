// Package ai talks to LLM completion providers: it builds the prompts, caches
// the results and turns free-form model output into resume structures.
package ai

import (
	"context"
	"time"
)

// Prompt: один запрос к модели.
type Prompt struct {
	Operation   string
	System      string
	User        string
	Temperature float32
	Timeout     time.Duration
	JSON        bool // ответ ожидается JSON-объектом
}

// Completer: провайдер (OpenAI, Groq, Gemini) за единым контрактом.
type Completer interface {
	Name() string
	Complete(ctx context.Context, p Prompt) (string, error)
}
