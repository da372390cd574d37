package service

import (
	"context"
	"fmt"
	"strings"
)

// Strategy names as reported in answer payloads.
const (
	StrategyOpenAI      = "openai"
	StrategyAnthropic   = "anthropic"
	StrategyAlt         = "alt"
	StrategyOllama      = "ollama"
	StrategyHuggingFace = "huggingface"
	StrategyExtractive  = "extractive"
)

// Completion parameters shared by the hosted chat providers.
const (
	completionMaxTokens   = 500
	completionTemperature = 0.3
)

// Completer is the chat-completion interface the hosted strategies wrap.
// Both the OpenAI and Anthropic clients satisfy it.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int, temperature float32) (string, error)
}

// completerStrategy answers with a hosted chat provider using the shared
// system prompt and assembled context.
type completerStrategy struct {
	name      string
	completer Completer
}

// NewCompleterStrategy wraps a chat-completion client as a cascade strategy.
func NewCompleterStrategy(name string, completer Completer) Strategy {
	return &completerStrategy{name: name, completer: completer}
}

func (s *completerStrategy) Name() string { return s.name }

func (s *completerStrategy) Available(ctx context.Context) bool {
	return s.completer != nil
}

func (s *completerStrategy) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	contextText := BuildContextText(req.Chunks)
	user := BuildUserPrompt(contextText, req.History, req.Question)
	return s.completer.Complete(ctx, systemPrompt, user, completionMaxTokens, completionTemperature)
}

// OllamaClientInterface defines the local model interface consumed by the
// ollama strategy.
type OllamaClientInterface interface {
	Reachable(ctx context.Context) bool
	Generate(ctx context.Context, prompt string) (string, error)
}

type ollamaStrategy struct {
	client OllamaClientInterface
}

// NewOllamaStrategy wraps a local Ollama client as a cascade strategy. The
// strategy is skipped whenever the Ollama daemon is not reachable.
func NewOllamaStrategy(client OllamaClientInterface) Strategy {
	return &ollamaStrategy{client: client}
}

func (s *ollamaStrategy) Name() string { return StrategyOllama }

func (s *ollamaStrategy) Available(ctx context.Context) bool {
	return s.client != nil && s.client.Reachable(ctx)
}

func (s *ollamaStrategy) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	contextText := BuildContextText(req.Chunks)
	prompt := fmt.Sprintf("%s\n\n%s", systemPrompt, BuildUserPrompt(contextText, req.History, req.Question))
	return s.client.Generate(ctx, prompt)
}

// QAClientInterface defines the extractive question-answering interface
// consumed by the HuggingFace strategy.
type QAClientInterface interface {
	Answer(ctx context.Context, question, contextText string) (string, error)
}

type hfStrategy struct {
	client QAClientInterface
}

// NewHuggingFaceStrategy wraps a hosted extractive QA client as a cascade
// strategy.
func NewHuggingFaceStrategy(client QAClientInterface) Strategy {
	return &hfStrategy{client: client}
}

func (s *hfStrategy) Name() string { return StrategyHuggingFace }

func (s *hfStrategy) Available(ctx context.Context) bool {
	return s.client != nil
}

func (s *hfStrategy) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	// The QA endpoint wants a flat passage, not a prompt.
	parts := make([]string, 0, len(req.Chunks))
	for _, sc := range req.Chunks {
		parts = append(parts, sc.Chunk.Text)
	}
	return s.client.Answer(ctx, req.Question, strings.Join(parts, " "))
}

// extractiveStrategy is the deterministic terminal strategy. It is always
// available and never returns an error.
type extractiveStrategy struct{}

// NewExtractiveStrategy returns the deterministic fallback strategy.
func NewExtractiveStrategy() Strategy {
	return extractiveStrategy{}
}

func (extractiveStrategy) Name() string { return StrategyExtractive }

func (extractiveStrategy) Available(ctx context.Context) bool { return true }

func (extractiveStrategy) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	return ExtractiveAnswer(req.Question, req.Chunks), nil
}
