package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	system string
	user   string
	reply  string
	err    error
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string, _ int, _ float32) (string, error) {
	f.system = system
	f.user = user
	return f.reply, f.err
}

func TestCompleterStrategy_BuildsPromptFromChunks(t *testing.T) {
	completer := &fakeCompleter{reply: "an answer"}
	strategy := NewCompleterStrategy(StrategyOpenAI, completer)

	require.True(t, strategy.Available(context.Background()))

	text, err := strategy.Answer(context.Background(), AnswerRequest{
		Question: "when did it open",
		Chunks:   someChunks(),
	})

	require.NoError(t, err)
	assert.Equal(t, "an answer", text)
	assert.Contains(t, completer.system, "ONLY the provided context")
	assert.Contains(t, completer.user, "Source 1 (A)")
	assert.Contains(t, completer.user, "Question: when did it open")
}

func TestCompleterStrategy_NilClientUnavailable(t *testing.T) {
	strategy := NewCompleterStrategy(StrategyAnthropic, nil)

	assert.False(t, strategy.Available(context.Background()))
}

type fakeOllama struct {
	reachable bool
	prompt    string
	reply     string
}

func (f *fakeOllama) Reachable(_ context.Context) bool { return f.reachable }
func (f *fakeOllama) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, nil
}

func TestOllamaStrategy_AvailabilityTracksDaemon(t *testing.T) {
	client := &fakeOllama{reachable: false}
	strategy := NewOllamaStrategy(client)

	assert.False(t, strategy.Available(context.Background()))

	client.reachable = true
	assert.True(t, strategy.Available(context.Background()))
}

func TestOllamaStrategy_InlinesSystemPrompt(t *testing.T) {
	client := &fakeOllama{reachable: true, reply: "local answer"}
	strategy := NewOllamaStrategy(client)

	text, err := strategy.Answer(context.Background(), AnswerRequest{
		Question: "a question",
		Chunks:   someChunks(),
	})

	require.NoError(t, err)
	assert.Equal(t, "local answer", text)
	assert.Contains(t, client.prompt, "ONLY the provided context")
	assert.Contains(t, client.prompt, "Question: a question")
}

type fakeQA struct {
	question string
	passage  string
	reply    string
	err      error
}

func (f *fakeQA) Answer(_ context.Context, question, contextText string) (string, error) {
	f.question = question
	f.passage = contextText
	return f.reply, f.err
}

func TestHuggingFaceStrategy_FlattensChunks(t *testing.T) {
	client := &fakeQA{reply: "1914"}
	strategy := NewHuggingFaceStrategy(client)

	text, err := strategy.Answer(context.Background(), AnswerRequest{
		Question: "when did the canal open",
		Chunks:   someChunks(),
	})

	require.NoError(t, err)
	assert.Equal(t, "1914", text)
	assert.Equal(t, "when did the canal open", client.question)
	assert.Contains(t, client.passage, "The canal opened in 1914.")
	assert.Contains(t, client.passage, "Ships transit in about eight hours.")
	assert.NotContains(t, client.passage, "Source 1", "QA endpoint gets a flat passage, not a prompt")
}

func TestHuggingFaceStrategy_ErrorPropagates(t *testing.T) {
	strategy := NewHuggingFaceStrategy(&fakeQA{err: errors.New("model loading")})

	_, err := strategy.Answer(context.Background(), AnswerRequest{Question: "q", Chunks: someChunks()})

	assert.Error(t, err)
}

func TestExtractiveStrategy_AlwaysAvailableNeverFails(t *testing.T) {
	strategy := NewExtractiveStrategy()

	assert.True(t, strategy.Available(context.Background()))

	text, err := strategy.Answer(context.Background(), AnswerRequest{
		Question: "when did the canal open",
		Chunks:   someChunks(),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.Contains(t, text, "1914")
}
