package ollama

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCompletions implements completionService for testing.
type mockCompletions struct {
	resp   *openai.ChatCompletion
	err    error
	params openai.ChatCompletionNewParams
}

func (m *mockCompletions) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.params = body
	return m.resp, m.err
}

func TestAskSuccess(t *testing.T) {
	m := &mockCompletions{resp: &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "  Рекомендую: RAV4\n"}}},
	}}
	c := newClient(m, "llama3", nil)

	out, err := c.Ask(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Рекомендую: RAV4", out)
	assert.Equal(t, openai.ChatModel("llama3"), m.params.Model)
	assert.Len(t, m.params.Messages, 2)
}

func TestAskWithoutSystemPrompt(t *testing.T) {
	m := &mockCompletions{resp: &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "ok"}}},
	}}
	c := newClient(m, "llama3", nil, WithSystemPrompt(""))

	_, err := c.Ask(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Len(t, m.params.Messages, 1)
}

func TestAskServiceError(t *testing.T) {
	c := newClient(&mockCompletions{err: errors.New("connection refused")}, "llama3", nil)
	_, err := c.Ask(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAskNoChoices(t *testing.T) {
	c := newClient(&mockCompletions{resp: &openai.ChatCompletion{}}, "llama3", nil)
	_, err := c.Ask(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("", "", "llama3", nil)
	assert.Error(t, err)
	_, err = NewClient("http://localhost:11434/v1", "", "", nil)
	assert.Error(t, err)

	c, err := NewClient("http://localhost:11434/v1", "", "llama3", nil)
	require.NoError(t, err)
	assert.NotNil(t, c)
}
