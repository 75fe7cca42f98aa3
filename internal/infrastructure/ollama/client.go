package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/yourusername/car-advisor-bot/internal/domain/constants"
	"github.com/yourusername/car-advisor-bot/internal/domain/repository"
	"go.uber.org/zap"
)

// ErrNoChoices model hech qanday variant qaytarmadi
var ErrNoChoices = errors.New("no choices returned")

// completionService Chat Completions API ning kerakli qismi (testlarda almashtiriladi)
type completionService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Client OpenAI-compatible endpoint (Ollama /v1, OpenAI va boshqalar) orqali AI backend
type Client struct {
	chat   completionService
	model  string
	system string
	log    *zap.Logger
}

var _ repository.AIRepository = (*Client)(nil)

// Option Client sozlamasi
type Option func(*Client)

// WithSystemPrompt tizim ko'rsatmasini almashtirish
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) { c.system = prompt }
}

// NewClient yangi client; baseURL masalan http://localhost:11434/v1
func NewClient(baseURL, apiKey, model string, log *zap.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("ollama base url is empty")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("ollama model is empty")
	}
	if apiKey == "" {
		// Ollama kalitni tekshirmaydi, lekin SDK bo'sh bo'lmagan qiymat kutadi
		apiKey = "ollama"
	}
	cli := openai.NewClient(option.WithBaseURL(baseURL), option.WithAPIKey(apiKey))
	return newClient(&cli.Chat.Completions, model, log, opts...), nil
}

func newClient(chat completionService, model string, log *zap.Logger, opts ...Option) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		chat:   chat,
		model:  model,
		system: defaultSystemPrompt,
		log:    log.With(zap.String("ai_provider", "ollama"), zap.String("model", model)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

const defaultSystemPrompt = "Ты консультант автосалона. Отвечай по-русски, коротко и только по моделям из переданного списка."

// Ask promptni yuborib javob matnini qaytaradi
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if c.system != "" {
		messages = append(messages, openai.SystemMessage(c.system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(constants.AITemperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.log.Debug("completion received",
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens))
	return text, nil
}
