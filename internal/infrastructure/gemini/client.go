package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/yourusername/car-advisor-bot/internal/domain/constants"
	"github.com/yourusername/car-advisor-bot/internal/domain/repository"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// blockedAnswer xavfsizlik filtri javobni bloklaganda
const blockedAnswer = "Извини, на этот вопрос ответить не получилось. Попробуй переформулировать."

var errNoCandidates = errors.New("no response candidates")

// contentGenerator *genai.GenerativeModel ning kerakli qismi (testlarda almashtiriladi)
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client Gemini AI backend
type Client struct {
	client     *genai.Client
	model      contentGenerator
	log        *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

var _ repository.AIRepository = (*Client)(nil)

// NewGeminiClient yangi Gemini AI client yaratish
func NewGeminiClient(ctx context.Context, apiKey, modelName string, log *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = constants.GeminiModelName
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(constants.AITemperature)
	model.SetTopK(constants.AITopK)
	model.SetTopP(constants.AITopP)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemInstruction)},
	}

	return newClient(client, model, log), nil
}

func newClient(client *genai.Client, model contentGenerator, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		client:     client,
		model:      model,
		log:        log.With(zap.String("ai_provider", "gemini")),
		maxRetries: constants.MaxRetries,
		retryDelay: constants.RetryDelay,
	}
}

// Ask promptni yuborib javob matnini qaytaradi (retry bilan)
func (g *Client) Ask(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		g.log.Debug("gemini request", zap.Int("attempt", attempt), zap.Int("max_attempts", g.maxRetries))

		text, err := g.generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		g.log.Warn("gemini attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt < g.maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(g.retryDelay):
			}
		}
	}
	return "", fmt.Errorf("gemini: %d urinishdan keyin javob yo'q: %w", g.maxRetries, lastErr)
}

func (g *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errNoCandidates
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		g.log.Warn("gemini response blocked by safety filter")
		return blockedAnswer, nil
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}

// extractText javobdan textni ajratib olish
func extractText(resp *genai.GenerateContentResponse) string {
	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				result.WriteString(string(t))
			}
		}
	}
	return result.String()
}

// Close client ni yopish
func (g *Client) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
