package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/car-advisor-bot/internal/usecase"
)

// botAPI tgbotapi.BotAPI ning biz ishlatadigan qismi (testlarda fake bilan almashtiriladi)
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Engine suhbat mexanizmi (usecase.ConversationUseCase) kerakli qismi
type Engine interface {
	Start(ctx context.Context, ev usecase.Event, out usecase.Responder)
	HandleText(ctx context.Context, ev usecase.Event, out usecase.Responder)
	HandleCallback(ctx context.Context, ev usecase.Event, out usecase.Responder)
}

type waitingMessage struct {
	ChatID    int64
	MessageID int
}

// Options transport sozlamalari
type Options struct {
	MediaDir      string
	Workers       int
	QueueSize     int
	RatePerSecond float64
	RateBurst     int
}
