package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/car-advisor-bot/internal/usecase"
	"go.uber.org/zap"
)

// fakeBot Telegram API o'rniga: yuborilgan hamma narsani yozib boradi
type fakeBot struct {
	mu       sync.Mutex
	nextID   int
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	failSend func(c tgbotapi.Chattable) error
	updates  chan tgbotapi.Update
	stopped  bool
}

func newFakeBot() *fakeBot {
	return &fakeBot{nextID: 100, updates: make(chan tgbotapi.Update, 16)}
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		if err := f.failSend(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeBot) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeBot) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeBot) edits() []tgbotapi.EditMessageTextConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.EditMessageTextConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeBot) photos() []tgbotapi.PhotoConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.PhotoConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeBot) deletes() []tgbotapi.DeleteMessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.DeleteMessageConfig
	for _, c := range f.requests {
		if m, ok := c.(tgbotapi.DeleteMessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeBot) callbacks() []tgbotapi.CallbackConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.CallbackConfig
	for _, c := range f.requests {
		if m, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

type engineCall struct {
	kind string
	ev   usecase.Event
}

// fakeEngine har bir chaqiruvni kanalga yozadi va berilgan javoblarni qaytaradi
type fakeEngine struct {
	calls   chan engineCall
	replies []usecase.Reply
}

func newFakeEngine(replies ...usecase.Reply) *fakeEngine {
	return &fakeEngine{calls: make(chan engineCall, 16), replies: replies}
}

func (e *fakeEngine) Start(ctx context.Context, ev usecase.Event, out usecase.Responder) {
	e.calls <- engineCall{"start", ev}
	out.Respond(ctx, ev.ChatID, e.replies...)
}

func (e *fakeEngine) HandleText(ctx context.Context, ev usecase.Event, out usecase.Responder) {
	e.calls <- engineCall{"text", ev}
	out.Respond(ctx, ev.ChatID, e.replies...)
}

func (e *fakeEngine) HandleCallback(ctx context.Context, ev usecase.Event, out usecase.Responder) {
	e.calls <- engineCall{"callback", ev}
	out.Respond(ctx, ev.ChatID, e.replies...)
}

func newTestHandler(bot *fakeBot, eng Engine, mediaDir string) *BotHandler {
	return newBotHandler(bot, eng, Options{MediaDir: mediaDir, Workers: 4}, zap.NewNop())
}
