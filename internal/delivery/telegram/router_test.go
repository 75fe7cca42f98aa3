package telegram

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/car-advisor-bot/internal/usecase"
)

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		From:      &tgbotapi.User{ID: chatID},
		Text:      text,
	}
}

func nextCall(t *testing.T, e *fakeEngine) engineCall {
	t.Helper()
	select {
	case c := <-e.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("engine was not called")
		return engineCall{}
	}
}

func TestHandleUpdateRoutesStartCommand(t *testing.T) {
	eng := newFakeEngine()
	h := newTestHandler(newFakeBot(), eng, "")
	defer h.Shutdown(context.Background())

	msg := textMessage(7, "/start")
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}
	h.handleUpdate(tgbotapi.Update{Message: msg})

	c := nextCall(t, eng)
	assert.Equal(t, "start", c.kind)
	assert.Equal(t, int64(7), c.ev.ChatID)
}

func TestHandleUpdateRoutesText(t *testing.T) {
	eng := newFakeEngine(usecase.Reply{Kind: usecase.ReplyText, Text: "ok"})
	bot := newFakeBot()
	h := newTestHandler(bot, eng, "")

	h.handleUpdate(tgbotapi.Update{Message: textMessage(7, "Toyota")})

	c := nextCall(t, eng)
	assert.Equal(t, "text", c.kind)
	assert.Equal(t, "Toyota", c.ev.Text)

	require.NoError(t, h.Shutdown(context.Background()))
	require.Len(t, bot.messages(), 1)
}

func TestHandleUpdateIgnoresEmptyText(t *testing.T) {
	eng := newFakeEngine()
	h := newTestHandler(newFakeBot(), eng, "")

	h.handleUpdate(tgbotapi.Update{Message: textMessage(7, "  ")})
	require.NoError(t, h.Shutdown(context.Background()))

	assert.Empty(t, eng.calls)
}

func TestHandleUpdateCallbackIsAnswered(t *testing.T) {
	eng := newFakeEngine(usecase.Reply{Kind: usecase.ReplyText, Text: "Выбери раздел:", EditMessageID: 42})
	bot := newFakeBot()
	h := newTestHandler(bot, eng, "")

	h.handleUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-9",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{MessageID: 42, Chat: &tgbotapi.Chat{ID: 7}},
		Data:    usecase.TokenMainMenu,
	}})

	c := nextCall(t, eng)
	assert.Equal(t, "callback", c.kind)
	assert.Equal(t, usecase.TokenMainMenu, c.ev.Token)
	assert.Equal(t, 42, c.ev.MessageID)
	assert.Equal(t, "cb-9", c.ev.CallbackID)

	require.NoError(t, h.Shutdown(context.Background()))
	cbs := bot.callbacks()
	require.Len(t, cbs, 1)
	assert.Equal(t, "cb-9", cbs[0].CallbackQueryID)
	assert.Len(t, bot.edits(), 1)
}

func TestHandleUpdateRateLimitedUserIsWarned(t *testing.T) {
	eng := newFakeEngine()
	bot := newFakeBot()
	h := newBotHandler(bot, eng, Options{Workers: 1, RatePerSecond: 0.001, RateBurst: 1}, nil)

	h.handleUpdate(tgbotapi.Update{Message: textMessage(7, "один")})
	h.handleUpdate(tgbotapi.Update{Message: textMessage(7, "два")})
	require.NoError(t, h.Shutdown(context.Background()))

	msgs := bot.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, textSlowDown, msgs[0].Text)
	assert.Len(t, eng.calls, 1)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	bot := newFakeBot()
	h := newTestHandler(bot, newFakeEngine(), "")
	defer h.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return")
	}
	bot.mu.Lock()
	defer bot.mu.Unlock()
	assert.True(t, bot.stopped)
}
