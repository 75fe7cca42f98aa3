package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/car-advisor-bot/internal/usecase"
	"go.uber.org/zap"
)

const (
	textSlowDown = "⏳ Слишком много сообщений. Подожди секунду и попробуй снова."
	textBusy     = "⚠️ Сервер перегружен, попробуй ещё раз чуть позже."
)

// Start botni ishga tushirish (ctx bekor qilinguncha update larni o'qiydi)
func (h *BotHandler) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	h.log.Info("bot started", zap.String("username", h.username))

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			h.log.Info("bot stopping")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(update)
		}
	}
}

// Shutdown worker pool ni to'xtatish
func (h *BotHandler) Shutdown(ctx context.Context) error {
	return h.pool.Shutdown(ctx)
}

func (h *BotHandler) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(update.Message)
	}
}

// handleMessage matn va /start komandasi
func (h *BotHandler) handleMessage(message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}
	chatID := message.Chat.ID
	userID := chatID
	if message.From != nil {
		userID = message.From.ID
	}

	ev := usecase.Event{ChatID: chatID, Text: message.Text, MessageID: message.MessageID}
	run := func(ctx context.Context) { h.engine.HandleText(ctx, ev, h) }

	switch {
	case message.IsCommand() && message.Command() == "start":
		run = func(ctx context.Context) { h.engine.Start(ctx, ev, h) }
	case strings.TrimSpace(message.Text) == "":
		// stiker, rasm va h.k. qo'llab-quvvatlanmaydi
		return
	}

	if err := h.pool.Submit(Job{ChatID: chatID, UserID: userID, Run: run}); err != nil {
		h.rejected(chatID, "", err)
	}
}

func (h *BotHandler) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		h.answerCallback(cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID
	userID := chatID
	if cb.From != nil {
		userID = cb.From.ID
	}

	ev := usecase.Event{
		ChatID:     chatID,
		Token:      cb.Data,
		MessageID:  cb.Message.MessageID,
		CallbackID: cb.ID,
	}
	out := &callbackResponder{BotHandler: h, callbackID: cb.ID}
	run := func(ctx context.Context) {
		defer out.finish()
		h.engine.HandleCallback(ctx, ev, out)
	}

	if err := h.pool.Submit(Job{ChatID: chatID, UserID: userID, Run: run}); err != nil {
		h.rejected(chatID, cb.ID, err)
	}
}

// rejected navbatga qo'yilmagan hodisa uchun foydalanuvchiga xabar
func (h *BotHandler) rejected(chatID int64, callbackID string, err error) {
	text := textBusy
	if errors.Is(err, ErrRateLimited) {
		text = textSlowDown
	}
	h.log.Warn("update rejected", zap.Int64("chat_id", chatID), zap.Error(err))
	if errors.Is(err, ErrPoolClosed) {
		return
	}
	if callbackID != "" {
		h.answerCallback(callbackID, text)
		return
	}
	if _, sendErr := h.sendText(chatID, text, false, nil); sendErr != nil {
		h.log.Debug("reject notice failed", zap.Int64("chat_id", chatID), zap.Error(sendErr))
	}
}
