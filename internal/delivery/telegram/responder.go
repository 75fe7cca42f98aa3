package telegram

import (
	"context"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/car-advisor-bot/internal/usecase"
	"go.uber.org/zap"
)

// Respond usecase javoblarini Telegram xabarlariga aylantiradi (tartib saqlanadi).
// Xatolar loglanadi, suhbat davom etadi.
func (h *BotHandler) Respond(_ context.Context, chatID int64, replies ...usecase.Reply) {
	for _, r := range replies {
		h.deliver(chatID, r)
	}
}

func (h *BotHandler) deliver(chatID int64, r usecase.Reply) {
	switch r.Kind {
	case usecase.ReplyText:
		markup := inlineKeyboard(r.Options)
		if r.EditMessageID > 0 {
			h.editOrSend(chatID, r.EditMessageID, r.Text, r.Markdown, markup)
			return
		}
		sent, err := h.sendText(chatID, r.Text, r.Markdown, markup)
		if err != nil {
			h.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
		if r.Ephemeral {
			h.trackHelpMessage(chatID, sent.MessageID)
		}

	case usecase.ReplyCard:
		if r.Car == nil {
			h.editOrSend(chatID, 0, r.Text, r.Markdown, nil)
			return
		}
		h.sendCard(chatID, *r.Car, r.Text)

	case usecase.ReplyLoading:
		h.clearWaitingMessage(chatID)
		sent, err := h.sendText(chatID, r.Text, false, nil)
		if err != nil {
			h.log.Warn("loading message failed", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
		h.setWaitingMessage(chatID, sent.MessageID)

	case usecase.ReplyFinal:
		markup := inlineKeyboard(r.Options)
		msg, ok := h.takeWaitingMessage(chatID)
		if !ok {
			h.editOrSend(chatID, 0, r.Text, r.Markdown, markup)
			return
		}
		if err := h.editText(chatID, msg.MessageID, r.Text, r.Markdown, markup); err != nil {
			h.log.Debug("loading edit failed, replacing", zap.Int64("chat_id", chatID), zap.Error(err))
			h.deleteMessage(msg)
			h.editOrSend(chatID, 0, r.Text, r.Markdown, markup)
		}

	case usecase.ReplyDropLoading:
		h.clearWaitingMessage(chatID)

	case usecase.ReplyClearHelp:
		h.clearHelpMessages(chatID)

	case usecase.ReplyNotice:
		if r.CallbackID == "" {
			h.editOrSend(chatID, 0, r.Text, false, nil)
			return
		}
		h.answerCallback(r.CallbackID, r.Text)

	default:
		h.log.Warn("unknown reply kind", zap.Int64("chat_id", chatID), zap.Int("kind", int(r.Kind)))
	}
}

func (h *BotHandler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.log.Debug("callback answer failed", zap.String("callback_id", id), zap.Error(err))
	}
}

// callbackResponder callback javob berilganini kuzatadi: notice bo'lmasa bo'sh javob yuboriladi
type callbackResponder struct {
	*BotHandler
	callbackID string
	answered   atomic.Bool
}

func (c *callbackResponder) Respond(ctx context.Context, chatID int64, replies ...usecase.Reply) {
	for _, r := range replies {
		if r.Kind == usecase.ReplyNotice && r.CallbackID == c.callbackID {
			c.answered.Store(true)
		}
	}
	c.BotHandler.Respond(ctx, chatID, replies...)
}

// finish spinner ni to'xtatish (agar hali javob berilmagan bo'lsa)
func (c *callbackResponder) finish() {
	if c.answered.CompareAndSwap(false, true) {
		c.answerCallback(c.callbackID, "")
	}
}
