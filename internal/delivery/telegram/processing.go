package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Waiting message helpers
func (h *BotHandler) setWaitingMessage(chatID int64, msgID int) {
	h.waitingMu.Lock()
	defer h.waitingMu.Unlock()
	h.waitingMsgs[chatID] = waitingMessage{ChatID: chatID, MessageID: msgID}
}

// takeWaitingMessage loading xabarini olib, ro'yxatdan o'chiradi
func (h *BotHandler) takeWaitingMessage(chatID int64) (waitingMessage, bool) {
	h.waitingMu.Lock()
	defer h.waitingMu.Unlock()
	msg, ok := h.waitingMsgs[chatID]
	if ok {
		delete(h.waitingMsgs, chatID)
	}
	return msg, ok
}

func (h *BotHandler) clearWaitingMessage(chatID int64) {
	if msg, ok := h.takeWaitingMessage(chatID); ok {
		h.deleteMessage(msg)
	}
}

// Yordam javoblari
func (h *BotHandler) trackHelpMessage(chatID int64, msgID int) {
	h.helpMu.Lock()
	defer h.helpMu.Unlock()
	h.helpMsgs[chatID] = append(h.helpMsgs[chatID], waitingMessage{ChatID: chatID, MessageID: msgID})
}

func (h *BotHandler) clearHelpMessages(chatID int64) {
	h.helpMu.Lock()
	ids := h.helpMsgs[chatID]
	delete(h.helpMsgs, chatID)
	h.helpMu.Unlock()

	for _, m := range ids {
		h.deleteMessage(m)
	}
}

func (h *BotHandler) deleteMessage(m waitingMessage) {
	del := tgbotapi.NewDeleteMessage(m.ChatID, m.MessageID)
	if _, err := h.bot.Request(del); err != nil {
		h.log.Warn("message delete failed",
			zap.Int64("chat_id", m.ChatID), zap.Int("message_id", m.MessageID), zap.Error(err))
	}
}
