package telegram

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/car-advisor-bot/internal/domain/entity"
	"go.uber.org/zap"
)

const (
	messageLimit = 4096
	captionLimit = 1024
)

var errEmptyText = errors.New("empty message text")

// sendText matnni yuborish; uzun matn bo'laklarga bo'linadi, tugmalar oxirgi bo'lakka qo'shiladi.
// Markdown xatosi bo'lsa oddiy matn sifatida qayta yuboriladi.
func (h *BotHandler) sendText(chatID int64, text string, markdown bool, markup *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	if strings.TrimSpace(text) == "" {
		return tgbotapi.Message{}, errEmptyText
	}

	chunks := splitIntoChunks(text, messageLimit)
	var last tgbotapi.Message
	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if markdown {
			msg.ParseMode = tgbotapi.ModeMarkdown
		}
		if markup != nil && i == len(chunks)-1 {
			msg.ReplyMarkup = *markup
		}
		sent, err := h.bot.Send(msg)
		if err != nil && markdown {
			h.log.Debug("markdown send failed, retrying as plain text", zap.Int64("chat_id", chatID), zap.Error(err))
			msg.ParseMode = ""
			sent, err = h.bot.Send(msg)
		}
		if err != nil {
			return last, err
		}
		last = sent
	}
	return last, nil
}

// editText mavjud xabarni tahrirlash
func (h *BotHandler) editText(chatID int64, messageID int, text string, markdown bool, markup *tgbotapi.InlineKeyboardMarkup) error {
	if strings.TrimSpace(text) == "" {
		return errEmptyText
	}
	if len(splitIntoChunks(text, messageLimit)) > 1 {
		return errors.New("text too long to edit")
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if markdown {
		edit.ParseMode = tgbotapi.ModeMarkdown
	}
	if markup != nil {
		edit.ReplyMarkup = markup
	}
	_, err := h.bot.Send(edit)
	return err
}

// editOrSend xabarni tahrirlashga harakat qiladi, bo'lmasa yangisini yuboradi
func (h *BotHandler) editOrSend(chatID int64, messageID int, text string, markdown bool, markup *tgbotapi.InlineKeyboardMarkup) {
	if messageID > 0 {
		err := h.editText(chatID, messageID, text, markdown, markup)
		if err == nil {
			return
		}
		h.log.Debug("edit failed, sending new message",
			zap.Int64("chat_id", chatID), zap.Int("message_id", messageID), zap.Error(err))
	}
	if _, err := h.sendText(chatID, text, markdown, markup); err != nil {
		h.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendCard mashina kartasi: MEDIA_DIR dagi rasm + caption, rasm bo'lmasa matn
func (h *BotHandler) sendCard(chatID int64, car entity.Car, caption string) {
	if path, ok := h.photoPath(car); ok && utf16Len(caption) <= captionLimit {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeMarkdown
		_, err := h.bot.Send(photo)
		if err == nil {
			return
		}
		h.log.Warn("photo send failed, falling back to text",
			zap.Int64("chat_id", chatID), zap.String("image", car.Image), zap.Error(err))
	}
	if _, err := h.sendText(chatID, caption, true, nil); err != nil {
		h.log.Warn("card send failed", zap.Int64("chat_id", chatID), zap.String("car", car.FullName()), zap.Error(err))
	}
}

func (h *BotHandler) photoPath(car entity.Car) (string, bool) {
	name := strings.TrimSpace(car.Image)
	if name == "" || h.mediaDir == "" {
		return "", false
	}
	path := filepath.Join(h.mediaDir, filepath.Base(name))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// splitIntoChunks matnni Telegram limitiga mos bo'laklarga bo'ladi (UTF-16 birliklarda)
func splitIntoChunks(s string, limit int) []string {
	if limit <= 0 {
		return []string{s}
	}
	var chunks []string
	var current strings.Builder
	size := 0

	for _, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if size+n > limit {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
		current.WriteRune(r)
		size += n
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
