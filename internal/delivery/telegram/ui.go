package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/car-advisor-bot/internal/usecase"
)

// callbackDataLimit Telegram callback_data chegarasi (bayt)
const callbackDataLimit = 64

// inlineKeyboard usecase tugmalarini inline klaviaturaga aylantirish
func inlineKeyboard(options [][]usecase.Option) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, opts := range options {
		var row []tgbotapi.InlineKeyboardButton
		for _, o := range opts {
			if o.Label == "" || o.Token == "" || len(o.Token) > callbackDataLimit {
				continue
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(o.Label, o.Token))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}
