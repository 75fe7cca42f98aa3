package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/car-advisor-bot/internal/usecase"
)

func TestInlineKeyboardMainMenu(t *testing.T) {
	menu := usecase.MainMenu()
	kb := inlineKeyboard(menu)
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, len(menu))

	first := kb.InlineKeyboard[0][0]
	assert.Equal(t, menu[0][0].Label, first.Text)
	require.NotNil(t, first.CallbackData)
	assert.Equal(t, menu[0][0].Token, *first.CallbackData)
}

func TestInlineKeyboardSkipsInvalidButtons(t *testing.T) {
	kb := inlineKeyboard([][]usecase.Option{
		{{Label: "", Token: "x"}, {Label: "ok", Token: "ok"}},
		{{Label: "long", Token: strings.Repeat("a", callbackDataLimit+1)}},
	})
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Len(t, kb.InlineKeyboard[0], 1)
}

func TestInlineKeyboardEmpty(t *testing.T) {
	assert.Nil(t, inlineKeyboard(nil))
	assert.Nil(t, inlineKeyboard([][]usecase.Option{{}}))
}
