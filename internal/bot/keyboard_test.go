package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainKeyboard(t *testing.T) {
	keyboard := mainKeyboard()

	require.Len(t, keyboard.Keyboard, 2)
	require.Len(t, keyboard.Keyboard[0], 2)
	require.Len(t, keyboard.Keyboard[1], 2)

	assert.Equal(t, MenuRegister, keyboard.Keyboard[0][0].Text)
	assert.Equal(t, MenuRates, keyboard.Keyboard[0][1].Text)
	assert.Equal(t, MenuTips, keyboard.Keyboard[1][0].Text)
	assert.Equal(t, MenuFinances, keyboard.Keyboard[1][1].Text)
	assert.True(t, keyboard.ResizeKeyboard)
}

func TestStartCommandAttachesKeyboard(t *testing.T) {
	f := newFixture(t)

	f.handler.HandleMessage(context.Background(), commandMsg(1, "start"))

	require.NotEmpty(t, f.sender.sent)
	msg, ok := f.sender.sent[len(f.sender.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok, "ожидалось текстовое сообщение, получено %T", f.sender.sent[len(f.sender.sent)-1])

	markup, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok, "ожидалась клавиатура, получено %T", msg.ReplyMarkup)
	assert.Len(t, markup.Keyboard, 2)
}
