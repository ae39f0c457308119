package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Кнопки главного меню — ровно те подписи, которые classify сравнивает
// с текстом входящего сообщения.
const (
	MenuRegister = "Регистрация в телеграм боте"
	MenuRates    = "Курс валют"
	MenuTips     = "Советы по экономии"
	MenuFinances = "Личные финансы"
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuRegister),
			tgbotapi.NewKeyboardButton(MenuRates),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(MenuTips),
			tgbotapi.NewKeyboardButton(MenuFinances),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}
