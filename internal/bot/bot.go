package bot

import (
	"context"
	"encoding/json"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/charts"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/service"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/session"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/texts"
)

// Deps — зависимости, необходимые боту помимо транспорта.
type Deps struct {
	Service  *service.FinanceTracker
	Sessions *session.Store
	Texts    *texts.Store
	Rates    RatesProvider
	Charts   *charts.ChartGenerator
	Logger   *slog.Logger
}

// Bot связывает Telegram-транспорт с обработчиком сообщений.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	log     *slog.Logger
}

func NewBot(token string, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	handler := NewHandler(api, deps.Service, deps.Sessions, deps.Texts, deps.Rates, deps.Charts, log)

	return &Bot{
		api:     api,
		handler: handler,
		log:     log,
	}, nil
}

// Start запускает бота в режиме long polling. Обновления обрабатываются
// последовательно: Telegram отдает сообщения пользователя по порядку, и
// этот порядок сохраняется.
func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.log.Info("bot started", slog.String("username", b.api.Self.UserName))

	for update := range updates {
		b.handleUpdate(update)
	}

	return nil
}

// HandleWebhook — точка входа для обработки входящих webhook-обновлений.
func (b *Bot) HandleWebhook(body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return err
	}

	b.handleUpdate(update)
	return nil
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	b.handler.HandleMessage(context.Background(), update.Message)
}
