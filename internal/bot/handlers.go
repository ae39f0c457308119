package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/charts"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/dialog"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/model"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/rates"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/service"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/session"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/texts"
)

// Sender отправляет исходящие сообщения. *tgbotapi.BotAPI реализует его;
// тесты подставляют фальшивку и проверяют диалог без живого Telegram.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// RatesProvider — внешний сервис курсов валют.
type RatesProvider interface {
	FetchRates(ctx context.Context, base string) (map[string]float64, error)
}

// Handler маршрутизирует входящие сообщения и исполняет обработчики.
type Handler struct {
	sender   Sender
	svc      *service.FinanceTracker
	sessions *session.Store
	texts    *texts.Store
	rates    RatesProvider
	charts   *charts.ChartGenerator
	log      *slog.Logger
}

// NewHandler собирает обработчик из зависимостей.
func NewHandler(sender Sender, svc *service.FinanceTracker, sessions *session.Store, store *texts.Store, rates RatesProvider, chartGen *charts.ChartGenerator, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		sender:   sender,
		svc:      svc,
		sessions: sessions,
		texts:    store,
		rates:    rates,
		charts:   chartGen,
		log:      log,
	}
}

// HandleMessage обрабатывает одно входящее сообщение от начала до конца.
func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	inDialog := h.sessions.Get(userID).Active()

	switch classify(msg.Command(), msg.Text, inDialog) {
	case ActionCommand:
		h.handleCommand(ctx, msg)
	case ActionMenu:
		h.handleMenu(ctx, msg)
	case ActionDialog:
		h.handleDialog(ctx, msg)
	default:
		h.replyWithKeyboard(msg.Chat.ID, h.texts.Resolve("unknown_message"))
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case cmdStart:
		h.replyWithKeyboard(msg.Chat.ID, h.texts.Resolve("start_message"))
	case cmdHelp:
		h.reply(msg.Chat.ID, h.texts.Resolve("help_message"))
	case cmdSeeDB:
		h.handleSeeDB(ctx, msg)
	case cmdChart:
		h.handleChart(ctx, msg)
	}
}

func (h *Handler) handleMenu(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Text {
	case MenuRegister:
		h.handleRegistration(ctx, msg)
	case MenuRates:
		h.handleRates(ctx, msg)
	case MenuTips:
		h.reply(msg.Chat.ID, h.texts.RandomTip())
	case MenuFinances:
		h.startDialog(msg)
	}
}

func (h *Handler) handleRegistration(ctx context.Context, msg *tgbotapi.Message) {
	name := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)

	created, err := h.svc.RegisterUser(ctx, msg.From.ID, name)
	if err != nil {
		h.log.Error("registration failed",
			slog.Int64("user_id", msg.From.ID),
			slog.String("err", err.Error()),
		)
		h.reply(msg.Chat.ID, h.texts.Resolve("save_error"))
		return
	}
	if !created {
		h.reply(msg.Chat.ID, h.texts.Resolve("already_registered"))
		return
	}
	h.reply(msg.Chat.ID, h.texts.Resolve("registration_success"))
}

// handleRates показывает курсы валют. Отказ внешнего сервиса не роняет
// ничего, кроме этого ответа: пользователь получает запасное сообщение.
func (h *Handler) handleRates(ctx context.Context, msg *tgbotapi.Message) {
	table, err := h.rates.FetchRates(ctx, "USD")
	if err == nil {
		var report *rates.Report
		report, err = rates.BuildReport(table)
		if err == nil {
			h.reply(msg.Chat.ID, h.texts.Resolve("currency_rates",
				report.USDRUB, report.EURRUB, report.CNYRUB, report.INRRUB))
			return
		}
	}

	h.log.Warn("rates lookup failed",
		slog.Int64("user_id", msg.From.ID),
		slog.String("err", err.Error()),
	)
	h.reply(msg.Chat.ID, h.texts.Resolve("currency_error"))
}

// startDialog открывает диалог записи расходов.
func (h *Handler) startDialog(msg *tgbotapi.Message) {
	var outcome dialog.Outcome
	var sessionID string
	h.sessions.Do(msg.From.ID, func(sess *session.Session) {
		outcome = dialog.Start(sess)
		sess.ID = uuid.NewString()
		sessionID = sess.ID
	})

	h.log.Info("dialog started",
		slog.Int64("user_id", msg.From.ID),
		slog.String("session_id", sessionID),
	)
	h.reply(msg.Chat.ID, h.resolveReply(outcome.Reply))
}

// handleDialog продвигает активный диалог на один шаг. Завершенный диалог
// коммитится под замком сессии: при ошибке записи состояние и накопленные
// поля сохраняются, чтобы пользователь мог повторить отправку.
func (h *Handler) handleDialog(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	var response string
	var withKeyboard bool

	h.sessions.Do(userID, func(sess *session.Session) {
		if !sess.Active() {
			// Диалог успел закрыться (например, по таймауту)
			response = h.texts.Resolve("unknown_message")
			withKeyboard = true
			return
		}

		outcome := dialog.Advance(sess, msg.Text)
		if !outcome.Commit {
			response = h.resolveReply(outcome.Reply)
			return
		}

		err := h.svc.SaveExpenses(ctx, userID, outcome.Fields)
		switch {
		case err == nil:
			h.log.Info("expenses saved",
				slog.Int64("user_id", userID),
				slog.String("session_id", sess.ID),
			)
			sess.Reset()
			response = h.texts.Resolve("expenses_saved")
			withKeyboard = true
		case errors.Is(err, service.ErrNotRegistered):
			response = h.texts.Resolve("not_registered")
		default:
			h.log.Error("commit failed",
				slog.Int64("user_id", userID),
				slog.String("session_id", sess.ID),
				slog.String("err", err.Error()),
			)
			response = h.texts.Resolve("save_error")
		}
	})

	if withKeyboard {
		h.replyWithKeyboard(msg.Chat.ID, response)
		return
	}
	h.reply(msg.Chat.ID, response)
}

func (h *Handler) handleSeeDB(ctx context.Context, msg *tgbotapi.Message) {
	records, err := h.svc.ListRecords(ctx)
	if err != nil {
		h.log.Error("db listing failed", slog.String("err", err.Error()))
		h.reply(msg.Chat.ID, h.texts.Resolve("db_error"))
		return
	}
	if len(records) == 0 {
		h.reply(msg.Chat.ID, h.texts.Resolve("db_empty"))
		return
	}

	entries := make([]string, 0, len(records))
	for i := range records {
		entries = append(entries, formatRecord(&records[i]))
	}
	h.reply(msg.Chat.ID, h.texts.Resolve("db_data", strings.Join(entries, "\n\n")))
}

func (h *Handler) handleChart(ctx context.Context, msg *tgbotapi.Message) {
	record, err := h.svc.Record(ctx, msg.From.ID)
	if err != nil {
		h.log.Error("record lookup failed",
			slog.Int64("user_id", msg.From.ID),
			slog.String("err", err.Error()),
		)
		h.reply(msg.Chat.ID, h.texts.Resolve("chart_error"))
		return
	}

	png, err := h.charts.GenerateExpensesChart(record)
	if err != nil {
		h.log.Error("chart rendering failed",
			slog.Int64("user_id", msg.From.ID),
			slog.String("err", err.Error()),
		)
		h.reply(msg.Chat.ID, h.texts.Resolve("chart_error"))
		return
	}
	if png == nil {
		h.reply(msg.Chat.ID, h.texts.Resolve("chart_empty"))
		return
	}

	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  "expenses.png",
		Bytes: png,
	})
	photo.Caption = h.texts.Resolve("chart_caption")
	if _, err := h.sender.Send(photo); err != nil {
		h.log.Error("failed to send chart",
			slog.Int64("user_id", msg.From.ID),
			slog.String("err", err.Error()),
		)
	}
}

func formatRecord(record *model.UserRecord) string {
	return fmt.Sprintf(
		"Имя: %s\n"+
			"Категория 1: %s, Расходы: %.2f\n"+
			"Категория 2: %s, Расходы: %.2f\n"+
			"Категория 3: %s, Расходы: %.2f",
		record.Name,
		record.Category1, record.Expenses1,
		record.Category2, record.Expenses2,
		record.Category3, record.Expenses3,
	)
}

func (h *Handler) resolveReply(reply dialog.Reply) string {
	return h.texts.Resolve(reply.Key, reply.Args...)
}

func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	h.send(msg)
}

func (h *Handler) replyWithKeyboard(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainKeyboard()
	h.send(msg)
}

func (h *Handler) send(msg tgbotapi.Chattable) {
	if _, err := h.sender.Send(msg); err != nil {
		h.log.Error("failed to send message", slog.String("err", err.Error()))
	}
}
