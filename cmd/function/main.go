package main

import (
	"context"

	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/bot"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/charts"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/config"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/logger"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/rates"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/repository"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/service"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/session"
	"github.com/KonovalovDM/TG06-ChatbotDevelopment/internal/texts"
)

// Request — структура входящего запроса от API Gateway.
type Request struct {
	Body string `json:"body"`
}

// Response — структура ответа для API Gateway.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Handler обрабатывает одно webhook-обновление. Сессии между вызовами
// функции не живут, поэтому TTL здесь не нужен, а многошаговый диалог
// не продвинется дальше первого ответа: для него нужен постоянный
// процесс cmd/bot.
func Handler(ctx context.Context, request Request) (*Response, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return errorResponse(err)
	}

	logger.Init(cfg.LogLevel)

	messages, err := texts.Load(cfg.MessagesPath)
	if err != nil {
		return errorResponse(err)
	}

	repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey)
	if err != nil {
		return errorResponse(err)
	}

	sessions := session.NewStore(0, logger.Component("session"))
	defer sessions.Close()

	deps := bot.Deps{
		Service:  service.NewFinanceTracker(repo),
		Sessions: sessions,
		Texts:    messages,
		Rates:    rates.NewClient(cfg.ExchangeAPIURL, cfg.ExchangeAPIKey),
		Charts:   charts.NewChartGenerator(),
		Logger:   logger.Component("bot"),
	}

	b, err := bot.NewBot(cfg.TelegramToken, deps)
	if err != nil {
		return errorResponse(err)
	}

	if err := b.HandleWebhook([]byte(request.Body)); err != nil {
		return errorResponse(err)
	}

	return &Response{
		StatusCode: 200,
		Body:       "",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func errorResponse(err error) (*Response, error) {
	return &Response{
		StatusCode: 500,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// Точка входа для локального тестирования
}
