package main

import (
	"log"

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

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger.Init(cfg.LogLevel)

	messages, err := texts.Load(cfg.MessagesPath)
	if err != nil {
		log.Fatal(err)
	}

	repo, err := repository.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey)
	if err != nil {
		log.Fatal(err)
	}

	sessions := session.NewStore(cfg.SessionTTL, logger.Component("session"))
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
		log.Fatal(err)
	}

	if err := b.Start(); err != nil {
		log.Fatal(err)
	}
}
