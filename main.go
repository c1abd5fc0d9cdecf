package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"commandant/internal/config"
	"commandant/internal/handlers"
	"commandant/internal/health"
	"commandant/internal/ledger"
	"commandant/internal/platform"
	"commandant/internal/scheduler"
	"commandant/internal/stats"
	"commandant/internal/storage"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(lvl)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("timezone")
	}

	docs, err := newDocStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("document store")
	}

	clock := clockwork.NewRealClock()
	store := ledger.New(docs, ledger.Options{
		LedgerKey:    cfg.LedgerKey,
		MetaKey:      cfg.MetaKey,
		Location:     loc,
		CutoverHour:  cfg.DayCutoverHour,
		StoreTimeout: cfg.StoreTimeout,
		Clock:        clock,
		Log:          log.With().Str("component", "ledger").Logger(),
	})
	if err := store.Bootstrap(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("ledger bootstrap")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram")
	}
	log.Info().Str("account", bot.Self.UserName).Msg("logged on")

	tg := platform.NewTelegram(bot, map[string]int64{
		cfg.LeaderboardChannel: cfg.LeaderboardChatID,
		cfg.GoalsChannel:       cfg.GoalsChatID,
	}, log.With().Str("component", "telegram").Logger())

	bands := stats.Bands{OnTrack: cfg.OnTrackRatio, AtRisk: cfg.AtRiskRatio}
	runner := scheduler.NewRunner(store, tg, clock, scheduler.Config{
		Location:           loc,
		CheckInterval:      cfg.CheckInterval,
		NagHour:            cfg.NagHour,
		MaxWeeklyMisses:    cfg.MaxWeeklyMisses,
		Bands:              bands,
		LeaderboardChannel: cfg.LeaderboardChannel,
		GoalsChannel:       cfg.GoalsChannel,
	}, log.With().Str("component", "scheduler").Logger())

	// Catch up on anything missed while the bot was down, then hand the
	// cadence to the scheduler.
	if err := runner.CheckTasks(context.Background()); err != nil {
		log.Error().Err(err).Msg("startup task check")
	}
	sched, err := scheduler.Start(runner, clock, log.With().Str("component", "scheduler").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler")
	}

	h := &handlers.Handler{
		Store:  store,
		Runner: runner,
		Out:    tg,
		Clock:  clock,
		Cfg: handlers.Config{
			EvidenceChannel: cfg.EvidenceChannel,
			MaxWeeklyMisses: cfg.MaxWeeklyMisses,
			Bands:           bands,
			Location:        loc,
		},
		Log: log.With().Str("component", "handlers").Logger(),
	}

	hs := health.New(cfg.Port, log.With().Str("component", "health").Logger())
	hs.Start()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := bot.GetUpdatesChan(updateConfig)

	go func() {
		for upd := range updates {
			if upd.Message == nil || upd.Message.Text == "" {
				continue
			}
			h.Handle(context.Background(), tg.EventFrom(upd.Message))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutdown signal received")

	bot.StopReceivingUpdates()
	if err := sched.Shutdown(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("health shutdown")
	}
	log.Info().Msg("gracefully stopped")
}

func newDocStore(cfg *config.Config) (storage.Client, error) {
	if cfg.StoreBackend == "github" {
		return storage.NewGitHub(cfg.GitHubToken, cfg.GitHubOwner, cfg.GitHubRepo, cfg.StoreTimeout), nil
	}
	return storage.NewSQLite(cfg.SQLitePath)
}
