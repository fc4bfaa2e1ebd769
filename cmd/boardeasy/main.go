package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"boardeasy/internal/api"
	"boardeasy/internal/bot"
	"boardeasy/internal/config"
	"boardeasy/internal/dashboard"
	"boardeasy/internal/domain"
	"boardeasy/internal/events"
	"boardeasy/internal/flow"
	"boardeasy/internal/google"
	"boardeasy/internal/logging"
	"boardeasy/internal/metrics"
	"boardeasy/internal/models"
	"boardeasy/internal/repository"
	"boardeasy/internal/session"
	"boardeasy/internal/ticket"
	"boardeasy/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, err := session.NewStore(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open session store")
		return err
	}
	defer sessions.Close()

	redisClient, drafts := initDraftStore(ctx, cfg, &logger)

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		metricsServer := metrics.NewServer(cfg.Monitoring.PrometheusPort, &logger)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error().Err(err).Msg("Metrics server error")
			}
		}()
		defer func() {
			_ = metricsServer.Shutdown(context.Background())
		}()
	}

	client := api.New(cfg.Backend, &logger)
	if redisClient != nil {
		client.UseRedisCache(redisClient, time.Duration(cfg.Backend.CacheTTLSec)*time.Second)
	}

	var mirrorWorker *worker.MirrorWorker
	if cfg.Google.Enabled {
		sheetsService, err := initGoogleSheets(ctx, cfg, &logger)
		if err != nil {
			return err
		}
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		mirrorWorker = worker.NewMirrorWorker(sheetsService, redisClient, retryPolicy, logger)
		go mirrorWorker.Start(ctx)
	}

	eventBus := events.NewBus()
	subscribeBookingEvents(ctx, eventBus, mirrorWorker, &logger)

	coordinator := flow.NewCoordinator(drafts, client, eventBus, cfg.Fares.ServiceFee, cfg.Fares.Coupons, &logger)
	loader := dashboard.NewLoader(client, &logger)
	exporter := ticket.NewExporter(cfg.Exports.Path)

	return startBot(ctx, cfg, sessions, drafts, coordinator, client, loader, exporter, eventBus, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "boardeasy-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Failed to create database directory")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Failed to create exports directory")
		return err
	}
	return nil
}

func initDraftStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.DraftRepository) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	ttl := time.Duration(cfg.Bot.DraftTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = models.DefaultDraftTTL * time.Second
	}

	primary := repository.NewRedisDraftRepository(redisClient, ttl)
	fallback := repository.NewMemoryDraftRepository(ttl)
	return redisClient, repository.NewFailoverDraftRepository(primary, fallback, logger)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*google.SheetsService, error) {
	sheetsSvc, err := google.NewSheetsService(cfg.Google.CredentialsFile, cfg.Google.BookingSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil, err
	}

	if err := sheetsSvc.TestConnection(ctx); err != nil {
		logger.Error().Err(err).Msg("Google Sheets connection test failed")
		return nil, err
	}

	logger.Info().Msg("Google Sheets service initialized successfully")
	return sheetsSvc, nil
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	sessions *session.Store,
	drafts domain.DraftRepository,
	coordinator *flow.Coordinator,
	client *api.Client,
	loader *dashboard.Loader,
	exporter *ticket.Exporter,
	eventBus *events.Bus,
	logger *zerolog.Logger,
) error {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	telegramBot, err := bot.NewBot(
		bot.NewBotWrapper(botAPI), cfg, sessions, drafts,
		coordinator, client, loader, exporter, eventBus, logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create bot")
		return err
	}

	logger.Info().Msg("Bot started...")
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}

// subscribeBookingEvents wires booking lifecycle events into the sheets
// mirror: new bookings append a row, status changes rewrite the status cell.
func subscribeBookingEvents(
	ctx context.Context,
	bus *events.Bus,
	mirrorWorker *worker.MirrorWorker,
	logger *zerolog.Logger,
) {
	if bus == nil || mirrorWorker == nil {
		return
	}

	decode := func(ev *events.Event) (events.BookingEventPayload, error) {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return payload, err
		}
		return payload, nil
	}

	createdHandler := func(ev *events.Event) error {
		payload, err := decode(ev)
		if err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}

		booking := &models.Booking{
			ID:            payload.BookingID,
			PNRNumber:     payload.PNR,
			BookingStatus: payload.Status,
			TotalAmount:   payload.TotalAmount,
			SeatNumbers:   payload.Seats,
		}
		if err := mirrorWorker.Enqueue(ctx, booking); err != nil {
			logger.Error().Err(err).Str("pnr", payload.PNR).Msg("event bus: enqueue mirror")
		}
		return nil
	}

	statusHandler := func(ev *events.Event) error {
		payload, err := decode(ev)
		if err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		if payload.PNR == "" || payload.Status == "" {
			logger.Error().Int64("booking_id", payload.BookingID).Msg("event bus: missing pnr or status")
			return nil
		}

		if err := mirrorWorker.EnqueueStatus(ctx, payload.PNR, payload.Status); err != nil {
			logger.Error().Err(err).Str("pnr", payload.PNR).Msg("event bus: enqueue status")
		}
		return nil
	}

	bus.Subscribe(events.EventBookingCreated, createdHandler)
	bus.Subscribe(events.EventBookingConfirmed, statusHandler)
	bus.Subscribe(events.EventBookingCancelled, statusHandler)
}
