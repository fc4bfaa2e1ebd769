// Package bot is the Telegram surface of the BoardEasy client. Commands and
// inline keyboards drive the booking wizard, the catalog browsers, and the
// role dashboards; all business truth stays on the remote backend.
package bot

import (
	"context"
	"os"
	"time"

	"boardeasy/internal/api"
	"boardeasy/internal/config"
	"boardeasy/internal/dashboard"
	"boardeasy/internal/domain"
	"boardeasy/internal/events"
	"boardeasy/internal/flow"
	"boardeasy/internal/metrics"
	"boardeasy/internal/session"
	"boardeasy/internal/ticket"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Bot struct {
	tgService domain.TelegramService
	config    *config.Config
	sessions  *session.Store
	drafts    domain.DraftRepository
	flow      *flow.Coordinator
	client    *api.Client
	loader    *dashboard.Loader
	exporter  *ticket.Exporter
	eventBus  domain.EventPublisher
	states    *stateStore
	logger    *zerolog.Logger
}

func NewBot(
	tgService domain.TelegramService,
	cfg *config.Config,
	sessions *session.Store,
	drafts domain.DraftRepository,
	coordinator *flow.Coordinator,
	client *api.Client,
	loader *dashboard.Loader,
	exporter *ticket.Exporter,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) (*Bot, error) {
	if eventBus == nil {
		eventBus = events.NewBus()
	}

	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &Bot{
		tgService: tgService,
		config:    cfg,
		sessions:  sessions,
		drafts:    drafts,
		flow:      coordinator,
		client:    client,
		loader:    loader,
		exporter:  exporter,
		eventBus:  eventBus,
		states:    newStateStore(),
		logger:    logger,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tgService.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tgService.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		chatID := chatIDOf(update)
		if chatID == 0 {
			return
		}

		allowed, err := b.drafts.CheckRateLimit(updateCtx, chatID,
			b.config.Bot.RateLimitMessages, time.Duration(b.config.Bot.RateLimitWindow)*time.Second)
		if err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Rate limit check failed")
		} else if !allowed {
			b.logger.Warn().Int64("chat_id", chatID).Msg("Rate limit exceeded")
			if update.Message != nil {
				b.sendMessage(chatID, "You are sending messages too fast. Please wait a moment.")
			}
			return
		}

		if update.CallbackQuery != nil {
			b.handleCallbackQuery(updateCtx, update)
			return
		}

		if update.Message == nil {
			return
		}

		b.handleMessage(updateCtx, update)
	})
}

func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
		}
	}()
	handler()
}

func chatIDOf(update tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

// session loads the stored credentials for a chat, nil when not logged in.
func (b *Bot) session(ctx context.Context, chatID int64) *session.Context {
	sess, err := b.sessions.Load(ctx, chatID)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to load session")
		return nil
	}
	if sess == nil || !sess.Valid(time.Now()) {
		return nil
	}
	return sess
}

// requireSession is the login guard for authenticated commands.
func (b *Bot) requireSession(ctx context.Context, chatID int64) *session.Context {
	sess := b.session(ctx, chatID)
	if sess == nil {
		b.sendMessage(chatID, "Please /login first.")
		return nil
	}
	return sess
}

func (b *Bot) trackScreen(screen string) {
	metrics.IncScreen(screen)
}
