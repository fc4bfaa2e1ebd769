package domain

import (
	"context"
	"time"

	"boardeasy/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DraftRepository stores in-flight booking drafts keyed by chat. Drafts are
// transient wizard state: a TTL-bound store, not persistence of record.
type DraftRepository interface {
	GetDraft(ctx context.Context, chatID int64) (*models.Draft, error)
	SetDraft(ctx context.Context, draft *models.Draft) error
	ClearDraft(ctx context.Context, chatID int64) error
	CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error)
}

// EventPublisher publishes domain events without coupling to the bus type.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SheetsWriter mirrors booking rows into the operations spreadsheet.
type SheetsWriter interface {
	AppendBookingRow(ctx context.Context, booking *models.Booking) error
}

// MirrorWorker enqueues bookings for asynchronous spreadsheet mirroring.
type MirrorWorker interface {
	Enqueue(ctx context.Context, booking *models.Booking) error
}

// TelegramService abstracts the bot API for testing.
type TelegramService interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	StopReceivingUpdates()
}
