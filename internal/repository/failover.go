package repository

import (
	"context"
	"sync/atomic"
	"time"

	"boardeasy/internal/domain"
	"boardeasy/internal/models"

	"github.com/rs/zerolog"
)

// FailoverDraftRepository serves from the primary (redis) store and falls
// back to memory when it errors, retrying the primary after a cooldown.
// A wizard in progress degrades to in-process state instead of dying with
// the redis connection.
type FailoverDraftRepository struct {
	primary   domain.DraftRepository
	fallback  domain.DraftRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

const recoveryInterval = time.Minute

func NewFailoverDraftRepository(primary, fallback domain.DraftRepository, logger *zerolog.Logger) *FailoverDraftRepository {
	return &FailoverDraftRepository{primary: primary, fallback: fallback, logger: logger}
}

func (r *FailoverDraftRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary draft store failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverDraftRepository) shouldRetryPrimary() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverDraftRepository) GetDraft(ctx context.Context, chatID int64) (*models.Draft, error) {
	if !r.isDown.Load() {
		draft, err := r.primary.GetDraft(ctx, chatID)
		if err == nil {
			return draft, nil
		}
		r.markDown(err)
	} else if r.shouldRetryPrimary() {
		draft, err := r.primary.GetDraft(ctx, chatID)
		if err == nil {
			r.isDown.Store(false)
			return draft, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetDraft(ctx, chatID)
}

func (r *FailoverDraftRepository) SetDraft(ctx context.Context, draft *models.Draft) error {
	if !r.isDown.Load() {
		if err := r.primary.SetDraft(ctx, draft); err == nil {
			return nil
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.SetDraft(ctx, draft)
}

func (r *FailoverDraftRepository) ClearDraft(ctx context.Context, chatID int64) error {
	if !r.isDown.Load() {
		if err := r.primary.ClearDraft(ctx, chatID); err == nil {
			return nil
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.ClearDraft(ctx, chatID)
}

func (r *FailoverDraftRepository) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, chatID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, chatID, limit, window)
}
