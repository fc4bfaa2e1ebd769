package repository

import (
	"context"
	"sync"
	"time"

	"boardeasy/internal/models"
)

// MemoryDraftRepository is the in-process fallback when redis is down.
// Entries expire lazily on read.
type MemoryDraftRepository struct {
	drafts     sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

type draftEntry struct {
	draft     *models.Draft
	expiresAt time.Time
}

func NewMemoryDraftRepository(ttl time.Duration) *MemoryDraftRepository {
	return &MemoryDraftRepository{ttl: ttl}
}

func (r *MemoryDraftRepository) GetDraft(ctx context.Context, chatID int64) (*models.Draft, error) {
	val, ok := r.drafts.Load(chatID)
	if !ok {
		return nil, nil
	}
	entry := val.(*draftEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.drafts.Delete(chatID)
		return nil, nil
	}
	return entry.draft, nil
}

func (r *MemoryDraftRepository) SetDraft(ctx context.Context, draft *models.Draft) error {
	r.drafts.Store(draft.ChatID, &draftEntry{draft: draft, expiresAt: time.Now().Add(r.ttl)})
	return nil
}

func (r *MemoryDraftRepository) ClearDraft(ctx context.Context, chatID int64) error {
	r.drafts.Delete(chatID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryDraftRepository) CheckRateLimit(ctx context.Context, chatID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(chatID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(chatID, entry)
	return entry.count <= limit, nil
}
