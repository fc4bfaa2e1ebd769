// Package worker mirrors confirmed bookings into the operations spreadsheet
// asynchronously: tasks go through redis when available and fall back to an
// in-memory queue otherwise.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"boardeasy/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TaskMirror       = "mirror"
	TaskUpdateStatus = "update_status"
)

// MirrorTask describes a unit of work for the spreadsheet.
type MirrorTask struct {
	Type       string          `json:"type"`
	PNR        string          `json:"pnr,omitempty"`
	Booking    *models.Booking `json:"booking,omitempty"`
	Status     string          `json:"status,omitempty"`
	RetryCount int             `json:"retry_count"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SheetsClient is the subset of the sheets service the worker needs.
type SheetsClient interface {
	UpsertBookingRow(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, pnr, status string) error
}

type MirrorWorker struct {
	sheets        SheetsClient
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan MirrorTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        zerolog.Logger
}

// NewMirrorWorker builds a worker with sane defaults.
func NewMirrorWorker(sheets SheetsClient, redisClient *redis.Client, retry RetryPolicy, logger zerolog.Logger) *MirrorWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &MirrorWorker{
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan MirrorTask, models.WorkerQueueSize),
		redisQueueKey: "sheets:queue",
		deadLetterKey: "sheets:deadletter",
		pollInterval:  2 * time.Second,
		logger:        logger,
	}
}

// Enqueue schedules a booking for mirroring via redis or the in-memory queue.
func (w *MirrorWorker) Enqueue(ctx context.Context, booking *models.Booking) error {
	if booking == nil || booking.PNRNumber == "" {
		return errors.New("booking with pnr is required")
	}
	return w.enqueue(ctx, MirrorTask{
		Type:      TaskMirror,
		PNR:       booking.PNRNumber,
		Booking:   booking,
		CreatedAt: time.Now(),
	})
}

// EnqueueStatus schedules a status cell rewrite for an already mirrored booking.
func (w *MirrorWorker) EnqueueStatus(ctx context.Context, pnr, status string) error {
	if pnr == "" || status == "" {
		return errors.New("pnr and status are required")
	}
	return w.enqueue(ctx, MirrorTask{
		Type:      TaskUpdateStatus,
		PNR:       pnr,
		Status:    status,
		CreatedAt: time.Now(),
	})
}

func (w *MirrorWorker) enqueue(ctx context.Context, task MirrorTask) error {
	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("mirror worker: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
		return nil
	default:
		return errors.New("mirror queue is full")
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *MirrorWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("mirror worker started")
	defer w.logger.Info().Msg("mirror worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, t)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *MirrorWorker) tryLocalQueue() (MirrorTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return MirrorTask{}, false
	}
}

func (w *MirrorWorker) tryRedis(ctx context.Context) (MirrorTask, bool) {
	if w.redis == nil {
		return MirrorTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return MirrorTask{}, false
		}
		w.logger.Warn().Err(err).Msg("mirror worker: redis BRPOP error")
		return MirrorTask{}, false
	}
	if len(res) != 2 {
		return MirrorTask{}, false
	}
	var task MirrorTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("mirror worker: decode redis task")
		return MirrorTask{}, false
	}
	return task, true
}

func (w *MirrorWorker) processTask(ctx context.Context, task MirrorTask) {
	if err := w.handleTask(ctx, task); err != nil {
		w.retryOrDrop(ctx, task, err)
		return
	}
	w.logger.Debug().Str("type", task.Type).Str("pnr", task.PNR).Msg("mirror task completed")
}

func (w *MirrorWorker) handleTask(ctx context.Context, task MirrorTask) error {
	switch task.Type {
	case TaskMirror:
		if task.Booking == nil {
			return errors.New("booking payload missing")
		}
		return w.sheets.UpsertBookingRow(ctx, task.Booking)
	case TaskUpdateStatus:
		if task.PNR == "" || task.Status == "" {
			return errors.New("pnr or status missing")
		}
		return w.sheets.UpdateBookingStatus(ctx, task.PNR, task.Status)
	default:
		return fmt.Errorf("unknown task type: %s", task.Type)
	}
}

func (w *MirrorWorker) retryOrDrop(ctx context.Context, task MirrorTask, cause error) {
	task.RetryCount++
	if task.RetryCount >= w.retryPolicy.MaxRetries {
		w.logger.Error().Err(cause).Str("pnr", task.PNR).Int("retries", task.RetryCount).
			Msg("mirror task failed, moving to dead letter")
		w.pushDeadLetter(ctx, task)
		return
	}

	delay := w.retryPolicy.NextDelay(task.RetryCount)
	w.logger.Warn().Err(cause).Str("pnr", task.PNR).Dur("retry_in", delay).
		Msg("mirror task failed, scheduling retry")

	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := w.enqueue(ctx, task); err != nil {
			w.logger.Error().Err(err).Str("pnr", task.PNR).Msg("mirror worker: re-enqueue failed")
		}
	})
}

func (w *MirrorWorker) pushRedis(ctx context.Context, task MirrorTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *MirrorWorker) pushDeadLetter(ctx context.Context, task MirrorTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Str("pnr", task.PNR).Msg("mirror worker: encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Str("pnr", task.PNR).Msg("mirror worker: deadletter push")
	}
}
