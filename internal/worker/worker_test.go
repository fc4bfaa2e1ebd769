package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"boardeasy/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSheets struct {
	upsertCalls int
	statusCalls int
	lastPNR     string
	lastStatus  string
	err         error
}

func (f *fakeSheets) UpsertBookingRow(_ context.Context, b *models.Booking) error {
	f.upsertCalls++
	f.lastPNR = b.PNRNumber
	return f.err
}

func (f *fakeSheets) UpdateBookingStatus(_ context.Context, pnr, status string) error {
	f.statusCalls++
	f.lastPNR = pnr
	f.lastStatus = status
	return f.err
}

func newTestWorker(t *testing.T, sheets SheetsClient, rdb *redis.Client) *MirrorWorker {
	t.Helper()
	return NewMirrorWorker(sheets, rdb, RetryPolicy{MaxRetries: 2, InitialDelay: time.Millisecond}, zerolog.Nop())
}

func TestEnqueueFallsBackToLocalQueue(t *testing.T) {
	sheets := &fakeSheets{}
	w := newTestWorker(t, sheets, nil)

	booking := &models.Booking{PNRNumber: "PNR1"}
	require.NoError(t, w.Enqueue(context.Background(), booking))

	task, ok := w.tryLocalQueue()
	require.True(t, ok)
	assert.Equal(t, TaskMirror, task.Type)
	assert.Equal(t, "PNR1", task.PNR)
}

func TestEnqueueRequiresPNR(t *testing.T) {
	w := newTestWorker(t, &fakeSheets{}, nil)
	assert.Error(t, w.Enqueue(context.Background(), nil))
	assert.Error(t, w.Enqueue(context.Background(), &models.Booking{}))
	assert.Error(t, w.EnqueueStatus(context.Background(), "", "CONFIRMED"))
}

func TestProcessMirrorTask(t *testing.T) {
	sheets := &fakeSheets{}
	w := newTestWorker(t, sheets, nil)

	require.NoError(t, w.Enqueue(context.Background(), &models.Booking{PNRNumber: "PNR2"}))
	task, ok := w.tryLocalQueue()
	require.True(t, ok)

	w.processTask(context.Background(), task)
	assert.Equal(t, 1, sheets.upsertCalls)
	assert.Equal(t, "PNR2", sheets.lastPNR)
}

func TestProcessStatusTask(t *testing.T) {
	sheets := &fakeSheets{}
	w := newTestWorker(t, sheets, nil)

	require.NoError(t, w.EnqueueStatus(context.Background(), "PNR3", models.BookingCancelled))
	task, ok := w.tryLocalQueue()
	require.True(t, ok)

	w.processTask(context.Background(), task)
	assert.Equal(t, 1, sheets.statusCalls)
	assert.Equal(t, "PNR3", sheets.lastPNR)
	assert.Equal(t, "CANCELLED", sheets.lastStatus)
}

func TestEnqueuePrefersRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	w := newTestWorker(t, &fakeSheets{}, rdb)
	require.NoError(t, w.Enqueue(context.Background(), &models.Booking{PNRNumber: "PNR4"}))

	// Task lands in redis, not the local channel.
	_, ok := w.tryLocalQueue()
	assert.False(t, ok)

	raw, err := rdb.LRange(context.Background(), w.redisQueueKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, raw, 1)

	var task MirrorTask
	require.NoError(t, json.Unmarshal([]byte(raw[0]), &task))
	assert.Equal(t, "PNR4", task.PNR)
}

func TestTryRedisConsumesTask(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	w := newTestWorker(t, &fakeSheets{}, rdb)
	require.NoError(t, w.EnqueueStatus(context.Background(), "PNR5", models.BookingConfirmed))

	task, ok := w.tryRedis(context.Background())
	require.True(t, ok)
	assert.Equal(t, TaskUpdateStatus, task.Type)
	assert.Equal(t, "PNR5", task.PNR)
}

func TestDeadLetterAfterMaxRetries(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	sheets := &fakeSheets{err: errors.New("boom")}
	w := newTestWorker(t, sheets, rdb)

	task := MirrorTask{Type: TaskMirror, PNR: "PNR6", Booking: &models.Booking{PNRNumber: "PNR6"}, RetryCount: 1}
	w.processTask(context.Background(), task)

	raw, err := rdb.LRange(context.Background(), w.deadLetterKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, raw, 1)

	var dead MirrorTask
	require.NoError(t, json.Unmarshal([]byte(raw[0]), &dead))
	assert.Equal(t, "PNR6", dead.PNR)
	assert.Equal(t, 2, dead.RetryCount)
}

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: 5 * time.Second, BackoffFactor: 2}

	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 4*time.Second, p.NextDelay(3))
	assert.Equal(t, 5*time.Second, p.NextDelay(4))
	assert.Equal(t, time.Second, p.NextDelay(0))
}

func TestUnknownTaskGoesToDeadLetter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	w := NewMirrorWorker(&fakeSheets{}, rdb, RetryPolicy{MaxRetries: 1}, zerolog.Nop())
	w.processTask(context.Background(), MirrorTask{Type: "bogus", PNR: "PNR7"})

	raw, err := rdb.LRange(context.Background(), w.deadLetterKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Len(t, raw, 1)
}
