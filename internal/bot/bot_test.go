package bot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"boardeasy/internal/api"
	"boardeasy/internal/config"
	"boardeasy/internal/dashboard"
	"boardeasy/internal/domain"
	"boardeasy/internal/events"
	"boardeasy/internal/flow"
	"boardeasy/internal/models"
	"boardeasy/internal/repository"
	"boardeasy/internal/session"
	"boardeasy/internal/ticket"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTelegramService struct {
	domain.TelegramService
	updatesChan chan tgbotapi.Update
	sent        []tgbotapi.Chattable
}

func (m *mockTelegramService) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.updatesChan
}

func (m *mockTelegramService) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sent = append(m.sent, c)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *mockTelegramService) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "test_bot"}
}

// lastText digs the text out of the most recent sent message.
func (m *mockTelegramService) lastText() string {
	for i := len(m.sent) - 1; i >= 0; i-- {
		if msg, ok := m.sent[i].(tgbotapi.MessageConfig); ok {
			return msg.Text
		}
		if edit, ok := m.sent[i].(tgbotapi.EditMessageTextConfig); ok {
			return edit.Text
		}
	}
	return ""
}

type testEnv struct {
	bot *Bot
	tg  *mockTelegramService
}

func newTestBot(t *testing.T, backend http.Handler) *testEnv {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	client := api.New(config.BackendConfig{
		BaseURL: srv.URL, TimeoutSeconds: 5, RateLimitRPS: 1000, RateLimitBurst: 100,
	}, &logger)

	drafts := repository.NewMemoryDraftRepository(time.Hour)
	bus := events.NewBus()
	coordinator := flow.NewCoordinator(drafts, client, bus, 2500, map[string]int{"SAVE10": 10}, &logger)

	sessions, err := session.NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })

	cfg := &config.Config{}
	cfg.Bot.PaginationSize = 5
	cfg.Bot.RateLimitMessages = 100
	cfg.Bot.RateLimitWindow = 60

	tg := &mockTelegramService{updatesChan: make(chan tgbotapi.Update, 4)}
	b, err := NewBot(tg, cfg, sessions, drafts, coordinator, client,
		dashboard.NewLoader(client, &logger), ticket.NewExporter(t.TempDir()), bus, &logger)
	require.NoError(t, err)

	return &testEnv{bot: b, tg: tg}
}

func messageUpdate(chatID int64, text string) tgbotapi.Update {
	msg := tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: chatID},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, r := range text {
			if r == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return tgbotapi.Update{Message: &msg}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chatID},
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func loginBackend(t *testing.T, extra func(w http.ResponseWriter, r *http.Request) bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if extra != nil && extra(w, r) {
			return
		}
		switch r.URL.Path {
		case "/api/auth/login":
			_ = json.NewEncoder(w).Encode(api.AuthResponse{
				Token: "tok",
				User:  models.User{ID: 1, Username: "amy", Role: models.RolePassenger, IsActive: true},
			})
		default:
			http.NotFound(w, r)
		}
	})
}

func login(t *testing.T, env *testEnv, chatID int64) {
	t.Helper()
	ctx := context.Background()
	env.bot.processUpdate(ctx, messageUpdate(chatID, "/login"))
	env.bot.processUpdate(ctx, messageUpdate(chatID, "amy"))
	env.bot.processUpdate(ctx, messageUpdate(chatID, "secret"))
	assert.Contains(t, env.tg.lastText(), "Logged in as amy")
}

func TestStartCommandGreets(t *testing.T) {
	env := newTestBot(t, http.NotFoundHandler())

	env.bot.processUpdate(context.Background(), messageUpdate(1, "/start"))
	assert.Contains(t, env.tg.lastText(), "Welcome to BoardEasy")
}

func TestLoginFlowStoresSession(t *testing.T) {
	env := newTestBot(t, loginBackend(t, nil))
	login(t, env, 1)

	sess := env.bot.session(context.Background(), 1)
	require.NotNil(t, sess)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, "amy", sess.User.Username)
}

func TestAuthenticatedCommandsRequireLogin(t *testing.T) {
	env := newTestBot(t, http.NotFoundHandler())

	env.bot.processUpdate(context.Background(), messageUpdate(1, "/search"))
	assert.Contains(t, env.tg.lastText(), "/login")

	env.bot.processUpdate(context.Background(), messageUpdate(1, "/bookings"))
	assert.Contains(t, env.tg.lastText(), "/login")
}

func TestAdminCommandRefusedForPassenger(t *testing.T) {
	env := newTestBot(t, loginBackend(t, nil))
	login(t, env, 1)

	env.bot.processUpdate(context.Background(), messageUpdate(1, "/admin_bookings"))
	assert.Contains(t, env.tg.lastText(), "administrators only")
}

func TestSearchWizardThroughBooking(t *testing.T) {
	var bookingCalls int
	backend := loginBackend(t, func(w http.ResponseWriter, r *http.Request) bool {
		switch r.URL.Path {
		case "/api/bus-search/search":
			_ = json.NewEncoder(w).Encode([]models.BusResult{{
				ScheduleID: 11, Operator: "RedLine", VehicleNumber: "MH12",
				Source: "Mumbai", Destination: "Pune", DepartureTime: "08:30",
				FarePerSeat: 500, AvailableSeats: []string{"A1", "A2", "B1"},
			}})
			return true
		case "/api/bookings/simple":
			bookingCalls++
			var req models.CreateBookingRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(models.Booking{
				ID: 77, PNRNumber: "PNR77", BookingStatus: models.BookingPending,
				TotalAmount: req.TotalAmount, SeatNumbers: req.SeatNumbers,
			})
			return true
		}
		return false
	})

	env := newTestBot(t, backend)
	login(t, env, 1)
	ctx := context.Background()

	env.bot.processUpdate(ctx, messageUpdate(1, "/search"))
	env.bot.processUpdate(ctx, messageUpdate(1, "Mumbai"))
	env.bot.processUpdate(ctx, messageUpdate(1, "Pune"))
	env.bot.processUpdate(ctx, messageUpdate(1, "2026-09-15"))
	env.bot.processUpdate(ctx, messageUpdate(1, "2"))
	assert.Contains(t, env.tg.lastText(), "RedLine")

	env.bot.processUpdate(ctx, callbackUpdate(1, "book:11"))
	env.bot.processUpdate(ctx, callbackUpdate(1, "seat:A1"))
	env.bot.processUpdate(ctx, callbackUpdate(1, "seat:A2"))
	env.bot.processUpdate(ctx, callbackUpdate(1, "seats_done"))
	assert.Contains(t, env.tg.lastText(), "one line per passenger")

	env.bot.processUpdate(ctx, messageUpdate(1, "Amy, 30, female\nBob, 31, male\n+911234567890, amy@example.com"))
	assert.Contains(t, env.tg.lastText(), "How would you like to pay?")

	env.bot.processUpdate(ctx, callbackUpdate(1, "pay:upi"))
	env.bot.processUpdate(ctx, messageUpdate(1, "-"))
	assert.Contains(t, env.tg.lastText(), "Order summary")

	env.bot.processUpdate(ctx, callbackUpdate(1, "confirm_booking"))
	assert.Contains(t, env.tg.lastText(), "PNR77")
	assert.Equal(t, 1, bookingCalls)

	// Draft destroyed after submit.
	draft, err := env.bot.flow.Draft(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestInvalidDateRejectedInSearchWizard(t *testing.T) {
	env := newTestBot(t, loginBackend(t, nil))
	login(t, env, 1)
	ctx := context.Background()

	env.bot.processUpdate(ctx, messageUpdate(1, "/search"))
	env.bot.processUpdate(ctx, messageUpdate(1, "Mumbai"))
	env.bot.processUpdate(ctx, messageUpdate(1, "Pune"))
	env.bot.processUpdate(ctx, messageUpdate(1, "15.09.2026"))
	assert.Contains(t, env.tg.lastText(), "YYYY-MM-DD")
}

func TestStaleCallbackRoutesBackToSearch(t *testing.T) {
	env := newTestBot(t, loginBackend(t, nil))
	login(t, env, 1)

	// Deep link into seat selection with no draft.
	env.bot.processUpdate(context.Background(), callbackUpdate(1, "seats_done"))
	assert.Contains(t, env.tg.lastText(), "/search")
}

func TestParsePassengerBlock(t *testing.T) {
	passengers, contact, err := parsePassengerBlock("Amy, 30, female\n+91123, amy@x.com")
	require.NoError(t, err)
	require.Len(t, passengers, 1)
	assert.Equal(t, "Amy", passengers[0].Name)
	assert.Equal(t, 30, passengers[0].Age)
	assert.Equal(t, "female", passengers[0].Gender)
	assert.Equal(t, "+91123", contact.Phone)
	assert.Equal(t, "amy@x.com", contact.Email)

	_, _, err = parsePassengerBlock("just one line")
	assert.Error(t, err)

	_, _, err = parsePassengerBlock("Amy, thirty, female\n+91123, amy@x.com")
	assert.Error(t, err)
}

func TestParseIDAction(t *testing.T) {
	id, action, ok := parseIDAction("42:confirm")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "confirm", action)

	_, _, ok = parseIDAction("nope")
	assert.False(t, ok)

	_, _, ok = parseIDAction("x:confirm")
	assert.False(t, ok)
}

func TestGetErrorMessage(t *testing.T) {
	env := newTestBot(t, http.NotFoundHandler())

	assert.Contains(t, env.bot.getErrorMessage(api.ErrNoSession), "/login")
	assert.Contains(t, env.bot.getErrorMessage(flow.ErrStaleDraft), "/search")
	assert.Contains(t, env.bot.getErrorMessage(flow.ErrInvalidCoupon), "coupon")
	assert.Contains(t, env.bot.getErrorMessage(errors.New("weird")), "went wrong")
}

func TestLogoutClearsSessionAndDraft(t *testing.T) {
	env := newTestBot(t, loginBackend(t, nil))
	login(t, env, 1)

	env.bot.processUpdate(context.Background(), messageUpdate(1, "/logout"))
	assert.Nil(t, env.bot.session(context.Background(), 1))
}
