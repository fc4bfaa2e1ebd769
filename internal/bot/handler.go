package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"boardeasy/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	if update.Message.IsCommand() {
		b.handleCommand(ctx, update)
		return
	}

	state := b.states.get(chatID)
	if state.Mode != modeNone {
		b.handleModeInput(ctx, chatID, text, state)
		return
	}

	b.sendMessage(chatID, "I did not understand that. Try /help for the list of commands.")
}

func (b *Bot) handleCommand(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	switch update.Message.Command() {
	case "start":
		b.trackScreen("start")
		b.states.resetInput(chatID)
		b.handleStart(ctx, chatID)
	case "help":
		b.trackScreen("help")
		b.sendMessage(chatID, helpText)
	case "support":
		b.trackScreen("support")
		b.sendMessage(chatID, supportText)
	case "partner":
		b.trackScreen("partner")
		b.sendMessage(chatID, partnerText)
	case "login":
		b.trackScreen("login")
		b.startLogin(chatID)
	case "logout":
		b.handleLogout(ctx, chatID)
	case "register":
		b.trackScreen("register")
		b.startRegister(chatID)
	case "routes":
		b.trackScreen("routes")
		b.showRoutes(ctx, chatID, 0, 0)
	case "search":
		b.trackScreen("search")
		b.startSearch(ctx, chatID)
	case "bookings":
		b.trackScreen("bookings")
		b.showMyBookings(ctx, chatID, 0, 0)
	case "dashboard":
		b.trackScreen("dashboard")
		b.showDashboard(ctx, chatID)
	case "admin_bookings":
		b.trackScreen("admin_bookings")
		b.showAdminBookings(ctx, chatID, 0, 0)
	case "profile":
		b.trackScreen("profile")
		b.startProfileUpdate(ctx, chatID)
	case "password":
		b.startChangePassword(ctx, chatID)
	case "export":
		b.handleAdminExport(ctx, chatID)
	case "cancel":
		b.handleCancelFlow(ctx, chatID)
	default:
		b.sendMessage(chatID, "Unknown command. Try /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	greeting := "Welcome to BoardEasy 🚌\n\nSearch buses, pick seats and pay, all from this chat."
	if sess := b.session(ctx, chatID); sess != nil {
		greeting += "\n\nLogged in as " + sess.User.Username + " (" + strings.ToLower(sess.User.Role) + ")."
	} else {
		greeting += "\n\nUse /login or /register to get started, or browse /routes without an account."
	}
	b.sendMessage(chatID, greeting+"\n\n"+helpText)
}

const helpText = `Commands:
/routes — browse routes
/search — find and book a bus
/bookings — your bookings
/dashboard — your dashboard
/login /register /logout — account
/profile /password — account settings
/support /partner — about us
/cancel — abandon the current wizard`

const supportText = "BoardEasy support: support@boardeasy.example, Mon-Sat 9:00-18:00 IST."

const partnerText = "Operate a fleet? Partner with BoardEasy: partners@boardeasy.example."

// handleModeInput routes plain text according to the chat's pending input.
func (b *Bot) handleModeInput(ctx context.Context, chatID int64, text string, state *chatState) {
	switch state.Mode {
	case modeLoginUsername:
		state.Login.Username = text
		state.Mode = modeLoginPassword
		b.sendMessage(chatID, "Password:")
	case modeLoginPassword:
		b.finishLogin(ctx, chatID, state, text)
	case modeRegisterUsername:
		state.Register.Username = text
		state.Mode = modeRegisterEmail
		b.sendMessage(chatID, "Email:")
	case modeRegisterEmail:
		state.Register.Email = text
		state.Mode = modeRegisterPhone
		b.sendMessage(chatID, "Phone number:")
	case modeRegisterPhone:
		state.Register.Phone = text
		state.Mode = modeRegisterPassword
		b.sendMessage(chatID, "Password:")
	case modeRegisterPassword:
		b.finishRegister(ctx, chatID, state, text)
	case modeSearchSource:
		state.Search.Source = text
		state.Mode = modeSearchDest
		b.sendMessage(chatID, "Destination city:")
	case modeSearchDest:
		state.Search.Destination = text
		state.Mode = modeSearchDate
		b.sendMessage(chatID, "Travel date (YYYY-MM-DD):")
	case modeSearchDate:
		if _, err := time.Parse("2006-01-02", text); err != nil {
			b.sendMessage(chatID, "That does not look like a date. Use YYYY-MM-DD, e.g. 2026-09-15.")
			return
		}
		state.Search.TravelDate = text
		state.Mode = modeSearchSeats
		b.sendMessage(chatID, "How many passengers? (1-6)")
	case modeSearchSeats:
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 || n > models.MaxPassengersPerBooking {
			b.sendMessage(chatID, "Enter a number between 1 and 6.")
			return
		}
		state.Search.Passengers = n
		state.Mode = modeNone
		b.runSearch(ctx, chatID, state)
	case modePassengerEntry:
		b.handlePassengerEntry(ctx, chatID, text, state)
	case modeCouponEntry:
		b.handleCouponEntry(ctx, chatID, text, state)
	case modeCardEntry:
		b.handleCardEntry(ctx, chatID, text, state)
	case modeProfileUpdate:
		b.finishProfileUpdate(ctx, chatID, text, state)
	case modeChangePassword:
		b.finishChangePassword(ctx, chatID, text, state)
	case modeRouteCreate:
		b.finishRouteCreate(ctx, chatID, text, state)
	case modeScheduleCreate:
		b.finishScheduleCreate(ctx, chatID, text, state)
	default:
		state.Mode = modeNone
		b.sendMessage(chatID, "Let's start over. Try /help.")
	}
}

func (b *Bot) startLogin(chatID int64) {
	state := b.states.get(chatID)
	state.Login = models.RegisterRequest{}
	state.Mode = modeLoginUsername
	b.sendMessage(chatID, "Username:")
}

func (b *Bot) finishLogin(ctx context.Context, chatID int64, state *chatState, password string) {
	username := state.Login.Username
	state.Login = models.RegisterRequest{}
	state.Mode = modeNone

	resp, err := b.client.Login(ctx, username, password)
	if err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Login failed")
		b.sendMessage(chatID, "Login failed. Check your username and password and try /login again.")
		return
	}

	if err := b.saveSession(ctx, chatID, resp.Token, resp.User); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.sendMessage(chatID, "Logged in as "+resp.User.Username+". Try /search or /dashboard.")
}

func (b *Bot) startRegister(chatID int64) {
	state := b.states.get(chatID)
	state.Register = models.RegisterRequest{Role: models.RolePassenger}
	state.Mode = modeRegisterUsername
	b.sendMessage(chatID, "Pick a username:")
}

func (b *Bot) finishRegister(ctx context.Context, chatID int64, state *chatState, password string) {
	req := state.Register
	req.Password = password
	state.Register = models.RegisterRequest{}
	state.Mode = modeNone

	resp, err := b.client.Register(ctx, req)
	if err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Registration failed")
		b.sendMessage(chatID, "Registration failed. The username or email may be taken; try /register again.")
		return
	}

	if err := b.saveSession(ctx, chatID, resp.Token, resp.User); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.publishUserRegistered(chatID, resp.User.Username)
	b.sendMessage(chatID, "Account created. You are logged in as "+resp.User.Username+".")
}

func (b *Bot) handleLogout(ctx context.Context, chatID int64) {
	if err := b.sessions.Clear(ctx, chatID); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to clear session")
	}
	if err := b.flow.Abandon(ctx, chatID); err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to drop draft on logout")
	}
	b.states.clear(chatID)
	b.sendMessage(chatID, "Logged out. See you soon.")
}

func (b *Bot) handleCancelFlow(ctx context.Context, chatID int64) {
	b.states.resetInput(chatID)
	if err := b.flow.Abandon(ctx, chatID); err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to abandon draft")
	}
	b.sendMessage(chatID, "Cancelled. Nothing was booked.")
}
