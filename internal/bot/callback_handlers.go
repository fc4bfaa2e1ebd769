package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	callback := update.CallbackQuery
	data := callback.Data
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	// Answer right away to clear the spinner.
	if _, err := b.tgService.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to answer callback query")
	}

	switch {
	case strings.HasPrefix(data, "book:"):
		scheduleID, _ := strconv.ParseInt(strings.TrimPrefix(data, "book:"), 10, 64)
		b.handleBusSelected(ctx, chatID, scheduleID)

	case strings.HasPrefix(data, "seat:"):
		b.handleSeatToggle(ctx, chatID, messageID, strings.TrimPrefix(data, "seat:"))

	case data == "seats_done":
		b.handleSeatsDone(ctx, chatID)

	case strings.HasPrefix(data, "pay:"):
		b.handlePaymentMethod(ctx, chatID, strings.TrimPrefix(data, "pay:"))

	case data == "confirm_booking":
		b.handleConfirmBooking(ctx, chatID)

	case strings.HasPrefix(data, "back:"):
		b.handleBack(ctx, chatID, strings.TrimPrefix(data, "back:"))

	case data == "abandon":
		b.handleCancelFlow(ctx, chatID)

	case strings.HasPrefix(data, "routes_page:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "routes_page:"))
		b.showRoutes(ctx, chatID, page, messageID)

	case strings.HasPrefix(data, "routes_sort:"):
		b.handleRoutesSort(ctx, chatID, strings.TrimPrefix(data, "routes_sort:"))

	case strings.HasPrefix(data, "mybk_page:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "mybk_page:"))
		b.showMyBookings(ctx, chatID, page, messageID)

	case strings.HasPrefix(data, "bk_pay:"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "bk_pay:"), 10, 64)
		b.handlePayBooking(ctx, chatID, id)

	case strings.HasPrefix(data, "bk_cancel:"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "bk_cancel:"), 10, 64)
		b.handleCancelBooking(ctx, chatID, id)

	case strings.HasPrefix(data, "bk_dl:"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "bk_dl:"), 10, 64)
		b.handleDownloadTicket(ctx, chatID, id)

	case strings.HasPrefix(data, "abk_page:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "abk_page:"))
		b.showAdminBookings(ctx, chatID, page, messageID)

	case strings.HasPrefix(data, "abk_f:"):
		b.handleAdminBookingFilter(ctx, chatID, strings.TrimPrefix(data, "abk_f:"))

	case strings.HasPrefix(data, "abk_s:"):
		b.handleAdminBookingSort(ctx, chatID, strings.TrimPrefix(data, "abk_s:"))

	case strings.HasPrefix(data, "abk_act:"):
		id, action, ok := parseIDAction(strings.TrimPrefix(data, "abk_act:"))
		if ok {
			b.handleAdminBookingAction(ctx, chatID, id, action)
		}

	case strings.HasPrefix(data, "adm:users:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "adm:users:"))
		b.showAdminUsers(ctx, chatID, page, 0)

	case strings.HasPrefix(data, "adm_users_page:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "adm_users_page:"))
		b.showAdminUsers(ctx, chatID, page, messageID)

	case strings.HasPrefix(data, "adm:vehicles:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "adm:vehicles:"))
		b.showAdminVehicles(ctx, chatID, page, 0)

	case strings.HasPrefix(data, "adm_veh_page:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "adm_veh_page:"))
		b.showAdminVehicles(ctx, chatID, page, messageID)

	case data == "adm:bookings":
		b.showAdminBookings(ctx, chatID, 0, 0)

	case data == "adm:export":
		b.handleAdminExport(ctx, chatID)

	case data == "adm:new_route":
		b.startRouteCreate(ctx, chatID)

	case data == "adm:new_schedule":
		b.startScheduleCreate(ctx, chatID)

	case strings.HasPrefix(data, "usr_act:"):
		id, action, ok := parseIDAction(strings.TrimPrefix(data, "usr_act:"))
		if ok {
			b.handleUserActive(ctx, chatID, id, action)
		}

	case strings.HasPrefix(data, "veh_pick:"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "veh_pick:"), 10, 64)
		b.handleDriverPick(ctx, chatID, id)

	case strings.HasPrefix(data, "assign:"):
		parts := strings.Split(strings.TrimPrefix(data, "assign:"), ":")
		if len(parts) == 2 {
			vehicleID, err1 := strconv.ParseInt(parts[0], 10, 64)
			driverID, err2 := strconv.ParseInt(parts[1], 10, 64)
			if err1 == nil && err2 == nil {
				b.handleAssignDriver(ctx, chatID, vehicleID, driverID)
			}
		}
	}
}

func (b *Bot) handleSeatToggle(ctx context.Context, chatID int64, messageID int, seat string) {
	draft, err := b.flow.ToggleSeat(ctx, chatID, seat)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.renderSeatSelection(chatID, draft, messageID)
}

func (b *Bot) handleRoutesSort(ctx context.Context, chatID int64, field string) {
	state := b.states.get(chatID)
	spec := state.spec("routes", b.config.Bot.PaginationSize)
	state.setSpec("routes", spec.ToggleSort(field))
	b.showRoutes(ctx, chatID, 0, 0)
}

// parseIDAction splits "<id>:<action>" callback payloads.
func parseIDAction(s string) (int64, string, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, "", false
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, parts[1], true
}
