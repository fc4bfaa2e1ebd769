package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"boardeasy/internal/events"
	"boardeasy/internal/models"
	"boardeasy/internal/session"
	"boardeasy/internal/view"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) requireAdmin(ctx context.Context, chatID int64) *session.Context {
	sess := b.requireSession(ctx, chatID)
	if sess == nil {
		return nil
	}
	if !sess.IsAdmin() {
		b.sendMessage(chatID, "This screen is for administrators only.")
		return nil
	}
	return sess
}

// showAdminBookings is the admin bookings view: filterable by status,
// sortable by amount, with confirm/cancel per row.
func (b *Bot) showAdminBookings(ctx context.Context, chatID int64, page, messageID int) {
	sess := b.requireAdmin(ctx, chatID)
	if sess == nil {
		return
	}

	bookings, err := b.client.WithAuth(sess.Token).GetBookings(ctx, 500)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	state := b.states.get(chatID)
	state.Bookings = bookings

	spec := state.spec("admin_bookings", b.config.Bot.PaginationSize)
	result := view.Derive(bookings, spec, view.BookingFields)
	spec = spec.WithPage(page, result.TotalPages)
	state.setSpec("admin_bookings", spec)
	result = view.Derive(bookings, spec, view.BookingFields)

	var content strings.Builder
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, bk := range result.PageItems {
		username := ""
		if bk.User != nil {
			username = bk.User.Username
		}
		content.WriteString(fmt.Sprintf("%s %s — %s\n", statusEmoji(bk.BookingStatus), bk.PNRNumber, username))
		content.WriteString(fmt.Sprintf("   %s, ₹%.2f, %s\n\n", bk.RouteLabel(), bk.TotalAmount, strings.ToLower(bk.BookingStatus)))

		if bk.BookingStatus == models.BookingPending {
			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("✅ Confirm "+bk.PNRNumber, fmt.Sprintf("abk_act:%d:confirm", bk.ID)),
				tgbotapi.NewInlineKeyboardButtonData("❌ Cancel "+bk.PNRNumber, fmt.Sprintf("abk_act:%d:cancel", bk.ID)),
			})
		}
	}
	if result.TotalElements == 0 {
		content.WriteString("No bookings match the current filter.")
	}

	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⏳ Pending", "abk_f:"+models.BookingPending),
		tgbotapi.NewInlineKeyboardButtonData("✅ Confirmed", "abk_f:"+models.BookingConfirmed),
		tgbotapi.NewInlineKeyboardButtonData("All", "abk_f:"),
	})
	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Sort by amount", "abk_s:totalAmount"),
	})

	b.renderPaginatedList(paginationParams{
		ChatID:     chatID,
		MessageID:  messageID,
		Page:       spec.Page,
		TotalPages: result.TotalPages,
		Title:      "🧾 All bookings",
		PagePrefix: "abk_page:",
	}, content.String(), keyboard)
}

// handleAdminBookingFilter applies a status filter (empty value clears it)
// and rerenders from page zero.
func (b *Bot) handleAdminBookingFilter(ctx context.Context, chatID int64, status string) {
	state := b.states.get(chatID)
	spec := state.spec("admin_bookings", b.config.Bot.PaginationSize)
	if status == "" {
		spec = view.NewSpec(spec.Size)
	} else {
		spec = spec.WithFilter("bookingStatus", status)
	}
	state.setSpec("admin_bookings", spec)
	b.showAdminBookings(ctx, chatID, 0, 0)
}

func (b *Bot) handleAdminBookingSort(ctx context.Context, chatID int64, field string) {
	state := b.states.get(chatID)
	spec := state.spec("admin_bookings", b.config.Bot.PaginationSize)
	state.setSpec("admin_bookings", spec.ToggleSort(field))
	b.showAdminBookings(ctx, chatID, 0, 0)
}

func (b *Bot) handleAdminBookingAction(ctx context.Context, chatID int64, bookingID int64, action string) {
	sess := b.requireAdmin(ctx, chatID)
	if sess == nil {
		return
	}

	booking, err := b.client.WithAuth(sess.Token).UpdateBookingAction(ctx, bookingID, action)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	eventType := events.EventBookingConfirmed
	if action == "cancel" {
		eventType = events.EventBookingCancelled
	}
	if err := b.eventBus.PublishJSON(eventType, events.BookingEventPayload{
		BookingID:   booking.ID,
		PNR:         booking.PNRNumber,
		ChatID:      chatID,
		Status:      booking.BookingStatus,
		TotalAmount: booking.TotalAmount,
		OccurredAt:  time.Now(),
	}); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to publish booking action event")
	}

	b.sendMessage(chatID, fmt.Sprintf("Booking %s is now %s.", booking.PNRNumber, strings.ToLower(booking.BookingStatus)))
	b.showAdminBookings(ctx, chatID, 0, 0)
}

// showAdminUsers lists accounts with activate/deactivate toggles.
func (b *Bot) showAdminUsers(ctx context.Context, chatID int64, page, messageID int) {
	sess := b.requireAdmin(ctx, chatID)
	if sess == nil {
		return
	}

	users, err := b.client.WithAuth(sess.Token).AdminUsers(ctx)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	state := b.states.get(chatID)
	spec := state.spec("admin_users", b.config.Bot.PaginationSize)
	result := view.Derive(users, spec, view.UserFields)
	spec = spec.WithPage(page, result.TotalPages)
	state.setSpec("admin_users", spec)
	result = view.Derive(users, spec, view.UserFields)

	var content strings.Builder
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, u := range result.PageItems {
		status := "active"
		if !u.IsActive {
			status = "inactive"
		}
		content.WriteString(fmt.Sprintf("%s (%s) — %s, %s\n", u.Username, strings.ToLower(u.Role), u.Email, status))

		label := "Deactivate " + u.Username
		action := "deactivate"
		if !u.IsActive {
			label = "Activate " + u.Username
			action = "activate"
		}
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("usr_act:%d:%s", u.ID, action)),
		})
	}

	b.renderPaginatedList(paginationParams{
		ChatID:     chatID,
		MessageID:  messageID,
		Page:       spec.Page,
		TotalPages: result.TotalPages,
		Title:      "👥 Users",
		PagePrefix: "adm_users_page:",
	}, content.String(), keyboard)
}

func (b *Bot) handleUserActive(ctx context.Context, chatID int64, userID int64, action string) {
	sess := b.requireAdmin(ctx, chatID)
	if sess == nil {
		return
	}

	if err := b.client.WithAuth(sess.Token).SetUserActive(ctx, userID, action == "activate"); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.showAdminUsers(ctx, chatID, 0, 0)
}

// showAdminVehicles lists the fleet with assign-driver entry points.
func (b *Bot) showAdminVehicles(ctx context.Context, chatID int64, page, messageID int) {
	sess := b.requireAdmin(ctx, chatID)
	if sess == nil {
		return
	}

	vehicles, err := b.client.WithAuth(sess.Token).GetVehicles(ctx, 200)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	state := b.states.get(chatID)
	spec := state.spec("admin_vehicles", b.config.Bot.PaginationSize)
	result := view.Derive(vehicles, spec, view.VehicleFields)
	spec = spec.WithPage(page, result.TotalPages)
	state.setSpec("admin_vehicles", spec)
	result = view.Derive(vehicles, spec, view.VehicleFields)

	var content strings.Builder
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, v := range result.PageItems {
		content.WriteString(fmt.Sprintf("%s — %s (%s), %d seats\n", v.VehicleNumber, v.Operator, v.VehicleType, v.Capacity))
		if v.Driver != nil {
			content.WriteString("   driver: " + v.Driver.Username + "\n")
		} else {
			content.WriteString("   no driver assigned\n")
			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("Assign driver to "+v.VehicleNumber, fmt.Sprintf("veh_pick:%d", v.ID)),
			})
		}
	}

	b.renderPaginatedList(paginationParams{
		ChatID:     chatID,
		MessageID:  messageID,
		Page:       spec.Page,
		TotalPages: result.TotalPages,
		Title:      "🚌 Fleet",
		PagePrefix: "adm_veh_page:",
	}, content.String(), keyboard)
}

// handleDriverPick shows the driver roster for a vehicle assignment.
func (b *Bot) handleDriverPick(ctx context.Context, chatID int64, vehicleID int64) {
	sess := b.requireAdmin(ctx, chatID)
	if sess == nil {
		return
	}

	drivers, err := b.client.WithAuth(sess.Token).AdminDrivers(ctx)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if len(drivers) == 0 {
		b.sendMessage(chatID, "No drivers registered yet.")
		return
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, d := range drivers {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(d.Username, fmt.Sprintf("assign:%d:%d", vehicleID, d.ID)),
		})
	}

	msg := tgbotapi.NewMessage(chatID, "Pick a driver:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send driver roster")
	}
}

func (b *Bot) handleAssignDriver(ctx context.Context, chatID int64, vehicleID, driverID int64) {
	sess := b.requireAdmin(ctx, chatID)
	if sess == nil {
		return
	}

	if err := b.client.WithAuth(sess.Token).AssignDriver(ctx, vehicleID, driverID); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, "Driver assigned.")
	b.showAdminVehicles(ctx, chatID, 0, 0)
}

// handleAdminExport writes the bookings spreadsheet and sends it back.
func (b *Bot) handleAdminExport(ctx context.Context, chatID int64) {
	sess := b.requireAdmin(ctx, chatID)
	if sess == nil {
		return
	}

	bookings, err := b.client.WithAuth(sess.Token).GetBookings(ctx, 1000)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	path, err := b.exporter.WriteBookingsExcel(bookings, time.Now())
	if err != nil {
		b.logger.Error().Err(err).Msg("Bookings export failed")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("Bookings export, %d rows", len(bookings))
	if _, err := b.tgService.Send(doc); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send export document")
	}
}

func (b *Bot) startRouteCreate(ctx context.Context, chatID int64) {
	if b.requireAdmin(ctx, chatID) == nil {
		return
	}
	state := b.states.get(chatID)
	state.Mode = modeRouteCreate
	b.sendMessage(chatID, "New route, comma separated:\n\nsource, destination, distance km, duration minutes")
}

func (b *Bot) finishRouteCreate(ctx context.Context, chatID int64, text string, state *chatState) {
	state.Mode = modeNone

	sess := b.requireAdmin(ctx, chatID)
	if sess == nil {
		return
	}

	parts := strings.Split(text, ",")
	if len(parts) != 4 {
		b.sendMessage(chatID, "Expected four values: source, destination, distance km, duration minutes.")
		return
	}
	distance, err1 := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	duration, err2 := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err1 != nil || err2 != nil || distance <= 0 || duration <= 0 {
		b.sendMessage(chatID, "Distance and duration must be positive numbers.")
		return
	}

	route, err := b.client.WithAuth(sess.Token).CreateRoute(ctx, models.Route{
		Source:          strings.TrimSpace(parts[0]),
		Destination:     strings.TrimSpace(parts[1]),
		DistanceKm:      distance,
		DurationMinutes: duration,
	})
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("Route %s → %s created.", route.Source, route.Destination))
}

func (b *Bot) startScheduleCreate(ctx context.Context, chatID int64) {
	if b.requireAdmin(ctx, chatID) == nil {
		return
	}
	state := b.states.get(chatID)
	state.Mode = modeScheduleCreate
	b.sendMessage(chatID, "New schedule, comma separated:\n\nroute id, vehicle id, travel date YYYY-MM-DD, departure HH:MM, arrival HH:MM, fare")
}

func (b *Bot) finishScheduleCreate(ctx context.Context, chatID int64, text string, state *chatState) {
	state.Mode = modeNone

	sess := b.requireAdmin(ctx, chatID)
	if sess == nil {
		return
	}

	parts := strings.Split(text, ",")
	if len(parts) != 6 {
		b.sendMessage(chatID, "Expected six values: route id, vehicle id, date, departure, arrival, fare.")
		return
	}
	routeID, err1 := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	vehicleID, err2 := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	fareValue, err3 := strconv.ParseFloat(strings.TrimSpace(parts[5]), 64)
	if err1 != nil || err2 != nil || err3 != nil || fareValue <= 0 {
		b.sendMessage(chatID, "Route id, vehicle id and fare must be valid numbers.")
		return
	}
	travelDate := strings.TrimSpace(parts[2])
	if _, err := time.Parse("2006-01-02", travelDate); err != nil {
		b.sendMessage(chatID, "Travel date must be YYYY-MM-DD.")
		return
	}

	schedule, err := b.client.WithAuth(sess.Token).CreateSchedule(ctx, models.Schedule{
		Route:         &models.Route{ID: routeID},
		Vehicle:       &models.Vehicle{ID: vehicleID},
		TravelDate:    travelDate,
		DepartureTime: strings.TrimSpace(parts[3]),
		ArrivalTime:   strings.TrimSpace(parts[4]),
		Fare:          fareValue,
	})
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("Schedule #%d created for %s.", schedule.ID, travelDate))
}
