package bot

import (
	"context"
	"fmt"
	"strings"

	"boardeasy/internal/dashboard"
	"boardeasy/internal/models"
	"boardeasy/internal/session"
	"boardeasy/internal/ticket"
	"boardeasy/internal/view"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// showRoutes renders the public route catalog: popularity order first, then
// whatever sort the chat toggled.
func (b *Bot) showRoutes(ctx context.Context, chatID int64, page, messageID int) {
	routes, err := b.client.GetRoutes(ctx, 200)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	// Popularity needs booking counts; available only to a logged-in admin.
	var bookings []models.Booking
	if sess := b.session(ctx, chatID); sess != nil && sess.IsAdmin() {
		if all, err := b.client.WithAuth(sess.Token).GetBookings(ctx, 500); err == nil {
			bookings = all
		}
	}
	routes = dashboard.PopularRoutes(routes, bookings)

	state := b.states.get(chatID)
	spec := state.spec("routes", b.config.Bot.PaginationSize)
	result := view.Derive(routes, spec, view.RouteFields)
	spec = spec.WithPage(page, result.TotalPages)
	state.setSpec("routes", spec)
	result = view.Derive(routes, spec, view.RouteFields)

	var content strings.Builder
	for i, r := range result.PageItems {
		content.WriteString(fmt.Sprintf("%d. %s → %s\n", spec.Page*spec.Size+i+1, r.Source, r.Destination))
		content.WriteString(fmt.Sprintf("   %.0f km, about %s\n\n", r.DistanceKm, durationLabel(r.DurationMinutes)))
	}
	if result.TotalElements == 0 {
		content.WriteString("No routes yet.")
	}

	keyboard := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("Sort by distance", "routes_sort:distanceKm"),
			tgbotapi.NewInlineKeyboardButtonData("Sort by duration", "routes_sort:durationMinutes"),
		},
	}

	b.renderPaginatedList(paginationParams{
		ChatID:     chatID,
		MessageID:  messageID,
		Page:       spec.Page,
		TotalPages: result.TotalPages,
		Title:      "🚌 Routes",
		PagePrefix: "routes_page:",
	}, content.String(), keyboard)
}

func durationLabel(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// showMyBookings lists the passenger's bookings with per-booking actions.
func (b *Bot) showMyBookings(ctx context.Context, chatID int64, page, messageID int) {
	sess := b.requireSession(ctx, chatID)
	if sess == nil {
		return
	}

	bookings, err := b.client.WithAuth(sess.Token).GetMyBookings(ctx)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	state := b.states.get(chatID)
	state.Bookings = bookings

	spec := state.spec("bookings", b.config.Bot.PaginationSize)
	result := view.Derive(bookings, spec, view.BookingFields)
	spec = spec.WithPage(page, result.TotalPages)
	state.setSpec("bookings", spec)
	result = view.Derive(bookings, spec, view.BookingFields)

	if result.TotalElements == 0 {
		b.sendMessage(chatID, "No bookings yet. Find a bus with /search.")
		return
	}

	var content strings.Builder
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, bk := range result.PageItems {
		content.WriteString(fmt.Sprintf("%s %s\n", statusEmoji(bk.BookingStatus), bk.PNRNumber))
		content.WriteString(fmt.Sprintf("   %s", bk.RouteLabel()))
		if bk.Schedule != nil {
			content.WriteString(" on " + bk.Schedule.TravelDate)
		}
		content.WriteString(fmt.Sprintf("\n   Seats %s, ₹%.2f, %s\n\n",
			seatsLabel(bk.SeatNumbers), bk.TotalAmount, strings.ToLower(bk.BookingStatus)))

		var row []tgbotapi.InlineKeyboardButton
		if bk.BookingStatus == models.BookingPending {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("💳 Pay "+bk.PNRNumber, fmt.Sprintf("bk_pay:%d", bk.ID)))
		}
		if bk.BookingStatus == models.BookingPending || bk.BookingStatus == models.BookingConfirmed {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel "+bk.PNRNumber, fmt.Sprintf("bk_cancel:%d", bk.ID)))
		}
		if bk.BookingStatus == models.BookingConfirmed || bk.BookingStatus == models.BookingCompleted {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("🎫 Ticket "+bk.PNRNumber, fmt.Sprintf("bk_dl:%d", bk.ID)))
		}
		if len(row) > 0 {
			keyboard = append(keyboard, row)
		}
	}

	b.renderPaginatedList(paginationParams{
		ChatID:     chatID,
		MessageID:  messageID,
		Page:       spec.Page,
		TotalPages: result.TotalPages,
		Title:      "🧾 Your bookings",
		PagePrefix: "mybk_page:",
	}, content.String(), keyboard)
}

func statusEmoji(status string) string {
	switch status {
	case models.BookingConfirmed:
		return "✅"
	case models.BookingCancelled:
		return "❌"
	case models.BookingCompleted:
		return "🏁"
	default:
		return "⏳"
	}
}

func (b *Bot) findBooking(state *chatState, id int64) *models.Booking {
	for i := range state.Bookings {
		if state.Bookings[i].ID == id {
			return &state.Bookings[i]
		}
	}
	return nil
}

func (b *Bot) handlePayBooking(ctx context.Context, chatID int64, bookingID int64) {
	sess := b.requireSession(ctx, chatID)
	if sess == nil {
		return
	}
	booking := b.findBooking(b.states.get(chatID), bookingID)
	if booking == nil {
		b.sendMessage(chatID, "That list has expired, run /bookings again.")
		return
	}

	payment, err := b.flow.PayBooking(ctx, sess, booking, models.PaymentMethodUPI)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("Payment initiated for %s (₹%.2f), transaction %s.",
		booking.PNRNumber, payment.Amount, payment.TransactionID))
}

func (b *Bot) handleCancelBooking(ctx context.Context, chatID int64, bookingID int64) {
	sess := b.requireSession(ctx, chatID)
	if sess == nil {
		return
	}

	if _, err := b.client.WithAuth(sess.Token).UpdateBookingAction(ctx, bookingID, "cancel"); err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.sendMessage(chatID, "Booking cancelled.")
	b.showMyBookings(ctx, chatID, 0, 0)
}

func (b *Bot) handleDownloadTicket(ctx context.Context, chatID int64, bookingID int64) {
	if b.requireSession(ctx, chatID) == nil {
		return
	}
	booking := b.findBooking(b.states.get(chatID), bookingID)
	if booking == nil {
		b.sendMessage(chatID, "That list has expired, run /bookings again.")
		return
	}
	b.sendTicket(ctx, chatID, booking)
}

// sendTicket renders the ticket PDF and sends it as a document, falling back
// to plain text if the PDF cannot be built.
func (b *Bot) sendTicket(ctx context.Context, chatID int64, booking *models.Booking) {
	data := ticket.FromBooking(booking)

	path, err := b.exporter.WritePDF(data)
	if err != nil {
		b.logger.Warn().Err(err).Str("pnr", booking.PNRNumber).Msg("PDF ticket failed, using text fallback")
		path, err = b.exporter.WriteText(data)
		if err != nil {
			b.sendMessage(chatID, b.getErrorMessage(err))
			return
		}
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = "Your ticket, PNR " + booking.PNRNumber
	if _, err := b.tgService.Send(doc); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send ticket document")
	}
}

// showDashboard dispatches on the stored role.
func (b *Bot) showDashboard(ctx context.Context, chatID int64) {
	sess := b.requireSession(ctx, chatID)
	if sess == nil {
		return
	}

	switch {
	case sess.IsAdmin():
		b.showAdminDashboard(ctx, chatID, sess)
	case sess.IsDriver():
		b.showDriverDashboard(ctx, chatID, sess)
	default:
		b.showPassengerDashboard(ctx, chatID, sess)
	}
}

func (b *Bot) showPassengerDashboard(ctx context.Context, chatID int64, sess *session.Context) {
	data := b.loader.LoadPassenger(ctx, sess)

	var sb strings.Builder
	sb.WriteString("👤 " + sess.User.Username + "\n")
	sb.WriteString(sess.User.Email + "\n\n")

	upcoming, past := 0, 0
	for _, bk := range data.Bookings {
		if bk.BookingStatus == models.BookingCompleted || bk.BookingStatus == models.BookingCancelled {
			past++
		} else {
			upcoming++
		}
	}
	sb.WriteString(fmt.Sprintf("Bookings: %d active, %d past\n\n", upcoming, past))
	sb.WriteString("See them with /bookings. Update contact details with /profile, password with /password.")

	b.sendMessage(chatID, sb.String())
}

func (b *Bot) showDriverDashboard(ctx context.Context, chatID int64, sess *session.Context) {
	data := b.loader.LoadDriver(ctx, sess)

	var sb strings.Builder
	sb.WriteString("🚌 Driver dashboard — " + sess.User.Username + "\n\n")

	if len(data.Vehicles) == 0 {
		sb.WriteString("No vehicle assigned to you yet.\n")
	}
	for _, v := range data.Vehicles {
		sb.WriteString(fmt.Sprintf("Vehicle %s (%s), %d seats\n", v.VehicleNumber, v.VehicleType, v.Capacity))
	}

	sb.WriteString(fmt.Sprintf("\nBookings on your trips: %d\n", len(data.Bookings)))
	var collected float64
	for _, p := range data.Payments {
		collected += p.Amount
	}
	sb.WriteString(fmt.Sprintf("Payments collected: ₹%.2f", collected))

	b.sendMessage(chatID, sb.String())
}

func (b *Bot) showAdminDashboard(ctx context.Context, chatID int64, sess *session.Context) {
	data := b.loader.LoadAdmin(ctx, sess)

	var sb strings.Builder
	sb.WriteString("🛠 Admin dashboard\n\n")
	sb.WriteString(fmt.Sprintf("Users: %d (%d drivers)\n", len(data.Users), len(data.Drivers)))
	sb.WriteString(fmt.Sprintf("Vehicles: %d\nRoutes: %d\nSchedules: %d\n", len(data.Vehicles), len(data.Routes), len(data.Schedules)))
	sb.WriteString(fmt.Sprintf("Bookings: %d\n", len(data.Bookings)))

	popular := dashboard.PopularRoutes(data.Routes, data.Bookings)
	if len(popular) > 0 {
		sb.WriteString("\nTop routes:\n")
		for i, r := range popular {
			if i == 3 {
				break
			}
			sb.WriteString(fmt.Sprintf("  %d. %s → %s\n", i+1, r.Source, r.Destination))
		}
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Users", "adm:users:0"),
			tgbotapi.NewInlineKeyboardButtonData("🚌 Vehicles", "adm:vehicles:0"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧾 Bookings", "adm:bookings"),
			tgbotapi.NewInlineKeyboardButtonData("📊 Export", "adm:export"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Route", "adm:new_route"),
			tgbotapi.NewInlineKeyboardButtonData("➕ Schedule", "adm:new_schedule"),
		),
	)
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send admin dashboard")
	}
}
