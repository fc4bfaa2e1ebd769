package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"boardeasy/internal/fare"
	"boardeasy/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) startSearch(ctx context.Context, chatID int64) {
	if b.requireSession(ctx, chatID) == nil {
		return
	}
	state := b.states.get(chatID)
	state.Search = models.SearchRequest{}
	state.Results = nil
	state.Mode = modeSearchSource
	b.sendMessage(chatID, "Where from? (source city)")
}

func (b *Bot) runSearch(ctx context.Context, chatID int64, state *chatState) {
	results, err := b.client.SearchBuses(ctx, state.Search)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if len(results) == 0 {
		b.sendMessage(chatID, fmt.Sprintf("No buses found from %s to %s on %s. Try another date with /search.",
			state.Search.Source, state.Search.Destination, state.Search.TravelDate))
		return
	}

	state.Results = results
	b.renderSearchResults(chatID, state)
}

func (b *Bot) renderSearchResults(chatID int64, state *chatState) {
	var content strings.Builder
	var keyboard [][]tgbotapi.InlineKeyboardButton

	for i, r := range state.Results {
		content.WriteString(fmt.Sprintf("%d. %s (%s) %s\n", i+1, r.Operator, r.VehicleType, r.VehicleNumber))
		content.WriteString(fmt.Sprintf("   %s → %s, departs %s\n", r.Source, r.Destination, r.DepartureTime))
		content.WriteString(fmt.Sprintf("   ₹%.2f per seat, %d seats left\n\n", r.FarePerSeat, len(r.AvailableSeats)))

		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d. %s, ₹%.2f", i+1, r.Operator, r.FarePerSeat),
				fmt.Sprintf("book:%d", r.ScheduleID),
			),
		})
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Buses on %s:\n\n%s", state.Search.TravelDate, content.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send search results")
	}
}

// handleBusSelected starts the draft for the tapped result.
func (b *Bot) handleBusSelected(ctx context.Context, chatID int64, scheduleID int64) {
	state := b.states.get(chatID)

	var selected *models.BusResult
	for i := range state.Results {
		if state.Results[i].ScheduleID == scheduleID {
			selected = &state.Results[i]
			break
		}
	}
	if selected == nil {
		b.sendMessage(chatID, "That search has expired. Please run /search again.")
		return
	}

	draft, err := b.flow.StartSelection(ctx, chatID, *selected, state.Search)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	b.renderSeatSelection(chatID, draft, 0)
}

// renderSeatSelection draws the seat keyboard: selected seats get a check
// mark, tapping toggles.
func (b *Bot) renderSeatSelection(chatID int64, draft *models.Draft, messageID int) {
	selected := make(map[string]bool, len(draft.SelectedSeats))
	for _, s := range draft.SelectedSeats {
		selected[s] = true
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, seat := range draft.Bus.AvailableSeats {
		label := seat
		if selected[seat] {
			label = "✅ " + seat
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "seat:"+seat))
		if len(row) == 4 {
			keyboard = append(keyboard, row)
			row = nil
		}
	}
	if len(row) > 0 {
		keyboard = append(keyboard, row)
	}
	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Done ✔️", "seats_done"),
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back to results", "back:"+models.StepSearchResults),
	})

	text := fmt.Sprintf("Pick up to %d seat(s) on %s (%s → %s).\nSelected: %s",
		draft.SearchData.Passengers, draft.Bus.Operator,
		draft.Bus.Source, draft.Bus.Destination,
		seatsLabel(draft.SelectedSeats))

	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	if messageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
		if _, err := b.tgService.Send(edit); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to edit seat keyboard")
		}
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send seat keyboard")
	}
}

func seatsLabel(seats []string) string {
	if len(seats) == 0 {
		return "none"
	}
	return strings.Join(seats, ", ")
}

func (b *Bot) handleSeatsDone(ctx context.Context, chatID int64) {
	draft, err := b.flow.ConfirmSeats(ctx, chatID)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	state := b.states.get(chatID)
	state.Mode = modePassengerEntry
	b.sendMessage(chatID, fmt.Sprintf(
		"Seats %s locked in. Now send one line per passenger:\n\nName, Age, Gender\n\nand a final line with contact details:\n\nphone, email\n\n(%d passenger line(s) expected)",
		seatsLabel(draft.SelectedSeats), len(draft.SelectedSeats)))
}

// handlePassengerEntry parses the multi-line passenger + contact message.
func (b *Bot) handlePassengerEntry(ctx context.Context, chatID int64, text string, state *chatState) {
	passengers, contact, err := parsePassengerBlock(text)
	if err != nil {
		b.sendMessage(chatID, err.Error()+" Please resend the whole block.")
		return
	}

	state.Mode = modeNone
	if _, err := b.flow.SetPassengers(ctx, chatID, passengers, contact); err != nil {
		state.Mode = modePassengerEntry
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.renderPaymentMethods(chatID)
}

// parsePassengerBlock splits "Name, Age, Gender" lines with a trailing
// "phone, email" contact line.
func parsePassengerBlock(text string) ([]models.Passenger, models.ContactDetails, error) {
	var contact models.ContactDetails

	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, contact, fmt.Errorf("expected passenger lines plus a contact line.")
	}

	contactParts := strings.SplitN(lines[len(lines)-1], ",", 2)
	if len(contactParts) != 2 {
		return nil, contact, fmt.Errorf("the last line must be: phone, email.")
	}
	contact.Phone = strings.TrimSpace(contactParts[0])
	contact.Email = strings.TrimSpace(contactParts[1])

	var passengers []models.Passenger
	for _, line := range lines[:len(lines)-1] {
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			return nil, contact, fmt.Errorf("each passenger line must be: Name, Age, Gender.")
		}
		age, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, contact, fmt.Errorf("age must be a number.")
		}
		passengers = append(passengers, models.Passenger{
			Name:   strings.TrimSpace(parts[0]),
			Age:    age,
			Gender: strings.ToLower(strings.TrimSpace(parts[2])),
		})
	}
	return passengers, contact, nil
}

func (b *Bot) renderPaymentMethods(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "How would you like to pay?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("UPI", "pay:"+models.PaymentMethodUPI),
			tgbotapi.NewInlineKeyboardButtonData("Card", "pay:"+models.PaymentMethodCard),
			tgbotapi.NewInlineKeyboardButtonData("Cash", "pay:"+models.PaymentMethodCash),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back to passengers", "back:"+models.StepPassengerDetails),
		),
	)
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send payment methods")
	}
}

func (b *Bot) handlePaymentMethod(ctx context.Context, chatID int64, method string) {
	state := b.states.get(chatID)
	state.Method = method
	state.Coupon = ""

	if method == models.PaymentMethodCard {
		state.Mode = modeCardEntry
		b.sendMessage(chatID, "Card details, comma separated:\n\nnumber, holder name, MM/YY, CVV")
		return
	}
	b.askCoupon(chatID, state)
}

func (b *Bot) handleCardEntry(ctx context.Context, chatID int64, text string, state *chatState) {
	parts := strings.Split(text, ",")
	if len(parts) != 4 {
		b.sendMessage(chatID, "Expected four values: number, holder name, MM/YY, CVV.")
		return
	}
	state.Mode = modeNone
	state.Card = models.PaymentDetails{
		Method:     models.PaymentMethodCard,
		CardNumber: strings.TrimSpace(parts[0]),
		CardHolder: strings.TrimSpace(parts[1]),
		CardExpiry: strings.TrimSpace(parts[2]),
		CardCVV:    strings.TrimSpace(parts[3]),
	}
	b.askCoupon(chatID, state)
}

func (b *Bot) askCoupon(chatID int64, state *chatState) {
	state.Mode = modeCouponEntry
	b.sendMessage(chatID, "Coupon code? Send it now, or \"-\" for none.")
}

func (b *Bot) handleCouponEntry(ctx context.Context, chatID int64, text string, state *chatState) {
	state.Mode = modeNone
	if text != "-" {
		state.Coupon = strings.TrimSpace(text)
	}

	draft, err := b.flow.Require(ctx, chatID, models.StepPayment)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	quote, err := b.flow.Quote(draft, state.Coupon)
	if err != nil {
		state.Coupon = ""
		b.askCoupon(chatID, state)
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	b.renderQuote(chatID, draft, quote)
}

func (b *Bot) renderQuote(chatID int64, draft *models.Draft, quote fare.Breakdown) {
	var sb strings.Builder
	sb.WriteString("Order summary\n\n")
	sb.WriteString(fmt.Sprintf("%s → %s on %s\n", draft.Bus.Source, draft.Bus.Destination, draft.SearchData.TravelDate))
	sb.WriteString(fmt.Sprintf("Seats: %s\n\n", seatsLabel(draft.SelectedSeats)))
	sb.WriteString(fmt.Sprintf("Base fare:    ₹%s\n", fare.Format(quote.Base)))
	sb.WriteString(fmt.Sprintf("Tax (5%%):     ₹%s\n", fare.Format(quote.Tax)))
	sb.WriteString(fmt.Sprintf("Service fee:  ₹%s\n", fare.Format(quote.ServiceFee)))
	if quote.Discount > 0 {
		sb.WriteString(fmt.Sprintf("Discount:    -₹%s\n", fare.Format(quote.Discount)))
	}
	sb.WriteString(fmt.Sprintf("\nTotal:        ₹%s", fare.Format(quote.Final)))

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Confirm and book ✔️", "confirm_booking"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Change payment", "back:"+models.StepPayment),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Abandon", "abandon"),
		),
	)
	if _, err := b.tgService.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send quote")
	}
}

func (b *Bot) handleConfirmBooking(ctx context.Context, chatID int64) {
	sess := b.requireSession(ctx, chatID)
	if sess == nil {
		return
	}
	state := b.states.get(chatID)

	payment := state.Card
	payment.Method = state.Method
	payment.CouponCode = state.Coupon
	if payment.Method == "" {
		payment.Method = models.PaymentMethodUPI
	}

	booking, err := b.flow.Submit(ctx, sess, payment)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	state.Card = models.PaymentDetails{}
	state.Method = ""
	state.Coupon = ""

	b.sendMessage(chatID, fmt.Sprintf(
		"Booking confirmed! 🎉\nPNR: %s\nSeats: %s\nTotal: ₹%.2f\n\nFind it any time under /bookings.",
		booking.PNRNumber, seatsLabel(booking.SeatNumbers), booking.TotalAmount))

	b.sendTicket(ctx, chatID, booking)
}

// handleBack rewinds the wizard to an earlier step.
func (b *Bot) handleBack(ctx context.Context, chatID int64, toStep string) {
	draft, err := b.flow.Back(ctx, chatID, toStep)
	if err != nil {
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}
	if draft == nil {
		b.sendMessage(chatID, "Back to square one. Run /search to find a bus.")
		return
	}

	switch toStep {
	case models.StepSeatSelection:
		b.renderSeatSelection(chatID, draft, 0)
	case models.StepPassengerDetails:
		state := b.states.get(chatID)
		state.Mode = modePassengerEntry
		b.sendMessage(chatID, "Resend the passenger block: one \"Name, Age, Gender\" line per seat, then \"phone, email\".")
	case models.StepPayment:
		b.renderPaymentMethods(chatID)
	}
}
