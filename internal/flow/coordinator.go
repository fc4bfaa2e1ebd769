// Package flow coordinates the five-step booking wizard: search results →
// seat selection → passenger details → payment → confirmation. Each step
// validates the accumulated draft, extends it with exactly one field group,
// and hands it forward. The draft is forward-only: going back discards the
// suffix, and the single network write happens at payment submission.
package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"boardeasy/internal/api"
	"boardeasy/internal/domain"
	"boardeasy/internal/events"
	"boardeasy/internal/fare"
	"boardeasy/internal/metrics"
	"boardeasy/internal/models"
	"boardeasy/internal/session"

	"github.com/rs/zerolog"
)

type Coordinator struct {
	drafts     domain.DraftRepository
	client     *api.Client
	bus        domain.EventPublisher
	serviceFee int64
	coupons    map[string]int
	logger     *zerolog.Logger
}

func NewCoordinator(drafts domain.DraftRepository, client *api.Client, bus domain.EventPublisher, serviceFee int64, coupons map[string]int, logger *zerolog.Logger) *Coordinator {
	return &Coordinator{
		drafts:     drafts,
		client:     client,
		bus:        bus,
		serviceFee: serviceFee,
		coupons:    coupons,
		logger:     logger,
	}
}

// Draft returns the chat's current draft, nil when none exists.
func (c *Coordinator) Draft(ctx context.Context, chatID int64) (*models.Draft, error) {
	return c.drafts.GetDraft(ctx, chatID)
}

// Require loads the draft and checks that every field group a step depends
// on is present. Entering a step out of order yields ErrStaleDraft.
func (c *Coordinator) Require(ctx context.Context, chatID int64, step string) (*models.Draft, error) {
	draft, err := c.drafts.GetDraft(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrStaleDraft
	}

	ok := false
	switch step {
	case models.StepSearchResults:
		ok = true
	case models.StepSeatSelection:
		ok = draft.HasSearch()
	case models.StepPassengerDetails:
		ok = draft.HasSeats()
	case models.StepPayment:
		ok = draft.HasPassengers()
	case models.StepConfirmation:
		ok = draft.HasPayment()
	}
	if !ok {
		return nil, ErrStaleDraft
	}
	return draft, nil
}

// StartSelection begins the wizard after the user picks a bus from search
// results. Any previous draft for the chat is replaced.
func (c *Coordinator) StartSelection(ctx context.Context, chatID int64, bus models.BusResult, search models.SearchRequest) (*models.Draft, error) {
	if search.Passengers < 1 {
		search.Passengers = 1
	}
	if search.Passengers > models.MaxPassengersPerBooking {
		search.Passengers = models.MaxPassengersPerBooking
	}

	draft := &models.Draft{
		ChatID:        chatID,
		Step:          models.StepSeatSelection,
		Bus:           &bus,
		SearchData:    &search,
		SelectedSeats: []string{},
	}
	if err := c.drafts.SetDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// ToggleSeat adds or removes one seat. Picks beyond the searched passenger
// count are rejected rather than silently dropped.
func (c *Coordinator) ToggleSeat(ctx context.Context, chatID int64, seat string) (*models.Draft, error) {
	draft, err := c.Require(ctx, chatID, models.StepSeatSelection)
	if err != nil {
		return nil, err
	}

	for i, s := range draft.SelectedSeats {
		if s == seat {
			draft.SelectedSeats = append(draft.SelectedSeats[:i], draft.SelectedSeats[i+1:]...)
			return draft, c.drafts.SetDraft(ctx, draft)
		}
	}

	if !seatOffered(draft.Bus, seat) {
		return nil, ErrSeatUnavailable
	}
	if len(draft.SelectedSeats) >= draft.SearchData.Passengers {
		return nil, ErrTooManySeats
	}

	draft.SelectedSeats = append(draft.SelectedSeats, seat)
	return draft, c.drafts.SetDraft(ctx, draft)
}

func seatOffered(bus *models.BusResult, seat string) bool {
	for _, s := range bus.AvailableSeats {
		if s == seat {
			return true
		}
	}
	return false
}

// ConfirmSeats moves to passenger details. Requires 1..passengers seats.
func (c *Coordinator) ConfirmSeats(ctx context.Context, chatID int64) (*models.Draft, error) {
	draft, err := c.Require(ctx, chatID, models.StepSeatSelection)
	if err != nil {
		return nil, err
	}
	if len(draft.SelectedSeats) == 0 {
		return nil, ErrNoSeats
	}
	if len(draft.SelectedSeats) > draft.SearchData.Passengers {
		return nil, ErrTooManySeats
	}

	draft.Step = models.StepPassengerDetails
	return draft, c.drafts.SetDraft(ctx, draft)
}

// SetPassengers records one passenger per selected seat plus the booking's
// contact details, then moves to payment.
func (c *Coordinator) SetPassengers(ctx context.Context, chatID int64, passengers []models.Passenger, contact models.ContactDetails) (*models.Draft, error) {
	draft, err := c.Require(ctx, chatID, models.StepPassengerDetails)
	if err != nil {
		return nil, err
	}

	if len(passengers) != len(draft.SelectedSeats) {
		return nil, fmt.Errorf("%w: got %d passengers for %d seats",
			ErrInvalidPassenger, len(passengers), len(draft.SelectedSeats))
	}
	for i := range passengers {
		if err := validatePassenger(passengers[i]); err != nil {
			return nil, err
		}
		passengers[i].SeatNumber = draft.SelectedSeats[i]
	}
	if strings.TrimSpace(contact.Phone) == "" || strings.TrimSpace(contact.Email) == "" {
		return nil, ErrInvalidContact
	}

	draft.Passengers = passengers
	draft.ContactDetails = &contact
	draft.Step = models.StepPayment
	return draft, c.drafts.SetDraft(ctx, draft)
}

func validatePassenger(p models.Passenger) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPassenger)
	}
	if p.Age < 1 || p.Age > 120 {
		return fmt.Errorf("%w: age must be between 1 and 120", ErrInvalidPassenger)
	}
	if strings.TrimSpace(p.Gender) == "" {
		return fmt.Errorf("%w: gender is required", ErrInvalidPassenger)
	}
	return nil
}

// Quote prices the draft: base is fare-per-seat times seats, tax and service
// fee on top, coupon discount off. Coupons are validated against the fixed
// configured set; an unknown code is an error, not a silent zero discount.
func (c *Coordinator) Quote(draft *models.Draft, couponCode string) (fare.Breakdown, error) {
	base := fare.FromRupees(draft.Bus.FarePerSeat) * int64(len(draft.SelectedSeats))

	discount := 0
	if code := strings.ToUpper(strings.TrimSpace(couponCode)); code != "" {
		pct, ok := c.coupons[code]
		if !ok {
			return fare.Breakdown{}, ErrInvalidCoupon
		}
		discount = pct
	}

	return fare.Quote(base, c.serviceFee, discount), nil
}

// Submit is the one state-mutating step of the wizard: validates payment
// fields, computes the final amount, performs exactly one booking write, and
// destroys the draft on success.
func (c *Coordinator) Submit(ctx context.Context, sess *session.Context, payment models.PaymentDetails) (*models.Booking, error) {
	draft, err := c.Require(ctx, sess.ChatID, models.StepPayment)
	if err != nil {
		return nil, err
	}

	if err := validatePayment(payment); err != nil {
		return nil, err
	}

	quote, err := c.Quote(draft, payment.CouponCode)
	if err != nil {
		return nil, err
	}
	payment.BaseAmount = quote.Base
	payment.TaxAmount = quote.Tax
	payment.ServiceFee = quote.ServiceFee
	payment.DiscountAmount = quote.Discount
	payment.FinalAmount = quote.Final

	booking, err := c.client.WithAuth(sess.Token).CreateBooking(ctx, models.CreateBookingRequest{
		ScheduleID:     draft.Bus.ScheduleID,
		SeatNumbers:    draft.SelectedSeats,
		Passengers:     draft.Passengers,
		ContactDetails: *draft.ContactDetails,
		TotalAmount:    fare.Rupees(quote.Final),
	})
	if err != nil {
		metrics.IncBooking("error")
		return nil, err
	}
	metrics.IncBooking("ok")

	draft.PaymentDetails = &payment
	draft.PNR = booking.PNRNumber
	draft.Step = models.StepConfirmation

	c.publishBooking(events.EventBookingCreated, sess, booking)

	// Flow complete: the draft is destroyed, the booking lives on the backend.
	if err := c.drafts.ClearDraft(ctx, sess.ChatID); err != nil {
		c.logger.Warn().Err(err).Int64("chat_id", sess.ChatID).Msg("clear draft after submit")
	}
	return booking, nil
}

func validatePayment(p models.PaymentDetails) error {
	switch p.Method {
	case models.PaymentMethodCard:
		if strings.TrimSpace(p.CardNumber) == "" ||
			strings.TrimSpace(p.CardHolder) == "" ||
			strings.TrimSpace(p.CardExpiry) == "" ||
			strings.TrimSpace(p.CardCVV) == "" {
			return fmt.Errorf("%w: all card fields are required", ErrInvalidPayment)
		}
		return nil
	case models.PaymentMethodUPI, models.PaymentMethodCash:
		return nil
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalidPayment, p.Method)
	}
}

// Back returns to an earlier step, discarding every field group added after
// it. The draft never mutates backward in place.
func (c *Coordinator) Back(ctx context.Context, chatID int64, toStep string) (*models.Draft, error) {
	draft, err := c.drafts.GetDraft(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrStaleDraft
	}

	target := models.StepIndex(toStep)
	current := models.StepIndex(draft.Step)
	if target < 0 || (current >= 0 && target > current) {
		return nil, fmt.Errorf("%w: cannot go forward via Back", ErrStaleDraft)
	}

	if target < models.StepIndex(models.StepConfirmation) {
		draft.PaymentDetails = nil
		draft.PNR = ""
	}
	if target < models.StepIndex(models.StepPayment) {
		draft.Passengers = nil
		draft.ContactDetails = nil
	}
	if target < models.StepIndex(models.StepPassengerDetails) {
		draft.SelectedSeats = []string{}
	}
	if target < models.StepIndex(models.StepSeatSelection) {
		// Back to search: the draft is abandoned entirely.
		if err := c.drafts.ClearDraft(ctx, chatID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	draft.Step = toStep
	return draft, c.drafts.SetDraft(ctx, draft)
}

// Abandon drops the chat's draft (user navigated away; no resume).
func (c *Coordinator) Abandon(ctx context.Context, chatID int64) error {
	return c.drafts.ClearDraft(ctx, chatID)
}

// PayBooking initiates payment for an existing booking from the bookings
// list. This is the optional follow-up write after submission.
func (c *Coordinator) PayBooking(ctx context.Context, sess *session.Context, booking *models.Booking, method string) (*models.Payment, error) {
	payment, err := c.client.WithAuth(sess.Token).InitiatePayment(ctx, models.InitiatePaymentRequest{
		BookingID: booking.ID,
		Amount:    booking.TotalAmount,
		Method:    method,
	})
	if err != nil {
		return nil, err
	}
	c.publishBooking(events.EventPaymentInitiated, sess, booking)
	return payment, nil
}

func (c *Coordinator) publishBooking(eventType string, sess *session.Context, booking *models.Booking) {
	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		PNR:         booking.PNRNumber,
		ChatID:      sess.ChatID,
		Username:    sess.User.Username,
		Route:       booking.RouteLabel(),
		Seats:       booking.SeatNumbers,
		Status:      booking.BookingStatus,
		TotalAmount: booking.TotalAmount,
		OccurredAt:  time.Now(),
	}
	if err := c.bus.PublishJSON(eventType, payload); err != nil {
		c.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event")
	}
}
