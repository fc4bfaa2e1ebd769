package bot

import (
	"errors"

	"boardeasy/internal/api"
	"boardeasy/internal/flow"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, api.ErrNoSession) || errors.Is(err, api.ErrUnauthorized) {
		return "Your session has expired. Please /login again."
	}

	if errors.Is(err, flow.ErrStaleDraft) {
		return "Your booking session is out of date. Please start over with /search."
	}

	if errors.Is(err, flow.ErrNoSeats) {
		return "Pick at least one seat before continuing."
	}

	if errors.Is(err, flow.ErrTooManySeats) {
		return "You selected more seats than passengers in your search."
	}

	if errors.Is(err, flow.ErrSeatUnavailable) {
		return "That seat is not available on this bus."
	}

	if errors.Is(err, flow.ErrInvalidPassenger) {
		return "Passenger details look wrong: name, age 1-120 and gender are required for each seat."
	}

	if errors.Is(err, flow.ErrInvalidContact) {
		return "A contact phone and email are required."
	}

	if errors.Is(err, flow.ErrInvalidPayment) {
		return "Payment details are incomplete. Card payments need number, holder, expiry and CVV."
	}

	if errors.Is(err, flow.ErrInvalidCoupon) {
		return "Unknown coupon code. Leave it empty or try another one."
	}

	if errors.Is(err, api.ErrBadAction) {
		return "That action is not allowed for this booking."
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return "The booking service rejected the request. Please try again later."
	}

	return "Something went wrong while processing your request. Please try again later."
}
