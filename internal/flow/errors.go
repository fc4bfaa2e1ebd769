package flow

import "errors"

var (
	// ErrStaleDraft means a wizard step was entered without the fields its
	// predecessors should have added (deep link, expired draft, restart).
	// The caller routes the user back to search; nothing is submitted.
	ErrStaleDraft = errors.New("booking draft is missing or out of order")

	// ErrNoSeats rejects submitting the seat step with nothing selected.
	ErrNoSeats = errors.New("no seats selected")

	// ErrTooManySeats rejects picking more seats than passengers searched.
	ErrTooManySeats = errors.New("seat count exceeds passenger count")

	// ErrSeatUnavailable rejects a seat not offered by the search result.
	ErrSeatUnavailable = errors.New("seat not available on this bus")

	// ErrInvalidPassenger covers missing name/gender or age out of [1,120].
	ErrInvalidPassenger = errors.New("invalid passenger details")

	// ErrInvalidContact covers missing phone or email.
	ErrInvalidContact = errors.New("contact phone and email are required")

	// ErrInvalidPayment covers an unknown method or missing card fields.
	ErrInvalidPayment = errors.New("invalid payment details")

	// ErrInvalidCoupon means the code is not in the configured coupon set.
	ErrInvalidCoupon = errors.New("unknown coupon code")
)
