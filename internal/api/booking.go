package api

import (
	"context"
	"fmt"

	"boardeasy/internal/models"
)

// Booking lifecycle. CreateBooking is the single state-mutating call of the
// wizard; everything before it is read-only.

const (
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"
)

func (c *Client) GetBookings(ctx context.Context, size int) ([]models.Booking, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	return getCollection[models.Booking](ctx, c, "bookings_list", "/api/bookings"+sizeQuery(size))
}

func (c *Client) GetMyBookings(ctx context.Context) ([]models.Booking, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	return getCollection[models.Booking](ctx, c, "bookings_my", "/api/bookings/my-bookings")
}

func (c *Client) GetDriverBookings(ctx context.Context, driverID int64) ([]models.Booking, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	return getCollection[models.Booking](ctx, c, "bookings_driver", fmt.Sprintf("/api/bookings/driver/%d", driverID))
}

func (c *Client) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	var out models.Booking
	if err := c.post(ctx, "booking_create", "/api/bookings/simple", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBookingAction confirms or cancels a booking. Any other action is
// rejected locally before a request is made.
func (c *Client) UpdateBookingAction(ctx context.Context, bookingID int64, action string) (*models.Booking, error) {
	if action != ActionConfirm && action != ActionCancel {
		return nil, fmt.Errorf("%w: %q", ErrBadAction, action)
	}
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	var out models.Booking
	if err := c.put(ctx, "booking_"+action, fmt.Sprintf("/api/bookings/%d/%s", bookingID, action), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) InitiatePayment(ctx context.Context, req models.InitiatePaymentRequest) (*models.Payment, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	var out models.Payment
	if err := c.post(ctx, "payment_initiate", "/api/payments/initiate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPayments(ctx context.Context, size int) ([]models.Payment, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	return getCollection[models.Payment](ctx, c, "payments_list", "/api/payments"+sizeQuery(size))
}

func (c *Client) GetDriverPayments(ctx context.Context, driverID int64) ([]models.Payment, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	return getCollection[models.Payment](ctx, c, "payments_driver", fmt.Sprintf("/api/payments/driver/%d", driverID))
}
