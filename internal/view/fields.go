package view

import (
	"strconv"

	"boardeasy/internal/models"
)

// Field registries for the entities shown on dashboard screens. These are the
// only fields filtering and sorting ever touch; everything else on the wire
// is opaque to the view engine.

var UserFields = Fields[models.User]{
	"username": {Value: func(u models.User) string { return u.Username }, Searchable: true},
	"email":    {Value: func(u models.User) string { return u.Email }, Searchable: true},
	"role":     {Value: func(u models.User) string { return u.Role }},
	"status": {Value: func(u models.User) string {
		if u.IsActive {
			return "active"
		}
		return "inactive"
	}},
}

var VehicleFields = Fields[models.Vehicle]{
	"vehicleNumber": {Value: func(v models.Vehicle) string { return v.VehicleNumber }, Searchable: true},
	"operator":      {Value: func(v models.Vehicle) string { return v.Operator }, Searchable: true},
	"vehicleType":   {Value: func(v models.Vehicle) string { return v.VehicleType }},
	"capacity":      {Value: func(v models.Vehicle) string { return strconv.Itoa(v.Capacity) }, Numeric: true},
	"status":        {Value: models.Vehicle.Status},
}

var RouteFields = Fields[models.Route]{
	"source":      {Value: func(r models.Route) string { return r.Source }, Searchable: true},
	"destination": {Value: func(r models.Route) string { return r.Destination }, Searchable: true},
	"distanceKm": {
		Value:   func(r models.Route) string { return strconv.FormatFloat(r.DistanceKm, 'f', -1, 64) },
		Numeric: true,
	},
	"durationMinutes": {
		Value:   func(r models.Route) string { return strconv.Itoa(r.DurationMinutes) },
		Numeric: true,
	},
}

var BookingFields = Fields[models.Booking]{
	"pnrNumber":     {Value: func(b models.Booking) string { return b.PNRNumber }, Searchable: true},
	"bookingStatus": {Value: func(b models.Booking) string { return b.BookingStatus }},
	"totalAmount": {
		Value:   func(b models.Booking) string { return strconv.FormatFloat(b.TotalAmount, 'f', 2, 64) },
		Numeric: true,
	},
	"route": {Value: models.Booking.RouteLabel, Searchable: true},
	"username": {Value: func(b models.Booking) string {
		if b.User == nil {
			return ""
		}
		return b.User.Username
	}, Searchable: true},
}
