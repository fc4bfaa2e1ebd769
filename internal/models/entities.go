package models

import "time"

// User is an account as the backend returns it. Role is one of the Role*
// constants; drivers additionally appear as Vehicle.Driver back-references.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phoneNumber,omitempty"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

// Vehicle is one bus in the fleet. Driver is nil until an admin assigns one.
type Vehicle struct {
	ID            int64  `json:"id"`
	VehicleNumber string `json:"vehicleNumber"`
	Operator      string `json:"operator"`
	VehicleType   string `json:"vehicleType"`
	Capacity      int    `json:"capacity"`
	Driver        *User  `json:"driver,omitempty"`
}

// Status derives the admin-facing assignment state from driver presence.
func (v Vehicle) Status() string {
	if v.Driver != nil {
		return VehicleAssigned
	}
	return VehicleAvailable
}

type Route struct {
	ID              int64   `json:"id"`
	Source          string  `json:"source"`
	Destination     string  `json:"destination"`
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes int     `json:"durationMinutes"`
}

// Schedule is one trip instance of a vehicle on a route.
type Schedule struct {
	ID            int64    `json:"id"`
	Route         *Route   `json:"route,omitempty"`
	Vehicle       *Vehicle `json:"vehicle,omitempty"`
	DepartureTime string   `json:"departureTime"`
	ArrivalTime   string   `json:"arrivalTime"`
	TravelDate    string   `json:"travelDate"`
	Fare          float64  `json:"fare"`
}

type Booking struct {
	ID            int64     `json:"id"`
	PNRNumber     string    `json:"pnrNumber"`
	BookingStatus string    `json:"bookingStatus"`
	TotalAmount   float64   `json:"totalAmount"`
	SeatNumbers   []string  `json:"seatNumbers,omitempty"`
	Schedule      *Schedule `json:"schedule,omitempty"`
	User          *User     `json:"user,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// RouteLabel renders "source → destination" for lists and tickets.
func (b Booking) RouteLabel() string {
	if b.Schedule == nil || b.Schedule.Route == nil {
		return ""
	}
	return b.Schedule.Route.Source + " → " + b.Schedule.Route.Destination
}

type Payment struct {
	ID            int64   `json:"id"`
	BookingID     int64   `json:"bookingId"`
	Amount        float64 `json:"amount"`
	PaymentStatus string  `json:"paymentStatus"`
	Method        string  `json:"paymentMethod,omitempty"`
	TransactionID string  `json:"transactionId,omitempty"`
}

// SearchRequest is the body of POST /api/bus-search/search.
type SearchRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	TravelDate  string `json:"travelDate"`
	Passengers  int    `json:"passengers"`
}

// BusResult is one search hit: a bookable trip with live seat info.
type BusResult struct {
	ScheduleID     int64    `json:"scheduleId"`
	Operator       string   `json:"operator"`
	VehicleNumber  string   `json:"vehicleNumber"`
	VehicleType    string   `json:"vehicleType"`
	Source         string   `json:"source"`
	Destination    string   `json:"destination"`
	DepartureTime  string   `json:"departureTime"`
	ArrivalTime    string   `json:"arrivalTime"`
	FarePerSeat    float64  `json:"farePerSeat"`
	AvailableSeats []string `json:"availableSeats"`
}

type Passenger struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	SeatNumber string `json:"seatNumber"`
}

type ContactDetails struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// PaymentDetails is assembled at the payment step. Card fields are only
// required when Method == PaymentMethodCard. Amounts are in paise.
type PaymentDetails struct {
	Method         string `json:"method"`
	CardNumber     string `json:"cardNumber,omitempty"`
	CardHolder     string `json:"cardHolder,omitempty"`
	CardExpiry     string `json:"cardExpiry,omitempty"`
	CardCVV        string `json:"cardCvv,omitempty"`
	CouponCode     string `json:"couponCode,omitempty"`
	BaseAmount     int64  `json:"baseAmount"`
	TaxAmount      int64  `json:"taxAmount"`
	ServiceFee     int64  `json:"serviceFee"`
	DiscountAmount int64  `json:"discountAmount"`
	FinalAmount    int64  `json:"finalAmount"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phoneNumber"`
	Role     string `json:"role"`
}

// ProfileUpdate is the body of PUT /api/users/profile.
type ProfileUpdate struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phoneNumber,omitempty"`
}

// CreateBookingRequest is the body of POST /api/bookings/simple.
type CreateBookingRequest struct {
	ScheduleID  int64       `json:"scheduleId"`
	SeatNumbers []string    `json:"seatNumbers"`
	Passengers  []Passenger `json:"passengers"`
	ContactDetails
	TotalAmount float64 `json:"totalAmount"`
}

// InitiatePaymentRequest is the body of POST /api/payments/initiate.
type InitiatePaymentRequest struct {
	BookingID int64   `json:"bookingId"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"paymentMethod"`
}
