package models

const (
	RolePassenger = "PASSENGER"
	RoleDriver    = "DRIVER"
	RoleAdmin     = "ADMIN"
)

const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
	BookingCompleted = "COMPLETED"
)

const (
	PaymentMethodCard = "card"
	PaymentMethodUPI  = "upi"
	PaymentMethodCash = "cash"
)

const (
	// VehicleAssigned/VehicleAvailable are derived from driver presence,
	// the backend does not send them.
	VehicleAssigned  = "Assigned"
	VehicleAvailable = "Available"
)

const (
	// DefaultDraftTTL is how long an unfinished booking draft survives in
	// the draft store.
	DefaultDraftTTL = 24 * 60 * 60

	// DefaultPageSize is the fallback page size for dashboard lists.
	DefaultPageSize = 8

	// MaxPassengersPerBooking caps a single search/booking.
	MaxPassengersPerBooking = 6

	// RateLimitMessages / RateLimitWindow bound inbound chat traffic.
	RateLimitMessages = 20
	RateLimitWindow   = 60

	// CatalogCacheTTL is the redis TTL for cached catalog GETs.
	CatalogCacheTTL = 5 * 60

	// WorkerQueueSize bounds the local sheets mirror queue.
	WorkerQueueSize = 1000
)
