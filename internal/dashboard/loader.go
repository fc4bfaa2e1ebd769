// Package dashboard aggregates the multi-resource loads behind the role
// dashboards. Each resource is fetched on its own goroutine with its own
// failure boundary: a failing endpoint degrades to an empty list and a log
// line, it never blocks or crashes the rest of the screen.
package dashboard

import (
	"context"
	"sort"
	"sync"

	"boardeasy/internal/api"
	"boardeasy/internal/models"
	"boardeasy/internal/session"

	"github.com/rs/zerolog"
)

type Loader struct {
	client *api.Client
	logger *zerolog.Logger
}

func NewLoader(client *api.Client, logger *zerolog.Logger) *Loader {
	return &Loader{client: client, logger: logger}
}

// AdminData is everything the admin dashboard renders.
type AdminData struct {
	Users     []models.User
	Drivers   []models.User
	Vehicles  []models.Vehicle
	Routes    []models.Route
	Schedules []models.Schedule
	Bookings  []models.Booking
	Payments  []models.Payment
}

// DriverData is the driver dashboard's scope.
type DriverData struct {
	Vehicles []models.Vehicle
	Bookings []models.Booking
	Payments []models.Payment
}

// PassengerData is the passenger dashboard's scope.
type PassengerData struct {
	Bookings []models.Booking
}

// fetch runs one resource load inside its own failure boundary.
func fetch[T any](wg *sync.WaitGroup, logger *zerolog.Logger, resource string, dst *[]T, load func() ([]T, error)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		items, err := load()
		if err != nil {
			logger.Warn().Err(err).Str("resource", resource).Msg("dashboard load degraded to empty list")
			*dst = []T{}
			return
		}
		if items == nil {
			items = []T{}
		}
		*dst = items
	}()
}

// LoadAdmin fetches every admin resource concurrently and joins.
func (l *Loader) LoadAdmin(ctx context.Context, sess *session.Context) *AdminData {
	c := l.client.WithAuth(sess.Token)
	data := &AdminData{}

	var wg sync.WaitGroup
	fetch(&wg, l.logger, "users", &data.Users, func() ([]models.User, error) { return c.AdminUsers(ctx) })
	fetch(&wg, l.logger, "drivers", &data.Drivers, func() ([]models.User, error) { return c.AdminDrivers(ctx) })
	fetch(&wg, l.logger, "vehicles", &data.Vehicles, func() ([]models.Vehicle, error) { return c.GetVehicles(ctx, 0) })
	fetch(&wg, l.logger, "routes", &data.Routes, func() ([]models.Route, error) { return c.GetRoutes(ctx, 0) })
	fetch(&wg, l.logger, "schedules", &data.Schedules, func() ([]models.Schedule, error) { return c.GetSchedules(ctx, 0) })
	fetch(&wg, l.logger, "bookings", &data.Bookings, func() ([]models.Booking, error) { return c.GetBookings(ctx, 0) })
	fetch(&wg, l.logger, "payments", &data.Payments, func() ([]models.Payment, error) { return c.GetPayments(ctx, 0) })
	wg.Wait()

	return data
}

// LoadDriver fetches the driver-scoped resources concurrently.
func (l *Loader) LoadDriver(ctx context.Context, sess *session.Context) *DriverData {
	c := l.client.WithAuth(sess.Token)
	id := sess.User.ID
	data := &DriverData{}

	var wg sync.WaitGroup
	fetch(&wg, l.logger, "vehicles", &data.Vehicles, func() ([]models.Vehicle, error) { return c.GetDriverVehicles(ctx, id) })
	fetch(&wg, l.logger, "bookings", &data.Bookings, func() ([]models.Booking, error) { return c.GetDriverBookings(ctx, id) })
	fetch(&wg, l.logger, "payments", &data.Payments, func() ([]models.Payment, error) { return c.GetDriverPayments(ctx, id) })
	wg.Wait()

	return data
}

// LoadPassenger fetches the passenger's bookings.
func (l *Loader) LoadPassenger(ctx context.Context, sess *session.Context) *PassengerData {
	c := l.client.WithAuth(sess.Token)
	data := &PassengerData{}

	var wg sync.WaitGroup
	fetch(&wg, l.logger, "bookings", &data.Bookings, func() ([]models.Booking, error) { return c.GetMyBookings(ctx) })
	wg.Wait()

	return data
}

// PopularRoutes orders routes for the public listing by how often they were
// booked, falling back to distance when no booking data is available. This
// replaces the source's random placeholder score with a real key.
func PopularRoutes(routes []models.Route, bookings []models.Booking) []models.Route {
	counts := make(map[int64]int, len(routes))
	for _, b := range bookings {
		if b.Schedule != nil && b.Schedule.Route != nil {
			counts[b.Schedule.Route.ID]++
		}
	}

	out := make([]models.Route, len(routes))
	copy(out, routes)

	sort.SliceStable(out, func(i, j int) bool {
		if counts[out[i].ID] != counts[out[j].ID] {
			return counts[out[i].ID] > counts[out[j].ID]
		}
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}
