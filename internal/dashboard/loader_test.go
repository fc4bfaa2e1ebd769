package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"boardeasy/internal/api"
	"boardeasy/internal/config"
	"boardeasy/internal/models"
	"boardeasy/internal/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader(t *testing.T, handler http.Handler) *Loader {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	client := api.New(config.BackendConfig{
		BaseURL: srv.URL, TimeoutSeconds: 5, RateLimitRPS: 1000, RateLimitBurst: 100,
	}, &logger)
	return NewLoader(client, &logger)
}

func adminSession() *session.Context {
	return &session.Context{ChatID: 1, Token: "tok", User: models.User{ID: 9, Role: models.RoleAdmin}}
}

func TestLoadAdminPartialFailureIsolation(t *testing.T) {
	loader := newLoader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/payments":
			// One failing resource must not take down the others.
			http.Error(w, "payments exploded", http.StatusInternalServerError)
		case "/api/admin/users":
			_ = json.NewEncoder(w).Encode([]models.User{{ID: 1, Username: "amy"}})
		case "/api/admin/users/drivers":
			_ = json.NewEncoder(w).Encode([]models.User{{ID: 2, Username: "bob", Role: models.RoleDriver}})
		case "/api/vehicles":
			_ = json.NewEncoder(w).Encode([]models.Vehicle{{ID: 1, VehicleNumber: "KA-01"}})
		case "/api/routes":
			_ = json.NewEncoder(w).Encode([]models.Route{{ID: 1, Source: "pune"}})
		case "/api/schedules":
			_ = json.NewEncoder(w).Encode([]models.Schedule{{ID: 3}})
		case "/api/bookings":
			_ = json.NewEncoder(w).Encode(map[string]any{"content": []models.Booking{{ID: 5}}})
		default:
			http.NotFound(w, r)
		}
	}))

	data := loader.LoadAdmin(context.Background(), adminSession())

	assert.Len(t, data.Users, 1)
	assert.Len(t, data.Drivers, 1)
	assert.Len(t, data.Vehicles, 1)
	assert.Len(t, data.Routes, 1)
	assert.Len(t, data.Schedules, 1)
	assert.Len(t, data.Bookings, 1)
	assert.Empty(t, data.Payments)
	assert.NotNil(t, data.Payments, "failed resource degrades to empty, not nil")
}

func TestLoadDriverScopesByID(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	loader := newLoader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		_ = json.NewEncoder(w).Encode([]any{})
	}))

	sess := &session.Context{Token: "tok", User: models.User{ID: 42, Role: models.RoleDriver}}
	data := loader.LoadDriver(context.Background(), sess)

	assert.NotNil(t, data.Vehicles)
	assert.Contains(t, paths, "/api/vehicles/driver/42")
	assert.Contains(t, paths, "/api/bookings/driver/42")
	assert.Contains(t, paths, "/api/payments/driver/42")
}

func TestLoadPassenger(t *testing.T) {
	loader := newLoader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/bookings/my-bookings", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]models.Booking{{ID: 1, PNRNumber: "BE1"}})
	}))

	data := loader.LoadPassenger(context.Background(), &session.Context{Token: "tok"})
	require.Len(t, data.Bookings, 1)
	assert.Equal(t, "BE1", data.Bookings[0].PNRNumber)
}

func TestPopularRoutesByBookingCount(t *testing.T) {
	routes := []models.Route{
		{ID: 1, Source: "a", DistanceKm: 100},
		{ID: 2, Source: "b", DistanceKm: 50},
		{ID: 3, Source: "c", DistanceKm: 200},
	}
	sched := func(routeID int64) *models.Schedule {
		return &models.Schedule{Route: &models.Route{ID: routeID}}
	}
	bookings := []models.Booking{
		{Schedule: sched(3)}, {Schedule: sched(3)}, {Schedule: sched(1)},
	}

	out := PopularRoutes(routes, bookings)
	assert.Equal(t, int64(3), out[0].ID)
	assert.Equal(t, int64(1), out[1].ID)
	assert.Equal(t, int64(2), out[2].ID)

	// Input order untouched.
	assert.Equal(t, int64(1), routes[0].ID)
}

func TestPopularRoutesFallsBackToDistance(t *testing.T) {
	routes := []models.Route{
		{ID: 1, DistanceKm: 300},
		{ID: 2, DistanceKm: 45},
	}
	out := PopularRoutes(routes, nil)
	assert.Equal(t, int64(2), out[0].ID)
}
