package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boardeasy/internal/config"
	"boardeasy/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	return New(config.BackendConfig{
		BaseURL:        srv.URL,
		TimeoutSeconds: 5,
		RateLimitRPS:   1000,
		RateLimitBurst: 100,
	}, &logger)
}

func TestNormalizeCollectionShapes(t *testing.T) {
	bare := []byte(`[{"id":1,"source":"pune"},{"id":2,"source":"goa"}]`)
	routes, err := normalizeCollection[models.Route](bare)
	require.NoError(t, err)
	assert.Len(t, routes, 2)

	paged := []byte(`{"content":[{"id":3,"source":"delhi"}],"totalElements":1}`)
	routes, err = normalizeCollection[models.Route](paged)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "delhi", routes[0].Source)

	data := []byte(`{"data":[{"id":4}]}`)
	routes, err = normalizeCollection[models.Route](data)
	require.NoError(t, err)
	assert.Len(t, routes, 1)

	empty, err := normalizeCollection[models.Route]([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, empty)

	emptyEnvelope, err := normalizeCollection[models.Route]([]byte(`{"content":null}`))
	require.NoError(t, err)
	assert.Empty(t, emptyEnvelope)
}

func TestAuthorizationHeaderAttached(t *testing.T) {
	var gotAuth, gotRequestID string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		_ = json.NewEncoder(w).Encode([]models.Booking{})
	}))

	_, err := c.WithAuth("tok123").GetMyBookings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestAuthenticatedEndpointWithoutSession(t *testing.T) {
	called := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := c.GetMyBookings(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
	assert.False(t, called, "no request may be issued without a token")
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.GetRoutes(context.Background(), 0)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
}

func TestUnauthorizedMatchesSentinel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.WithAuth("expired").GetMyBookings(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSearchBusesPostsBodyAndNormalizes(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/bus-search/search", r.URL.Path)

		var req models.SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Pune", req.Source)
		assert.Equal(t, 2, req.Passengers)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []models.BusResult{{ScheduleID: 9, Operator: "RedLine"}},
		})
	}))

	results, err := c.SearchBuses(context.Background(), models.SearchRequest{
		Source: "Pune", Destination: "Goa", TravelDate: "2026-09-10", Passengers: 2,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(9), results[0].ScheduleID)
}

func TestBookingActionValidatedLocally(t *testing.T) {
	called := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := c.WithAuth("tok").UpdateBookingAction(context.Background(), 1, "reject")
	assert.ErrorIs(t, err, ErrBadAction)
	assert.False(t, called)
}

func TestBookingActionPathShape(t *testing.T) {
	var gotPath, gotMethod string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		_ = json.NewEncoder(w).Encode(models.Booking{ID: 7, BookingStatus: models.BookingCancelled})
	}))

	b, err := c.WithAuth("tok").UpdateBookingAction(context.Background(), 7, ActionCancel)
	require.NoError(t, err)
	assert.Equal(t, "/api/bookings/7/cancel", gotPath)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, models.BookingCancelled, b.BookingStatus)
}

func TestSizeQueryAppended(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]models.Route{})
	}))

	_, err := c.GetRoutes(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, "size=50", gotQuery)
}

func TestCatalogCacheServesSecondRead(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	hits := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_ = json.NewEncoder(w).Encode([]models.Route{{ID: 1, Source: "pune"}})
	}))
	c.UseRedisCache(rdb, time.Minute)

	first, err := c.GetRoutes(context.Background(), 0)
	require.NoError(t, err)
	second, err := c.GetRoutes(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Equal(t, first, second)
}
