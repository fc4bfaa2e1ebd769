package google

import (
	"testing"
	"time"

	"boardeasy/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBookingRowValues(t *testing.T) {
	createdAt := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)

	booking := &models.Booking{
		PNRNumber:     "PNR5501",
		BookingStatus: models.BookingConfirmed,
		TotalAmount:   1075,
		SeatNumbers:   []string{"A1", "A2"},
		CreatedAt:     createdAt,
		Schedule: &models.Schedule{
			TravelDate: "2026-09-05",
			Route:      &models.Route{Source: "Mumbai", Destination: "Pune"},
		},
		User: &models.User{Username: "amy"},
	}

	values := bookingRowValues(booking)

	expected := []interface{}{
		"PNR5501",
		"Mumbai → Pune",
		"2026-09-05",
		"A1, A2",
		"amy",
		"CONFIRMED",
		float64(1075),
		"2026-08-30 14:00:00",
	}
	assert.Equal(t, expected, values)
}

func TestBookingRowValuesMissingRelations(t *testing.T) {
	values := bookingRowValues(&models.Booking{PNRNumber: "X1"})

	assert.Equal(t, "X1", values[0])
	assert.Equal(t, "", values[1])
	assert.Equal(t, "", values[2])
	assert.Equal(t, "", values[4])
}

func TestRowCache(t *testing.T) {
	s := &SheetsService{rowCache: make(map[string]int)}

	_, ok := s.getCachedRow("PNR1")
	assert.False(t, ok)

	s.setCachedRow("PNR1", 4)
	row, ok := s.getCachedRow("PNR1")
	assert.True(t, ok)
	assert.Equal(t, 4, row)

	s.ClearCache()
	_, ok = s.getCachedRow("PNR1")
	assert.False(t, ok)
}
