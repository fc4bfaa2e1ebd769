package ticket

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"boardeasy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleBooking() *models.Booking {
	return &models.Booking{
		ID:            7,
		PNRNumber:     "PNR12345",
		BookingStatus: models.BookingConfirmed,
		TotalAmount:   1075,
		SeatNumbers:   []string{"A1", "A2"},
		CreatedAt:     time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC),
		Schedule: &models.Schedule{
			TravelDate:    "2026-09-05",
			DepartureTime: "08:30",
			Route:         &models.Route{Source: "Mumbai", Destination: "Pune"},
			Vehicle:       &models.Vehicle{Operator: "RedLine", VehicleNumber: "MH12AB1234"},
		},
		User: &models.User{Username: "amy"},
	}
}

func TestWritePDF(t *testing.T) {
	exp := NewExporter(t.TempDir())

	path, err := exp.WritePDF(FromBooking(sampleBooking()))
	require.NoError(t, err)
	assert.Equal(t, "ticket-PNR12345.pdf", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	assert.Equal(t, "%PDF", string(raw[:4]))
}

func TestWriteTextFallback(t *testing.T) {
	exp := NewExporter(t.TempDir())

	data := FromBooking(sampleBooking())
	data.Passengers = []models.Passenger{{Name: "Amy", Age: 30, Gender: "female", SeatNumber: "A1"}}

	path, err := exp.WriteText(data)
	require.NoError(t, err)
	assert.Equal(t, "ticket-PNR12345.txt", filepath.Base(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, "PNR12345")
	assert.Contains(t, text, "Mumbai → Pune")
	assert.Contains(t, text, "Amy (30, female) seat A1")
	assert.Contains(t, text, "1075.00")
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "PNR_1", safeName("PNR/1"))
	assert.Equal(t, "unknown", safeName(""))
}

func TestWriteBookingsExcel(t *testing.T) {
	exp := NewExporter(t.TempDir())
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	path, err := exp.WriteBookingsExcel([]models.Booking{*sampleBooking()}, at)
	require.NoError(t, err)
	assert.Equal(t, "bookings-export-2026-09-01.xlsx", filepath.Base(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, "PNR", rows[1][0])
	assert.Equal(t, "PNR12345", rows[2][0])
	assert.Equal(t, "CONFIRMED", rows[2][4])
}

func TestFromBookingTolerantOfMissingSchedule(t *testing.T) {
	data := FromBooking(&models.Booking{PNRNumber: "X1", TotalAmount: 10})
	assert.Equal(t, "X1", data.PNR)
	assert.Empty(t, data.Operator)

	exp := NewExporter(t.TempDir())
	_, err := exp.WritePDF(data)
	assert.NoError(t, err)
}
