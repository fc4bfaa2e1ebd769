// Package ticket renders downloadable booking artifacts: the PDF ticket sent
// from the confirmation screen, its plain-text fallback, and the admin
// bookings spreadsheet export.
package ticket

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"boardeasy/internal/fare"
	"boardeasy/internal/models"

	"github.com/phpdave11/gofpdf"
)

// Exporter writes artifacts into the configured exports directory.
type Exporter struct {
	dir string
}

func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// TicketData is the rendered content of one ticket, keyed by PNR.
type TicketData struct {
	PNR         string
	Route       string
	TravelDate  string
	Departure   string
	Operator    string
	Vehicle     string
	Seats       []string
	Passengers  []models.Passenger
	TotalPaise  int64
	ContactName string
}

// FromBooking assembles ticket data from a backend booking.
func FromBooking(b *models.Booking) TicketData {
	data := TicketData{
		PNR:        b.PNRNumber,
		Route:      b.RouteLabel(),
		Seats:      b.SeatNumbers,
		TotalPaise: fare.FromRupees(b.TotalAmount),
	}
	if b.Schedule != nil {
		data.TravelDate = b.Schedule.TravelDate
		data.Departure = b.Schedule.DepartureTime
		if b.Schedule.Vehicle != nil {
			data.Operator = b.Schedule.Vehicle.Operator
			data.Vehicle = b.Schedule.Vehicle.VehicleNumber
		}
	}
	if b.User != nil {
		data.ContactName = b.User.Username
	}
	return data
}

// WritePDF renders the ticket and writes ticket-{pnr}.pdf, returning the path.
func (e *Exporter) WritePDF(data TicketData) (string, error) {
	raw, err := buildTicketPDF(data)
	if err != nil {
		return "", err
	}
	return e.write(fmt.Sprintf("ticket-%s.pdf", safeName(data.PNR)), raw)
}

// WriteText writes the plain-text fallback, ticket-{pnr}.txt.
func (e *Exporter) WriteText(data TicketData) (string, error) {
	return e.write(fmt.Sprintf("ticket-%s.txt", safeName(data.PNR)), []byte(renderText(data)))
}

func (e *Exporter) write(name string, raw []byte) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write ticket: %w", err)
	}
	return path, nil
}

func buildTicketPDF(d TicketData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("BoardEasy Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BoardEasy E-Ticket")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("PNR        : %s", orDash(d.PNR)),
		fmt.Sprintf("Route      : %s", orDash(d.Route)),
		fmt.Sprintf("Date       : %s", orDash(d.TravelDate)),
		fmt.Sprintf("Departure  : %s", orDash(d.Departure)),
		fmt.Sprintf("Operator   : %s", orDash(d.Operator)),
		fmt.Sprintf("Vehicle    : %s", orDash(d.Vehicle)),
		fmt.Sprintf("Seats      : %s", orDash(strings.Join(d.Seats, ", "))),
		fmt.Sprintf("Booked by  : %s", orDash(d.ContactName)),
		fmt.Sprintf("Total      : %s", fare.Format(d.TotalPaise)),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	if len(d.Passengers) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Passengers")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, p := range d.Passengers {
			pdf.Cell(0, 6, fmt.Sprintf("%s (%d, %s) - seat %s", p.Name, p.Age, p.Gender, p.SeatNumber))
			pdf.Ln(6)
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please carry a valid photo ID. Show this ticket at boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderText(d TicketData) string {
	var b strings.Builder
	b.WriteString("BoardEasy E-Ticket\n")
	b.WriteString("==================\n")
	fmt.Fprintf(&b, "PNR:       %s\n", orDash(d.PNR))
	fmt.Fprintf(&b, "Route:     %s\n", orDash(d.Route))
	fmt.Fprintf(&b, "Date:      %s\n", orDash(d.TravelDate))
	fmt.Fprintf(&b, "Departure: %s\n", orDash(d.Departure))
	fmt.Fprintf(&b, "Operator:  %s\n", orDash(d.Operator))
	fmt.Fprintf(&b, "Vehicle:   %s\n", orDash(d.Vehicle))
	fmt.Fprintf(&b, "Seats:     %s\n", orDash(strings.Join(d.Seats, ", ")))
	for _, p := range d.Passengers {
		fmt.Fprintf(&b, "  - %s (%d, %s) seat %s\n", p.Name, p.Age, p.Gender, p.SeatNumber)
	}
	fmt.Fprintf(&b, "Total:     %s\n", fare.Format(d.TotalPaise))
	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// safeName keeps filenames shell- and filesystem-friendly.
func safeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
