package ticket

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"boardeasy/internal/fare"
	"boardeasy/internal/models"

	"github.com/xuri/excelize/v2"
)

// WriteBookingsExcel creates the admin bookings spreadsheet and returns its path.
func (e *Exporter) WriteBookingsExcel(bookings []models.Booking, at time.Time) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Bookings export: %s", at.Format("02.01.2006")))

	headers := []string{"PNR", "Route", "Travel Date", "Seats", "Status", "Total", "Booked At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", headerStyle)
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheetName, "A2", lastCol+"2", boldStyle)

	for i, b := range bookings {
		row := i + 3
		travelDate := ""
		if b.Schedule != nil {
			travelDate = b.Schedule.TravelDate
		}
		values := []any{
			b.PNRNumber,
			b.RouteLabel(),
			travelDate,
			len(b.SeatNumbers),
			b.BookingStatus,
			fare.Format(fare.FromRupees(b.TotalAmount)),
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "B", 25)
	_ = f.SetColWidth(sheetName, "C", lastCol, 16)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings-export-%s.xlsx", at.Format("2006-01-02"))
	filePath := filepath.Join(e.dir, fileName)

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %v", err)
	}
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}
	return filePath, nil
}
