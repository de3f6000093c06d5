// Package export renders bookings into downloadable spreadsheets for
// the admin team.
package export

import (
	"fmt"
	"io"

	"appointd/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var headers = []string{
	"ID", "Customer", "Email", "Phone", "Country",
	"Date", "Time", "Service", "Type", "Duration (min)",
	"Status", "Created At", "Notified",
}

// WriteBookingsXLSX streams an xlsx workbook of the given bookings.
func WriteBookingsXLSX(w io.Writer, bookings []models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for row, b := range bookings {
		values := []interface{}{
			b.ID,
			b.Customer.Name,
			b.Customer.Email,
			b.Customer.Phone,
			b.Customer.Country,
			b.Appointment.Date,
			b.Appointment.Time,
			b.Appointment.ServiceType,
			b.Appointment.AppointmentType,
			b.Appointment.Duration,
			b.Status,
			b.CreatedAt.Format("2006-01-02 15:04"),
			b.Notified,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "E", 24)
	_ = f.SetColWidth(sheetName, "F", "M", 16)
	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
