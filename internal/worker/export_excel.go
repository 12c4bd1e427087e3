package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"zaimka/internal/halfday"
	"zaimka/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	gridSheet = "Calendar"
	listSheet = "Bookings"
)

// buildWorkbook writes one company's bookings to an xlsx file: a calendar
// grid of cabins against dates plus a flat list with guest contacts.
func (w *ExportWorker) buildWorkbook(ctx context.Context, task ExportTask) (string, error) {
	if err := os.MkdirAll(w.exportPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	cabins, err := w.db.ListCabins(ctx, task.CompanySlug)
	if err != nil {
		return "", fmt.Errorf("failed to list cabins: %w", err)
	}
	bookings, err := w.db.ListCompanyBookings(ctx, task.CompanySlug, task.From, task.To)
	if err != nil {
		return "", fmt.Errorf("failed to list bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeGrid(f, task, cabins, bookings); err != nil {
		return "", err
	}
	if err := w.writeList(f, bookings); err != nil {
		return "", err
	}
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_%s_to_%s.xlsx",
		task.CompanySlug,
		task.From.Format("2006-01-02"),
		task.To.Format("2006-01-02"))
	filePath := filepath.Join(w.exportPath, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return filePath, nil
}

func (w *ExportWorker) writeGrid(f *excelize.File, task ExportTask, cabins []models.Cabin, bookings []models.Booking) error {
	index, err := f.NewSheet(gridSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(gridSheet, "A1", fmt.Sprintf("Period: %s - %s",
		task.From.Format("02.01.2006"), task.To.Format("02.01.2006")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	// Date headers across row 2.
	dateCols := make(map[string]int)
	col := 2
	for d := models.DateOf(task.From); !d.Time.After(task.To); d = d.AddDays(1) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(gridSheet, cell, d.Format("02.01"))
		_ = f.SetCellStyle(gridSheet, cell, cell, headerStyle)
		dateCols[d.String()] = col
		col++
	}

	// Cabin rows down column A, one cell per occupied day.
	for i, cabin := range cabins {
		row := 3 + i
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(gridSheet, cell, cabin.Name)

		for _, booking := range bookings {
			if booking.CabinID != cabin.ID || booking.Status != models.BookingApproved {
				continue
			}
			for dateStr, dayCol := range dateCols {
				date, err := models.ParseDate(dateStr)
				if err != nil {
					continue
				}
				label := occupancyLabel(booking, date)
				if label == "" {
					continue
				}
				cell, _ := excelize.CoordinatesToCellName(dayCol, row)
				_ = f.SetCellValue(gridSheet, cell, label)
			}
		}
	}

	_ = f.SetColWidth(gridSheet, "A", "A", 25)
	if len(dateCols) > 0 {
		last, _ := excelize.ColumnNumberToName(len(dateCols) + 1)
		_ = f.SetColWidth(gridSheet, "B", last, 14)
		_ = f.MergeCell(gridSheet, "A1", last+"1")
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(gridSheet, "A1", "A1", titleStyle)
	return nil
}

// occupancyLabel renders a booking's footprint on one date: the guest name
// for a whole day, name plus AM or PM for a half.
func occupancyLabel(booking models.Booking, date models.Date) string {
	am := halfday.CoversHalf(booking.StartTime, booking.EndTime, date, halfday.First)
	pm := halfday.CoversHalf(booking.StartTime, booking.EndTime, date, halfday.Second)
	switch {
	case am && pm:
		return booking.GuestName
	case am:
		return booking.GuestName + " (AM)"
	case pm:
		return booking.GuestName + " (PM)"
	}
	return ""
}

func (w *ExportWorker) writeList(f *excelize.File, bookings []models.Booking) error {
	if _, err := f.NewSheet(listSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []string{"ID", "Cabin", "Guest", "Phone", "Email", "Start", "End", "Status", "Comment"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(listSheet, cell, h)
	}

	for i, booking := range bookings {
		row := i + 2
		values := []any{
			booking.ID,
			booking.CabinName,
			booking.GuestName,
			booking.GuestPhone,
			booking.GuestEmail,
			booking.StartTime.Format("2006-01-02 15:04"),
			booking.EndTime.Format("2006-01-02 15:04"),
			booking.Status,
			booking.Comment,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			_ = f.SetCellValue(listSheet, cell, v)
		}
	}

	_ = f.SetColWidth(listSheet, "B", "E", 20)
	return nil
}
