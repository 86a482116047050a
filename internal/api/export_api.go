package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"loungebook/internal/ledger"
	"loungebook/internal/metrics"
	"loungebook/internal/models"
)

var exportColumns = []string{
	"ID", "User Email", "Date", "Time Slot", "Guest Name",
	"Purpose", "Status", "Created At", "Updated At", "Cancelled At",
}

// handleBookingsExport streams an Excel report of bookings, honoring
// the same email/date filters as the list endpoint.
// GET /bookings/export?email=&date=
func (s *Server) handleBookingsExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	filter := ledger.Filter{
		Email: r.URL.Query().Get("email"),
		Date:  r.URL.Query().Get("date"),
	}
	bookings, err := s.ledger.List(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	file, err := buildBookingsWorkbook(bookings)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to build export workbook")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	if err := file.Write(w); err != nil {
		s.log.Error().Err(err).Msg("failed to write export response")
	}
}

func buildBookingsWorkbook(bookings []models.Booking) (*excelize.File, error) {
	const sheet = "Bookings"

	file := excelize.NewFile()
	file.SetSheetName("Sheet1", sheet)

	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, col); err != nil {
			return nil, err
		}
	}

	// Bold header row.
	if style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
		_ = file.SetCellStyle(sheet, startCell, endCell, style)
	}

	for row, b := range bookings {
		values := []interface{}{
			b.ID, b.UserEmail, b.Date, b.TimeSlot, b.GuestName,
			b.Purpose, b.Status, b.CreatedAt, b.UpdatedAt, b.CancelledAt,
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(sheet, cell, val); err != nil {
				return nil, err
			}
		}
	}

	return file, nil
}
