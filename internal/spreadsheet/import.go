// Package spreadsheet reads task imports and writes task exports as xlsx.
package spreadsheet

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/pkg/cerr"
)

// ImportColumns is the header row of an import sheet, in column order.
var ImportColumns = []string{"title", "description", "priority", "tanggalTugas"}

type ImportResult struct {
	Tasks []task.NewTask
	// Skipped counts data rows without a title or a usable date.
	Skipped int
}

// ParseImport reads the first sheet of an xlsx workbook. Row 1 is the
// header; every following row is title, description, priority, date.
// Empty or unknown priorities become defaultPriority.
func ParseImport(r io.Reader, defaultPriority task.Priority) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "cannot read spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, cerr.NewError(cerr.InvalidArgument, "spreadsheet has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "cannot read spreadsheet rows", err)
	}

	defaultPriority = defaultPriority.OrDefault()
	res := &ImportResult{Tasks: []task.NewTask{}}
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		title := strings.TrimSpace(cell(row, 0))
		date, err := parseCellDate(cell(row, 3))
		if title == "" || err != nil || date.IsZero() {
			slog.Debug("skipping import row", "row", i+1, "title", title, "error", err)
			res.Skipped++
			continue
		}
		res.Tasks = append(res.Tasks, task.NewTask{
			Title:       title,
			Description: strings.TrimSpace(cell(row, 1)),
			Priority:    parsePriority(cell(row, 2), defaultPriority),
			Date:        date,
			Status:      task.StatusWaiting,
		})
	}
	return res, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parsePriority(s string, def task.Priority) task.Priority {
	s = strings.TrimSpace(s)
	for _, p := range []task.Priority{task.PriorityNormal, task.PriorityMedium, task.PriorityUrgent} {
		if strings.EqualFold(s, string(p)) {
			return p
		}
	}
	return def
}

// parseCellDate accepts a date typed as text or a date-formatted cell,
// which arrives as an Excel serial number.
func parseCellDate(s string) (task.Date, error) {
	s = strings.TrimSpace(s)
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return task.Date{}, err
		}
		return task.DateOf(t), nil
	}
	return task.ParseDate(s)
}
