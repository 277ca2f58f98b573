package monitor

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/tugaskita/tugasboard/internal/task"
)

const reportTimeLayout = "2006-01-02 15:04"

// WriteReport renders o as a one-document PDF progress report.
func WriteReport(w io.Writer, o *Overview) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Monitoring Progress Tugas", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "MONITORING PROGRESS TUGAS", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, "Dibuat "+o.GeneratedAt.Format(reportTimeLayout), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	stats := []struct {
		label string
		value int
	}{
		{"Total Tugas", o.Total},
		{"Sedang Berjalan", o.Active},
		{"Selesai", o.Done},
		{"Ditolak", o.Rejected},
	}
	for _, s := range stats {
		pdf.CellFormat(47, 8, s.label, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 11)
	for _, s := range stats {
		pdf.CellFormat(47, 8, fmt.Sprint(s.value), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Progress Penyelesaian: %d%%", o.PercentDone), "", 1, "L", false, 0, "")
	x, y := pdf.GetXY()
	pdf.SetFillColor(51, 65, 85)
	pdf.Rect(x, y, 188, 5, "F")
	if o.PercentDone > 0 {
		pdf.SetFillColor(74, 222, 128)
		pdf.Rect(x, y, 188*float64(o.PercentDone)/100, 5, "F")
	}
	pdf.Ln(10)

	writeGroup(pdf, "HARI INI", o.DueToday)
	writeGroup(pdf, "TERLAMBAT", o.Overdue)
	writeGroup(pdf, "MENDATANG", o.Upcoming)

	return pdf.Output(w)
}

func writeGroup(pdf *gofpdf.Fpdf, title string, tasks []*task.Task) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s (%d)", title, len(tasks)), "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	if len(tasks) == 0 {
		pdf.CellFormat(0, 6, "Tidak ada tugas", "", 1, "L", false, 0, "")
	}
	for _, t := range tasks {
		line := fmt.Sprintf("- %s  [%s]  %s", t.Title, t.Status, t.Date)
		pdf.MultiCell(0, 6, line, "", "L", false)
	}
	pdf.Ln(3)
}
