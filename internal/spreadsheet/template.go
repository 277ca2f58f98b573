package spreadsheet

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tugaskita/tugasboard/pkg/cerr"
)

const (
	TemplateFileName  = "Template_Tugas.xlsx"
	templateSheetName = "Template Tugas"
)

var templateExample = []any{"Contoh Judul", "Deskripsi singkat tugas", "Biasa", "2025-11-15"}

// WriteTemplate writes an empty import workbook with one example row.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheetName); err != nil {
		return cerr.NewError(cerr.Internal, "cannot build template", err)
	}
	header := make([]any, len(ImportColumns))
	for i, c := range ImportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(templateSheetName, "A1", &header); err != nil {
		return cerr.NewError(cerr.Internal, "cannot build template", err)
	}
	if err := f.SetSheetRow(templateSheetName, "A2", &templateExample); err != nil {
		return cerr.NewError(cerr.Internal, "cannot build template", err)
	}
	if err := boldHeader(f, templateSheetName, len(header)); err != nil {
		return err
	}
	for col, width := range map[string]float64{"A": 25, "B": 40, "C": 15, "D": 15} {
		if err := f.SetColWidth(templateSheetName, col, col, width); err != nil {
			return cerr.NewError(cerr.Internal, "cannot build template", err)
		}
	}
	if err := f.Write(w); err != nil {
		return cerr.NewError(cerr.Internal, "cannot write template", err)
	}
	return nil
}

func boldHeader(f *excelize.File, sheet string, cols int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return cerr.NewError(cerr.Internal, "cannot build header style", err)
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return cerr.NewError(cerr.Internal, "cannot build header style", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return cerr.NewError(cerr.Internal, "cannot build header style", err)
	}
	return nil
}
