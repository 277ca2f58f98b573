package spreadsheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"github.com/xuri/excelize/v2"

	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/pkg/cerr"
)

const (
	ExportFileName  = "Daftar_Tugas.xlsx"
	exportSheetName = "Daftar Tugas"

	exportRowHeight = 65
	thumbWidth      = 90
	thumbHeight     = 60
	fetchWorkers    = 4
)

var exportColumns = []struct {
	header string
	width  float64
}{
	{"Judul", 25},
	{"Deskripsi", 30},
	{"Status", 15},
	{"Pekerja", 20},
	{"Tanggal", 15},
	{"Keterangan", 30},
	{"Foto Before", 18},
	{"Foto After", 18},
}

// PhotoFetcher loads the image behind a task photo reference.
type PhotoFetcher interface {
	FetchPhoto(ctx context.Context, ref string) (*task.Photo, error)
}

type thumbs struct {
	before, after *task.Photo
}

// Export writes one row per task with before/after thumbnails. A photo that
// cannot be fetched or embedded leaves its cell empty; fetcher may be nil to
// skip photos entirely.
func Export(ctx context.Context, w io.Writer, tasks []*task.Task, fetcher PhotoFetcher) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheetName); err != nil {
		return cerr.NewError(cerr.Internal, "cannot build export", err)
	}
	header := make([]any, len(exportColumns))
	for i, c := range exportColumns {
		header[i] = c.header
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(exportSheetName, col, col, c.width); err != nil {
			return cerr.NewError(cerr.Internal, "cannot build export", err)
		}
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return cerr.NewError(cerr.Internal, "cannot build export", err)
	}
	if err := boldHeader(f, exportSheetName, len(header)); err != nil {
		return err
	}

	photos := fetchThumbs(ctx, tasks, fetcher)
	row := 2
	for i, t := range tasks {
		if t == nil {
			continue
		}
		values := []any{
			t.Title,
			orDash(t.Description),
			string(t.Status),
			orDash(t.Worker),
			orDash(t.Date.String()),
			orDash(t.Note),
		}
		cellName, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(exportSheetName, cellName, &values); err != nil {
			return cerr.NewError(cerr.Internal, "cannot build export", err)
		}
		if err := f.SetRowHeight(exportSheetName, row, exportRowHeight); err != nil {
			return cerr.NewError(cerr.Internal, "cannot build export", err)
		}
		embedThumb(f, row, 7, photos[i].before)
		embedThumb(f, row, 8, photos[i].after)
		row++
	}

	if err := ctx.Err(); err != nil {
		return cerr.From(err)
	}
	if err := f.Write(w); err != nil {
		return cerr.NewError(cerr.Internal, "cannot write export", err)
	}
	return nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func fetchThumbs(ctx context.Context, tasks []*task.Task, fetcher PhotoFetcher) []thumbs {
	out := make([]thumbs, len(tasks))
	if fetcher == nil {
		return out
	}
	p := pool.New().WithMaxGoroutines(fetchWorkers)
	for i, t := range tasks {
		if t == nil {
			continue
		}
		if t.BeforePhoto != "" {
			p.Go(func() { out[i].before = fetchQuietly(ctx, fetcher, t.BeforePhoto) })
		}
		if t.AfterPhoto != "" {
			p.Go(func() { out[i].after = fetchQuietly(ctx, fetcher, t.AfterPhoto) })
		}
	}
	p.Wait()
	return out
}

func fetchQuietly(ctx context.Context, fetcher PhotoFetcher, ref string) *task.Photo {
	if ctx.Err() != nil {
		return nil
	}
	photo, err := fetcher.FetchPhoto(ctx, ref)
	if err != nil {
		slog.DebugContext(ctx, "export photo unavailable", "ref", ref, "error", err)
		return nil
	}
	return photo
}

func embedThumb(f *excelize.File, row, col int, photo *task.Photo) {
	if photo == nil {
		return
	}
	if err := addThumb(f, row, col, photo); err != nil {
		slog.Debug("export photo not embedded", "row", row, "photo", photo.Name, "error", err)
	}
}

func addThumb(f *excelize.File, row, col int, photo *task.Photo) error {
	ext, ok := pictureExtension(photo.ContentType)
	if !ok {
		return fmt.Errorf("unsupported image type %q", photo.ContentType)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(photo.Data))
	if err != nil {
		return err
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return errors.New("empty image")
	}
	cellName, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.AddPictureFromBytes(exportSheetName, cellName, &excelize.Picture{
		Extension: ext,
		File:      photo.Data,
		Format: &excelize.GraphicOptions{
			ScaleX:  float64(thumbWidth) / float64(cfg.Width),
			ScaleY:  float64(thumbHeight) / float64(cfg.Height),
			OffsetX: 4,
			OffsetY: 3,
		},
	})
}

func pictureExtension(contentType string) (string, bool) {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png", true
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return ".jpg", true
	case strings.Contains(contentType, "gif"):
		return ".gif", true
	}
	return "", false
}
