// Package dashboard serves the local task dashboard over HTTP.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tugaskita/tugasboard/internal/eventbus"
	"github.com/tugaskita/tugasboard/internal/monitor"
	"github.com/tugaskita/tugasboard/internal/spreadsheet"
	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/internal/taskstore"
	"github.com/tugaskita/tugasboard/internal/taskview"
	"github.com/tugaskita/tugasboard/pkg/cerr"
)

const maxUploadSize = 16 << 20

// Upstream is the part of the REST client the dashboard forwards to.
type Upstream interface {
	UpdateStatus(ctx context.Context, current *task.Task, change task.StatusChange) (*task.Task, error)
	FetchPhoto(ctx context.Context, ref string) (*task.Photo, error)
}

type Server struct {
	store    *taskstore.Store
	upstream Upstream
	bus      *eventbus.Bus
	pageSize int
	now      func() time.Time
}

func NewServer(store *taskstore.Store, upstream Upstream, bus *eventbus.Bus, pageSize int) *Server {
	return &Server{
		store:    store,
		upstream: upstream,
		bus:      bus,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// Routes mounts the dashboard endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/view", s.handleView)
	r.Get("/overview", s.handleOverview)
	r.Get("/tasks/{id}", s.handleGetTask)
	r.Put("/tasks/{id}/status", s.handleUpdateStatus)
	r.Get("/export.xlsx", s.handleExport)
	r.Get("/report.pdf", s.handleReport)
	r.Get("/events", s.handleEvents)
}

func (s *Server) query(r *http.Request) (taskview.Query, error) {
	q := taskview.Query{
		Search:   r.URL.Query().Get("search"),
		Page:     1,
		PageSize: s.pageSize,
	}
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return q, cerr.NewError(cerr.InvalidArgument, "page must be a number", err).AddDetail("page")
		}
		q.Page = n
	}
	var err error
	if q.Range.Start, err = task.ParseDate(r.URL.Query().Get("from")); err != nil {
		return q, cerr.NewError(cerr.InvalidArgument, "invalid from date", err).AddDetail("from")
	}
	if q.Range.End, err = task.ParseDate(r.URL.Query().Get("to")); err != nil {
		return q, cerr.NewError(cerr.InvalidArgument, "invalid to date", err).AddDetail("to")
	}
	return q, nil
}

// filtered is the list a user sees with the current search and dates,
// before pagination. Exports and reports use it.
func (s *Server) filtered(r *http.Request) ([]*task.Task, error) {
	q, err := s.query(r)
	if err != nil {
		return nil, err
	}
	return taskview.Filter(s.store.Snapshot(), q.Search, q.Range), nil
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	q, err := s.query(r)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	page := taskview.Build(s.store.Snapshot(), q)
	if r.URL.Query().Get("full") == "" {
		for i, t := range page.Tasks {
			page.Tasks[i] = taskview.ForCard(t)
		}
	}
	cerr.SetJSONResponse(r.Context(), page)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), monitor.Build(s.store.Snapshot(), s.now()))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, ok := s.store.Get(task.ID(chi.URLParam(r, "id")))
	if !ok {
		cerr.SetNewJSONError(r.Context(), cerr.NotFound, "task not found", nil)
		return
	}
	cerr.SetJSONResponse(r.Context(), map[string]any{
		"task":        t,
		"transitions": task.AllowedTransitions(t.Status),
	})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := task.ID(chi.URLParam(r, "id"))
	current, ok := s.store.Get(id)
	if !ok {
		cerr.SetNewJSONError(ctx, cerr.NotFound, "task not found", nil)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid form", err)
		return
	}
	to, err := task.ParseStatus(r.FormValue("status"))
	if err != nil {
		cerr.SetJSONError(ctx, cerr.NewError(cerr.InvalidArgument, "unknown status", err).AddDetail("status"))
		return
	}
	change := task.StatusChange{
		TaskID:   id,
		To:       to,
		Username: r.FormValue("username"),
		Remark:   r.FormValue("keteranganTugas"),
	}
	change.AfterPhoto, err = formPhoto(r, "fotoAfter")
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	updated, err := s.upstream.UpdateStatus(ctx, current, change)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if updated != nil {
		s.store.ApplyStatusResult(id, updated)
	}
	resp := map[string]any{"message": fmt.Sprintf("Status berhasil diubah ke %q", to)}
	if updated != nil {
		resp["updatedTask"] = updated
	}
	cerr.SetJSONResponse(ctx, resp)
}

func formPhoto(r *http.Request, field string) (*task.Photo, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, fh, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "cannot read uploaded photo", err).AddDetail(field)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "cannot read uploaded photo", err).AddDetail(field)
	}
	return task.NewPhoto(fh.Filename, data), nil
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tasks, err := s.filtered(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	var fetcher spreadsheet.PhotoFetcher
	if s.upstream != nil && r.URL.Query().Get("photos") != "0" {
		fetcher = s.upstream
	}
	var buf bytes.Buffer
	if err := spreadsheet.Export(ctx, &buf, tasks, fetcher); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	writeFile(ctx, w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		spreadsheet.ExportFileName, buf.Bytes())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var buf bytes.Buffer
	if err := monitor.WriteReport(&buf, monitor.Build(s.store.Snapshot(), s.now())); err != nil {
		cerr.SetNewJSONError(ctx, cerr.Internal, "cannot render report", err)
		return
	}
	writeFile(ctx, w, "application/pdf", "Monitoring_Tugas.pdf", buf.Bytes())
}

func writeFile(ctx context.Context, w http.ResponseWriter, contentType, name string, body []byte) {
	cerr.MarkWritten(ctx)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
