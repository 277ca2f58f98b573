package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tugaskita/tugasboard/internal/eventbus"
	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/internal/taskstore"
	"github.com/tugaskita/tugasboard/pkg/cerr"
)

type fakeUpstream struct {
	change  task.StatusChange
	current *task.Task
	result  *task.Task
	err     error
}

func (f *fakeUpstream) UpdateStatus(_ context.Context, current *task.Task, change task.StatusChange) (*task.Task, error) {
	f.current, f.change = current, change
	return f.result, f.err
}

func (f *fakeUpstream) FetchPhoto(context.Context, string) (*task.Photo, error) {
	return nil, cerr.NewError(cerr.NotFound, "no photo", nil)
}

func newTestServer(t *testing.T, up Upstream) (*httptest.Server, *taskstore.Store) {
	t.Helper()
	bus := eventbus.New()
	store := taskstore.New(taskstore.WithEventBus(bus))
	store.Replace([]*task.Task{
		{ID: "5", Title: "Bersihkan gudang", Status: task.StatusInProgress, Worker: "budi", Date: task.NewDate(2025, 11, 14)},
		{ID: "6", Title: "Cek genset", Status: task.StatusWaiting, Date: task.NewDate(2025, 11, 16)},
	})
	s := NewServer(store, up, bus, 12)
	s.now = func() time.Time { return time.Date(2025, 11, 15, 8, 0, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Use(cerr.NewConvertErrorChiMiddleware())
	s.Routes(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, store
}

func TestUpdateStatus_ForwardsPhotoAndRemark(t *testing.T) {
	done := &task.Task{ID: "5", Title: "Bersihkan gudang", Status: task.StatusDone, Worker: "budi", Note: "rapi"}
	up := &fakeUpstream{result: done}
	ts, store := newTestServer(t, up)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("status", "done"))
	require.NoError(t, mw.WriteField("username", "budi"))
	require.NoError(t, mw.WriteField("keteranganTugas", "rapi"))
	fw, err := mw.CreateFormFile("fotoAfter", "after.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\nrest"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/tasks/5/status", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, task.ID("5"), up.current.ID)
	assert.Equal(t, task.StatusDone, up.change.To)
	assert.Equal(t, "rapi", up.change.Remark)
	require.NotNil(t, up.change.AfterPhoto)
	assert.Equal(t, "after.png", up.change.AfterPhoto.Name)
	assert.Equal(t, "image/png", up.change.AfterPhoto.ContentType)

	got, ok := store.Get("5")
	require.True(t, ok)
	assert.Equal(t, task.StatusDone, got.Status)
}

func TestUpdateStatus_UpstreamErrorLeavesStore(t *testing.T) {
	up := &fakeUpstream{err: cerr.NewError(cerr.Unavailable, "API unreachable", nil)}
	ts, store := newTestServer(t, up)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("status", string(task.StatusInProgress)))
	require.NoError(t, mw.WriteField("username", "siti"))
	require.NoError(t, mw.Close())
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/tasks/6/status", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	got, _ := store.Get("6")
	assert.Equal(t, task.StatusWaiting, got.Status)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	up := &fakeUpstream{}
	ts, _ := newTestServer(t, up)

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/tasks/6/status?status=later", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, up.current)
}

func TestOverview_UsesClock(t *testing.T) {
	ts, _ := newTestServer(t, &fakeUpstream{})
	resp, err := http.Get(ts.URL + "/overview")
	require.NoError(t, err)
	defer resp.Body.Close()

	var o struct {
		Today    string       `json:"today"`
		Overdue  []*task.Task `json:"overdue"`
		Upcoming []*task.Task `json:"upcoming"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&o))
	assert.Equal(t, "2025-11-15", o.Today)
	require.Len(t, o.Overdue, 1)
	assert.Equal(t, task.ID("5"), o.Overdue[0].ID)
	require.Len(t, o.Upcoming, 1)
}
