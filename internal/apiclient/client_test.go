package apiclient

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/pkg/cerr"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func newTestClient(t *testing.T, h http.Handler) (*Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	require.NoError(t, err)
	return c, &hits
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListTasks(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":1,"title":"A","status":"Menunggu","tanggalTugas":"2025-11-15"},null,{"id":"2","title":"B"}]`)
	}))

	list, err := c.ListTasks(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, task.ID("1"), list[0].ID)
	assert.Equal(t, "2025-11-15", list[0].Date.String())
	assert.Equal(t, task.ID("2"), list[1].ID)
}

func TestListTasks_ServerError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "database down"})
	}))

	_, err := c.ListTasks(t.Context())
	require.Error(t, err)
	cErr := cerr.From(err)
	assert.Equal(t, cerr.Internal, cErr.Code)
	assert.Equal(t, "database down", cErr.Msg)
}

func TestListTasks_Unreachable(t *testing.T) {
	c, err := New("http://127.0.0.1:1")
	require.NoError(t, err)
	_, err = c.ListTasks(t.Context())
	assert.True(t, cerr.IsCode(err, cerr.Unavailable))
}

func TestUpdateStatus_Done(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/tasks/5/status", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Selesai", r.FormValue("status"))
		assert.Equal(t, "budi", r.FormValue("username"))
		assert.Equal(t, "sudah bersih", r.FormValue("keteranganTugas"))
		f, fh, err := r.FormFile("fotoAfter")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "after.png", fh.Filename)
		assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))

		writeJSON(w, http.StatusOK, map[string]any{
			"message":     "ok",
			"updatedTask": map[string]any{"id": 5, "title": "Sapu", "status": "Selesai", "dikerjakanOleh": "budi"},
		})
	}))

	current := &task.Task{ID: "5", Title: "Sapu", Status: task.StatusInProgress}
	updated, err := c.UpdateStatus(t.Context(), current, task.StatusChange{
		To:         task.StatusDone,
		Username:   "budi",
		AfterPhoto: task.NewPhoto("after.png", pngHeader),
		Remark:     " sudah bersih ",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, task.StatusDone, updated.Status)
	assert.Equal(t, "budi", updated.Worker)
}

func TestUpdateStatus_ValidationFailsWithoutRequest(t *testing.T) {
	c, hits := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))
	inProgress := &task.Task{ID: "5", Status: task.StatusInProgress}
	waiting := &task.Task{ID: "6", Status: task.StatusWaiting}

	cases := []struct {
		name    string
		current *task.Task
		change  task.StatusChange
		code    cerr.Code
	}{
		{"done without photo", inProgress, task.StatusChange{To: task.StatusDone, Username: "budi", Remark: "ok"}, cerr.InvalidArgument},
		{"done without remark", inProgress, task.StatusChange{To: task.StatusDone, Username: "budi", AfterPhoto: task.NewPhoto("a.png", pngHeader)}, cerr.InvalidArgument},
		{"reject without reason", waiting, task.StatusChange{To: task.StatusRejected, Username: "budi", Remark: "  "}, cerr.InvalidArgument},
		{"skip in progress", waiting, task.StatusChange{To: task.StatusDone, Username: "budi", AfterPhoto: task.NewPhoto("a.png", pngHeader), Remark: "x"}, cerr.FailedPrecondition},
		{"not logged in", waiting, task.StatusChange{To: task.StatusInProgress}, cerr.Unauthenticated},
		{"mismatched id", waiting, task.StatusChange{TaskID: "7", To: task.StatusInProgress, Username: "budi"}, cerr.InvalidArgument},
		{"unknown task", nil, task.StatusChange{To: task.StatusInProgress, Username: "budi"}, cerr.NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.UpdateStatus(t.Context(), tc.current, tc.change)
			require.Error(t, err)
			assert.True(t, cerr.IsCode(err, tc.code), "got %v", err)
		})
	}
	assert.Zero(t, hits.Load())
}

func TestUpdateStatus_ServerRejects(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Tugas sudah diambil"})
	}))
	_, err := c.UpdateStatus(t.Context(), &task.Task{ID: "1", Status: task.StatusWaiting},
		task.StatusChange{To: task.StatusInProgress, Username: "budi"})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	assert.Equal(t, "Tugas sudah diambil", cerr.From(err).Msg)
}

func TestUpdateStatus_NoConfirmation(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "tidak ada alat", r.FormValue("keteranganTugas"))
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}))
	updated, err := c.UpdateStatus(t.Context(), &task.Task{ID: "1", Status: task.StatusWaiting},
		task.StatusChange{To: task.StatusRejected, Username: "budi", Remark: "tidak ada alat"})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestCreateTask_Multipart(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Cat ulang", r.FormValue("title"))
		assert.Equal(t, "Biasa", r.FormValue("priority"))
		assert.Equal(t, "2025-11-15", r.FormValue("tanggalTugas"))
		_, fh, err := r.FormFile("fotoBefore")
		require.NoError(t, err)
		assert.Equal(t, "before.png", fh.Filename)
		writeJSON(w, http.StatusCreated, map[string]any{"id": 11, "title": "Cat ulang", "status": "Menunggu"})
	}))

	created, err := c.CreateTask(t.Context(), task.NewTask{
		Title:       " Cat ulang ",
		Date:        task.NewDate(2025, 11, 15),
		BeforePhoto: task.NewPhoto("before.png", pngHeader),
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, task.ID("11"), created.ID)
}

func TestCreateTask_InvalidNeverSent(t *testing.T) {
	c, hits := newTestClient(t, http.NotFoundHandler())
	_, err := c.CreateTask(t.Context(), task.NewTask{Title: "tanpa tanggal"})
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	_, err = c.CreateTaskJSON(t.Context(), task.NewTask{Date: task.NewDate(2025, 1, 1)})
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	assert.Zero(t, hits.Load())
}

func TestCreateTaskJSON(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Impor", body["title"])
		assert.Equal(t, "Urgent", body["priority"])
		assert.Equal(t, "2025-11-20", body["tanggalTugas"])
		assert.Equal(t, "Menunggu", body["status"])
		writeJSON(w, http.StatusCreated, map[string]any{"task": map[string]any{"id": 3, "title": "Impor"}})
	}))

	created, err := c.CreateTaskJSON(t.Context(), task.NewTask{
		Title: "Impor", Priority: task.PriorityUrgent, Date: task.NewDate(2025, 11, 20),
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, task.ID("3"), created.ID)
}

func TestLogin(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "rahasia" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Password salah"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": "tok", "user": map[string]string{"username": body["username"]}})
	}))

	res, err := c.Login(t.Context(), "budi", "rahasia")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, "budi", res.User.Username)

	_, err = c.Login(t.Context(), "budi", "salah")
	assert.True(t, cerr.IsCode(err, cerr.Unauthenticated))
	assert.Equal(t, "Password salah", cerr.From(err).Msg)
}

func TestWithToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithToken("abc"))
	require.NoError(t, err)
	_, err = c.ListTasks(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", auth)
}

func TestResolveURLAndFetchPhoto(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/uploads/a.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(pngHeader)
	}))

	assert.Equal(t, c.BaseURL()+"/uploads/a.png", c.ResolveURL("/uploads/a.png"))
	assert.Equal(t, c.BaseURL()+"/uploads/a.png", c.ResolveURL("uploads/a.png"))
	assert.Equal(t, "https://cdn.example.com/x.jpg", c.ResolveURL("https://cdn.example.com/x.jpg"))
	assert.Empty(t, c.ResolveURL(""))

	p, err := c.FetchPhoto(t.Context(), "/uploads/a.png")
	require.NoError(t, err)
	assert.Equal(t, "a.png", p.Name)
	assert.Equal(t, "image/png", p.ContentType)

	_, err = c.FetchPhoto(t.Context(), "/uploads/missing.png")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
}
