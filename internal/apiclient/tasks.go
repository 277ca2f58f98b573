package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/pkg/cerr"
)

// ListTasks fetches every task. Nil entries in the response are dropped.
func (c *Client) ListTasks(ctx context.Context) ([]*task.Task, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/tasks", nil, "")
	if err != nil {
		return nil, err
	}
	var list []*task.Task
	if err := c.do(req, &list); err != nil {
		return nil, err
	}
	out := list[:0]
	for _, t := range list {
		if t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

// createdTask accepts the bare task or the wrapped forms the server uses.
type createdTask struct {
	task *task.Task
}

func (c *createdTask) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Task    *task.Task `json:"task"`
		NewTask *task.Task `json:"newTask"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	switch {
	case wrapped.Task.Valid():
		c.task = wrapped.Task
		return nil
	case wrapped.NewTask.Valid():
		c.task = wrapped.NewTask
		return nil
	}
	var bare task.Task
	if err := json.Unmarshal(data, &bare); err != nil {
		return err
	}
	if bare.Valid() {
		c.task = &bare
	}
	return nil
}

// CreateTask submits the task form, including the optional before photo.
// The returned task is nil when the server only acknowledges the request.
func (c *Client) CreateTask(ctx context.Context, n task.NewTask) (*task.Task, error) {
	n.Normalize()
	if err := n.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"title", n.Title},
		{"description", n.Description},
		{"priority", string(n.Priority)},
		{"tanggalTugas", n.Date.String()},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, cerr.NewError(cerr.Internal, "cannot encode request", err)
		}
	}
	if n.BeforePhoto != nil {
		if err := writePhoto(mw, "fotoBefore", n.BeforePhoto); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, cerr.NewError(cerr.Internal, "cannot encode request", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/tasks", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var out createdTask
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.task, nil
}

// CreateTaskJSON posts a task without a photo, as the spreadsheet import does.
func (c *Client) CreateTaskJSON(ctx context.Context, n task.NewTask) (*task.Task, error) {
	n.Normalize()
	if err := n.Validate(); err != nil {
		return nil, err
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/tasks", n)
	if err != nil {
		return nil, err
	}
	var out createdTask
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.task, nil
}

type statusResponse struct {
	UpdatedTask *task.Task `json:"updatedTask"`
	Message     string     `json:"message"`
}

// UpdateStatus requests a status change for current. The change is checked
// against current's status first and nothing is sent when that fails. The
// returned task is the server's confirmed version, or nil if it sent none.
func (c *Client) UpdateStatus(ctx context.Context, current *task.Task, change task.StatusChange) (*task.Task, error) {
	if current == nil {
		return nil, cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	if change.TaskID == "" {
		change.TaskID = current.ID
	}
	if change.TaskID != current.ID {
		return nil, cerr.NewError(cerr.InvalidArgument,
			fmt.Sprintf("status change for %s applied to task %s", change.TaskID, current.ID), nil)
	}
	if err := task.ValidateTransition(current.Status, change); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("status", string(change.To)); err != nil {
		return nil, cerr.NewError(cerr.Internal, "cannot encode request", err)
	}
	if err := mw.WriteField("username", change.Username); err != nil {
		return nil, cerr.NewError(cerr.Internal, "cannot encode request", err)
	}
	switch change.To {
	case task.StatusDone:
		if err := writePhoto(mw, "fotoAfter", change.AfterPhoto); err != nil {
			return nil, err
		}
		if err := mw.WriteField("keteranganTugas", strings.TrimSpace(change.Remark)); err != nil {
			return nil, cerr.NewError(cerr.Internal, "cannot encode request", err)
		}
	case task.StatusRejected:
		if err := mw.WriteField("keteranganTugas", strings.TrimSpace(change.Remark)); err != nil {
			return nil, cerr.NewError(cerr.Internal, "cannot encode request", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, cerr.NewError(cerr.Internal, "cannot encode request", err)
	}

	path := "/api/tasks/" + url.PathEscape(change.TaskID.String()) + "/status"
	req, err := c.newRequest(ctx, http.MethodPut, path, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var out statusResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if !out.UpdatedTask.Valid() {
		return nil, nil
	}
	return out.UpdatedTask, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writePhoto(mw *multipart.Writer, field string, p *task.Photo) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, quoteEscaper.Replace(p.Name)))
	ct := p.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return cerr.NewError(cerr.Internal, "cannot encode photo", err)
	}
	if _, err := part.Write(p.Data); err != nil {
		return cerr.NewError(cerr.Internal, "cannot encode photo", err)
	}
	return nil
}
