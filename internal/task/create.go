package task

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tugaskita/tugasboard/pkg/cerr"
)

// Photo is an image attached to a create or status-change request.
type Photo struct {
	Name        string
	ContentType string
	Data        []byte
}

// LoadPhoto reads an image from disk and sniffs its content type.
func LoadPhoto(path string) (*Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "cannot read photo", err)
	}
	return NewPhoto(filepath.Base(path), data), nil
}

func NewPhoto(name string, data []byte) *Photo {
	return &Photo{
		Name:        name,
		ContentType: http.DetectContentType(data),
		Data:        data,
	}
}

// NewTask is the payload of a task creation, from the form or a spreadsheet row.
type NewTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Date        Date     `json:"tanggalTugas"`
	Status      Status   `json:"status,omitempty"`
	BeforePhoto *Photo   `json:"-"`
}

func (n *NewTask) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return cerr.NewError(cerr.InvalidArgument, "title is required", nil).AddDetail("title")
	}
	if n.Date.IsZero() {
		return cerr.NewError(cerr.InvalidArgument, "task date is required", nil).AddDetail("tanggalTugas")
	}
	if n.Priority != "" && !n.Priority.Valid() {
		return cerr.NewError(cerr.InvalidArgument, "unknown priority", nil).AddDetail("priority")
	}
	return nil
}

// Normalize fills the defaults the server expects for a fresh task.
func (n *NewTask) Normalize() {
	n.Title = strings.TrimSpace(n.Title)
	n.Priority = n.Priority.OrDefault()
	if n.Status == "" {
		n.Status = StatusWaiting
	}
}
