package apiclient

import (
	"context"
	"io"
	"net/http"
	"path"

	"github.com/tugaskita/tugasboard/internal/task"
	"github.com/tugaskita/tugasboard/pkg/cerr"
)

const maxPhotoSize = 10 << 20

// FetchPhoto downloads the image behind a task photo reference.
func (c *Client) FetchPhoto(ctx context.Context, ref string) (*task.Photo, error) {
	target := c.ResolveURL(ref)
	if target == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "empty photo reference", nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "invalid photo reference", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cerr.From(ctxErr)
		}
		return nil, cerr.NewError(cerr.Unavailable, "cannot download photo", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, cerr.NewError(cerr.CodeFromHTTPStatus(resp.StatusCode), "cannot download photo", nil).AddDetail(target)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoSize))
	if err != nil {
		return nil, cerr.NewError(cerr.Unavailable, "cannot download photo", err)
	}
	return task.NewPhoto(path.Base(req.URL.Path), data), nil
}
