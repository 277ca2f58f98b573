package apiclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/tugaskita/tugasboard/pkg/cerr"
)

type LoginResult struct {
	Token string `json:"token"`
	User  struct {
		Username string `json:"username"`
	} `json:"user"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "username and password are required", nil)
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var out LoginResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.User.Username == "" {
		out.User.Username = username
	}
	return &out, nil
}
