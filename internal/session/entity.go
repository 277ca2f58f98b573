package session

import "time"

// Session is the login remembered between CLI invocations.
type Session struct {
	Username   string    `yaml:"username"`
	Token      string    `yaml:"token"`
	LoggedInAt time.Time `yaml:"logged_in_at"`
}
