package pushsubscription

import "time"

// Subscription is a browser push endpoint that wants task notifications.
type Subscription struct {
	ID        string    `yaml:"id" json:"id"`
	Endpoint  string    `yaml:"endpoint" json:"endpoint"`
	P256dhKey string    `yaml:"p256dh_key" json:"p256dh"`
	AuthKey   string    `yaml:"auth_key" json:"auth"`
	Username  string    `yaml:"username,omitempty" json:"username,omitempty"`
	CreatedAt time.Time `yaml:"created_at" json:"createdAt"`
}
