package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/tugaskita/tugasboard/pkg/storage"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3200"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type APIEnv struct {
	BaseURL        string        `envconfig:"API_BASE_URL" default:"http://localhost:5000"`
	SocketURL      string        `envconfig:"SOCKET_URL"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	PageSize       int           `envconfig:"PAGE_SIZE" default:"12"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".tugasboard/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"tugasboard/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-southeast-1"`
}

type VAPIDEnv struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDContact    string `envconfig:"VAPID_CONTACT" default:"mailto:admin@localhost"`
}

type ImportEnv struct {
	WatchDir        string `envconfig:"IMPORT_WATCH_DIR"`
	DefaultPriority string `envconfig:"IMPORT_DEFAULT_PRIORITY" default:"Biasa"`
}

// HookEnv points at the YAML file of commands to run on task events.
type HookEnv struct {
	HooksFile string `envconfig:"HOOKS_FILE"`
}

type Env struct {
	BaseEnv
	APIEnv
	StorageEnv
	VAPIDEnv
	ImportEnv
	HookEnv
}

const namespace = "TUGASBOARD"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if env.PageSize <= 0 {
		return nil, fmt.Errorf("failed to load env: %s_PAGE_SIZE must be positive", namespace)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (e *BaseEnv) Addr() string {
	return e.HTTPHost + ":" + e.HTTPPort
}

// SocketBaseURL is where the push channel lives; the API host unless overridden.
func (e *APIEnv) SocketBaseURL() string {
	if e.SocketURL != "" {
		return e.SocketURL
	}
	return e.BaseURL
}

func (e *StorageEnv) Options() storage.Options {
	return storage.Options{
		Type:     e.Type,
		BaseDir:  e.BaseDir,
		S3Bucket: e.S3Bucket,
		S3Prefix: e.S3Prefix,
		S3Region: e.S3Region,
	}
}

// Configured reports whether push notifications can be signed.
func (e *VAPIDEnv) Configured() bool {
	return e.VAPIDPublicKey != "" && e.VAPIDPrivateKey != ""
}
