package webhook

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/kbukum/diarkit/errors"
	"github.com/kbukum/diarkit/httpclient"
	"github.com/kbukum/diarkit/observability"
	"github.com/kbukum/diarkit/provider"
)

// ProviderName is the sink name used in logs and errors.
const ProviderName = "webhook"

const defaultTimeout = 10 * time.Second

// Config configures the notifier.
type Config struct {
	URL     string        `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Notification announces a processed recording.
type Notification struct {
	Filename   string `json:"filename"`
	FolderPath string `json:"folder_path"`
}

// NotificationFor builds a notification for the audio file at path.
func NotificationFor(path string) Notification {
	dir := filepath.Dir(path)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return Notification{Filename: filepath.Base(path), FolderPath: dir}
}

// Notifier posts notifications as JSON to a single URL.
type Notifier struct {
	url    string
	client *httpclient.Client
}

var _ provider.Sink[Notification] = (*Notifier)(nil)

// New creates a notifier. The URL is required.
func New(cfg Config) (*Notifier, error) {
	cfg.ApplyDefaults()
	if cfg.URL == "" {
		return nil, errors.Configuration("webhook.url", "webhook url is required")
	}
	client, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	return &Notifier{url: cfg.URL, client: client}, nil
}

func (n *Notifier) Name() string { return ProviderName }

// IsAvailable reports whether a URL is configured; the endpoint itself is
// only contacted by Send.
func (n *Notifier) IsAvailable(_ context.Context) bool { return n.url != "" }

// Send posts notification. Non-2xx responses fail with
// EXTERNAL_SERVICE_ERROR and an exceeded deadline with TIMEOUT.
func (n *Notifier) Send(ctx context.Context, notification Notification) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanNotify)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrAudioPath, notification.Filename)

	_, err := n.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   n.url,
		Body:   notification,
	})
	if err != nil {
		err = httpclient.ToAppError(ProviderName, err)
		observability.SetSpanError(ctx, err)
		return err
	}
	return nil
}
