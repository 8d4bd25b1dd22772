// Package pyannote implements a diarization Loader backed by a pyannote
// HTTP sidecar.
//
// The sidecar keeps one pipeline per load call:
//
//	POST   /pipelines               {"model","token","device","trust_source"} -> {"id"}
//	POST   /pipelines/{id}/diarize  multipart: audio (WAV), min_speakers, max_speakers
//	DELETE /pipelines/{id}
//	GET    /health
//
// Trust is requested per pipeline and dropped with it on DELETE.
package pyannote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kbukum/diarkit/audio"
	"github.com/kbukum/diarkit/diarization"
	"github.com/kbukum/diarkit/errors"
	"github.com/kbukum/diarkit/httpclient"
	"github.com/kbukum/diarkit/provider"
)

const (
	// ProviderName is the registered name for the pyannote backend.
	ProviderName = "pyannote"

	defaultBaseURL = "http://localhost:8388"
	defaultTimeout = 30 * time.Minute
)

// Config holds configuration for the pyannote sidecar client.
type Config struct {
	BaseURL string        `json:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// Provider implements diarization.Loader against the sidecar.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

var _ diarization.Loader = (*Provider)(nil)

// NewProvider creates a new pyannote loader.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory that builds loaders from a generic
// config map. timeout may be a time.Duration or a duration string.
func Factory() provider.Factory[diarization.Loader] {
	return func(cfg map[string]any) (diarization.Loader, error) {
		pc := Config{}
		if v, ok := cfg["base_url"].(string); ok {
			pc.BaseURL = v
		}
		switch v := cfg["timeout"].(type) {
		case time.Duration:
			pc.Timeout = v
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, errors.Configuration("diarization.options.timeout", fmt.Sprintf("invalid duration %q", v))
			}
			pc.Timeout = d
		}
		return NewProvider(pc)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	return err == nil
}

// Load asks the sidecar to construct a pipeline for spec.
func (p *Provider) Load(ctx context.Context, spec diarization.Spec) (diarization.Capability, error) {
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/pipelines",
		Body: loadRequest{
			Model:       spec.Model,
			Token:       spec.Token,
			Device:      spec.Device,
			TrustSource: spec.TrustSource,
		},
	})
	if err != nil {
		appErr := errors.CapabilityUnavailable(ProviderName, err)
		if resp != nil {
			appErr.WithDetail("status", resp.StatusCode)
		}
		return nil, appErr
	}

	var loaded loadResponse
	if err := resp.DecodeJSON(&loaded); err != nil {
		return nil, errors.CapabilityUnavailable(ProviderName, err)
	}
	if loaded.ID == "" {
		return nil, errors.CapabilityUnavailable(ProviderName, fmt.Errorf("sidecar returned no pipeline id"))
	}
	return &pipeline{id: loaded.ID, client: p.client}, nil
}

// pipeline is one loaded sidecar pipeline.
type pipeline struct {
	id     string
	client *httpclient.Client
}

var (
	_ diarization.Capability = (*pipeline)(nil)
	_ provider.Closeable     = (*pipeline)(nil)
)

func (c *pipeline) Name() string { return ProviderName }

func (c *pipeline) IsAvailable(ctx context.Context) bool {
	_, err := c.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	return err == nil
}

// Execute uploads the waveform as WAV and returns the sidecar's turns.
func (c *pipeline) Execute(ctx context.Context, w diarization.Waveform) ([]diarization.Segment, error) {
	wavData, err := audio.EncodeWAVBytes(&audio.Asset{Samples: w.Samples, SampleRate: w.SampleRate})
	if err != nil {
		return nil, errors.Internal(err)
	}

	fields := map[string]string{}
	if w.MinSpeakers > 0 {
		fields["min_speakers"] = strconv.Itoa(w.MinSpeakers)
	}
	if w.MaxSpeakers > 0 {
		fields["max_speakers"] = strconv.Itoa(w.MaxSpeakers)
	}

	resp, err := c.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/pipelines/" + url.PathEscape(c.id) + "/diarize",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName:   "audio",
				FileName:    "audio.wav",
				ContentType: "audio/wav",
				Data:        wavData,
			}},
		},
	})
	if err != nil {
		return nil, httpclient.ToAppError(ProviderName, err)
	}

	var result pyannoteResponse
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, errors.ExternalServiceError(ProviderName, err)
	}
	if result.Error != "" {
		return nil, errors.ExternalServiceError(ProviderName, fmt.Errorf("diarization error: %s", result.Error))
	}
	return toSegments(result.Segments), nil
}

// Close releases the pipeline on the sidecar. An already released
// pipeline is not an error.
func (c *pipeline) Close(ctx context.Context) error {
	_, err := c.client.Do(ctx, httpclient.Request{
		Method: http.MethodDelete,
		Path:   "/pipelines/" + url.PathEscape(c.id),
	})
	if err != nil && !httpclient.IsNotFound(err) {
		return fmt.Errorf("release pipeline %s: %w", c.id, err)
	}
	return nil
}

// --- internal sidecar API types ---

type loadRequest struct {
	Model       string `json:"model"`
	Token       string `json:"token"`
	Device      string `json:"device"`
	TrustSource bool   `json:"trust_source"`
}

type loadResponse struct {
	ID     string `json:"id"`
	Device string `json:"device,omitempty"`
}

type pyannoteResponse struct {
	Segments    []pyannoteSegment `json:"segments"`
	NumSpeakers int               `json:"num_speakers"`
	Error       string            `json:"error,omitempty"`
}

type pyannoteSegment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

func toSegments(in []pyannoteSegment) []diarization.Segment {
	segments := make([]diarization.Segment, len(in))
	for i, seg := range in {
		segments[i] = diarization.Segment{
			Start:   seg.StartTime,
			End:     seg.EndTime,
			Speaker: seg.SpeakerID,
		}
	}
	return segments
}
