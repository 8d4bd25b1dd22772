package clips

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/kbukum/diarkit/audio"
	"github.com/kbukum/diarkit/diarization"
	"github.com/kbukum/diarkit/errors"
	"github.com/kbukum/diarkit/logger"
	"github.com/kbukum/diarkit/process"
)

const (
	DefaultInterval = 600 * time.Second
	DefaultLength   = 10 * time.Second
	DefaultDir      = "voice_enrollment/samples"
)

// Config controls clip placement and output.
type Config struct {
	// Interval is the spacing of fixed-interval samples.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// Length is the maximum duration of each clip.
	Length    time.Duration `yaml:"length" mapstructure:"length"`
	OutputDir string        `yaml:"output_dir" mapstructure:"output_dir"`
	// SampleRate is the rate audio is decoded at for native clips.
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate"`
	// FFmpeg decodes non-WAV sources; empty disables it.
	FFmpeg string `yaml:"ffmpeg" mapstructure:"ffmpeg"`
	// Cut extracts clips from the source file with ffmpeg so they keep the
	// source's rate and channels. Otherwise clips are 16-bit mono WAV
	// written from the decoded audio.
	Cut bool `yaml:"cut" mapstructure:"cut"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Length <= 0 {
		c.Length = DefaultLength
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultDir
	}
	if c.SampleRate <= 0 {
		c.SampleRate = audio.DefaultSampleRate
	}
}

// Clip is one extracted file. Start and End are seconds in the source.
type Clip struct {
	Path    string  `json:"path"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
}

// Extractor writes listening samples for labeling speakers.
type Extractor struct {
	cfg    Config
	ffmpeg *process.Adapter
	log    *logger.Logger
}

// New creates an extractor.
func New(cfg Config) *Extractor {
	cfg.ApplyDefaults()
	e := &Extractor{cfg: cfg, log: logger.Get("clips")}
	if cfg.Cut && cfg.FFmpeg != "" {
		e.ffmpeg = process.NewAdapter(process.Config{Binary: cfg.FFmpeg, Timeout: time.Minute})
	}
	return e
}

// Samples writes a clip of Length at every multiple of Interval, named
// sample_MMMMmin_SSsec.wav after its offset. The last clip may be shorter.
func (e *Extractor) Samples(ctx context.Context, path string) ([]Clip, error) {
	asset, err := audio.Load(ctx, path, audio.WithSampleRate(e.cfg.SampleRate), audio.WithFFmpeg(e.cfg.FFmpeg))
	if err != nil {
		return nil, err
	}
	duration := asset.Duration()
	interval := e.cfg.Interval.Seconds()
	length := e.cfg.Length.Seconds()

	var planned []Clip
	for off := 0.0; off < duration; off += interval {
		planned = append(planned, Clip{
			Path:  filepath.Join(e.cfg.OutputDir, SampleName(off)),
			Start: off,
			End:   min(off+length, duration),
		})
	}
	return e.write(ctx, path, asset, planned)
}

// Speakers writes one clip per speaker in report, taken from the start of
// that speaker's longest segment. Segment times are shifted by the report's
// window so clips line up with the source file.
func (e *Extractor) Speakers(ctx context.Context, path string, report *diarization.Report) ([]Clip, error) {
	if report == nil || len(report.Segments) == 0 {
		return nil, errors.InvalidInput("report", "report has no segments")
	}
	asset, err := audio.Load(ctx, path, audio.WithSampleRate(e.cfg.SampleRate), audio.WithFFmpeg(e.cfg.FFmpeg))
	if err != nil {
		return nil, err
	}

	offset := 0.0
	if report.Window != nil {
		offset = report.Window.Start
	}
	longest := LongestSegments(report.Segments)
	duration := asset.Duration()

	planned := make([]Clip, 0, len(longest))
	names := make(map[string]bool, len(longest))
	for _, speaker := range diarization.DistinctSpeakers(report.Segments) {
		seg := longest[speaker]
		start := offset + seg.Start
		end := min(offset+seg.End, start+e.cfg.Length.Seconds(), duration)
		if start >= end {
			e.log.Warn("speaker segment outside audio", logger.Fields("speaker", speaker, "start", start))
			continue
		}
		planned = append(planned, Clip{
			Path:    filepath.Join(e.cfg.OutputDir, speakerFileName(speaker, names)),
			Start:   start,
			End:     end,
			Speaker: speaker,
		})
	}
	return e.write(ctx, path, asset, planned)
}

// speakerFileName names a speaker clip. Labels that sanitise to a name
// already in used get a numeric suffix.
func speakerFileName(speaker string, used map[string]bool) string {
	base := "speaker_" + safeLabel(speaker)
	name := base
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	used[name] = true
	return name + ".wav"
}

// SampleName names the fixed-interval clip starting at offset seconds.
func SampleName(offset float64) string {
	sec := int(offset)
	return fmt.Sprintf("sample_%04dmin_%02dsec.wav", sec/60, sec%60)
}

// LongestSegments returns each speaker's longest segment. Ties keep the
// earliest.
func LongestSegments(segments []diarization.Segment) map[string]diarization.Segment {
	out := make(map[string]diarization.Segment)
	for _, s := range segments {
		if cur, ok := out[s.Speaker]; !ok || s.Duration() > cur.Duration() {
			out[s.Speaker] = s
		}
	}
	return out
}

func (e *Extractor) write(ctx context.Context, path string, asset *audio.Asset, planned []Clip) ([]Clip, error) {
	if err := os.MkdirAll(e.cfg.OutputDir, 0o755); err != nil {
		return nil, errors.Internal(fmt.Errorf("create %s: %w", e.cfg.OutputDir, err))
	}

	written := make([]Clip, 0, len(planned))
	for _, c := range planned {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		var err error
		if e.ffmpeg != nil {
			err = e.cut(ctx, path, c)
		} else {
			err = e.slice(asset, c)
		}
		if err != nil {
			return written, err
		}
		e.log.Info("saved clip", logger.Fields(
			logger.FieldPath, c.Path,
			"start", c.Start,
			"end", c.End,
		))
		written = append(written, c)
	}
	return written, nil
}

func (e *Extractor) slice(asset *audio.Asset, c Clip) error {
	clip, _, err := audio.Truncate(asset, audio.Window{Start: c.Start, End: c.End})
	if err != nil {
		return err
	}
	if err := audio.WriteWAV(c.Path, clip); err != nil {
		return errors.Internal(err)
	}
	return nil
}

func (e *Extractor) cut(ctx context.Context, path string, c Clip) error {
	cmd := process.FFmpeg("", "-y",
		"-ss", formatSeconds(c.Start),
		"-t", formatSeconds(c.End-c.Start),
		"-i", path,
		c.Path,
	)
	e.log.Debug("cutting clip", logger.Fields("command", cmd.String()))
	if _, err := e.ffmpeg.Run(ctx, cmd); err != nil {
		return errors.ExternalServiceError(e.ffmpeg.Name(), err)
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func safeLabel(label string) string {
	if s := unsafeChars.ReplaceAllString(label, "_"); s != "" {
		return s
	}
	return "unknown"
}
