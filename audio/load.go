package audio

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbukum/diarkit/errors"
	"github.com/kbukum/diarkit/logger"
)

type loadOptions struct {
	sampleRate int
	ffmpeg     string
}

// Option configures Load.
type Option func(*loadOptions)

// WithSampleRate sets the target sample rate. Defaults to DefaultSampleRate.
func WithSampleRate(rate int) Option {
	return func(o *loadOptions) { o.sampleRate = rate }
}

// WithFFmpeg sets the ffmpeg binary used for non-WAV containers. An empty
// value disables the ffmpeg path.
func WithFFmpeg(binary string) Option {
	return func(o *loadOptions) { o.ffmpeg = binary }
}

// Load decodes the file at path into a mono asset at the target sample rate.
//
// Integer PCM WAV files are decoded in-process. Everything else, and WAV
// variants the native decoder rejects, goes through ffmpeg. A missing path
// fails with ASSET_NOT_FOUND; anything that cannot be decoded fails with
// ASSET_DECODE_ERROR.
func Load(ctx context.Context, path string, opts ...Option) (*Asset, error) {
	o := loadOptions{sampleRate: DefaultSampleRate, ffmpeg: DefaultFFmpegBinary}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sampleRate <= 0 {
		return nil, errors.InvalidInput("sample_rate", fmt.Sprintf("sample rate must be positive, got %d", o.sampleRate))
	}

	info, err := os.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.AssetNotFound(path)
		}
		return nil, errors.AssetDecode(path, err)
	}
	if info.IsDir() {
		return nil, errors.AssetDecode(path, fmt.Errorf("%s is a directory", path))
	}

	log := logger.Get("audio").WithContext(ctx)

	var nativeErr error
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		asset, err := loadWAV(path, o.sampleRate)
		if err == nil {
			log.Debug("audio decoded", logger.Fields(logger.FieldPath, path, "decoder", "wav", "seconds", asset.Duration()))
			return asset, nil
		}
		nativeErr = err
		log.Debug("native wav decode failed, trying ffmpeg", logger.Fields(logger.FieldPath, path, logger.FieldError, err.Error()))
	}

	if o.ffmpeg == "" {
		if nativeErr == nil {
			nativeErr = fmt.Errorf("unsupported container %q and ffmpeg is disabled", filepath.Ext(path))
		}
		return nil, errors.AssetDecode(path, nativeErr)
	}

	decoder := newFFmpegDecoder(o.ffmpeg)
	if !decoder.IsAvailable(ctx) {
		return nil, errors.AssetDecode(path, stderrors.Join(nativeErr, fmt.Errorf("%s not found on PATH", o.ffmpeg)))
	}
	samples, err := decoder.Execute(ctx, decodeRequest{Path: path, SampleRate: o.sampleRate})
	if err != nil {
		return nil, errors.AssetDecode(path, err)
	}
	if len(samples) == 0 {
		return nil, errors.AssetDecode(path, fmt.Errorf("no audio samples decoded"))
	}

	asset := &Asset{Samples: samples, SampleRate: o.sampleRate}
	log.Debug("audio decoded", logger.Fields(logger.FieldPath, path, "decoder", o.ffmpeg, "seconds", asset.Duration()))
	return asset, nil
}

func loadWAV(path string, targetRate int) (*Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	interleaved, rate, channels, err := decodeWAV(f)
	if err != nil {
		return nil, err
	}
	mono := Downmix(interleaved, channels)
	if len(mono) == 0 {
		return nil, fmt.Errorf("wav file contains no samples")
	}
	return &Asset{Samples: Resample(mono, rate, targetRate), SampleRate: targetRate}, nil
}
