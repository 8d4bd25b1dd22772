package audio

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/kbukum/diarkit/errors"
)

func writeIntWAV(t *testing.T, path string, rate, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestWriteWAVThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	src := synthetic(2, DefaultSampleRate)
	if err := WriteWAV(path, src); err != nil {
		t.Fatalf("WriteWAV failed: %v", err)
	}

	got, err := Load(context.Background(), path, WithFFmpeg(""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.SampleRate != DefaultSampleRate || len(got.Samples) != len(src.Samples) {
		t.Fatalf("expected %d samples at 16kHz, got %d at %d", len(src.Samples), len(got.Samples), got.SampleRate)
	}
	for i := 0; i < len(src.Samples); i += 997 {
		if math.Abs(float64(got.Samples[i]-src.Samples[i])) > 1e-3 {
			t.Fatalf("sample %d: expected %v, got %v", i, src.Samples[i], got.Samples[i])
		}
	}
}

func TestLoadDownmixesAndResamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	frames := 8000
	data := make([]int, frames*2)
	for i := range frames {
		data[2*i] = 16384 // left +0.5
		data[2*i+1] = 0   // right silent
	}
	writeIntWAV(t, path, 8000, 2, data)

	got, err := Load(context.Background(), path, WithFFmpeg(""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Duration() != 1 {
		t.Errorf("expected 1s after resampling, got %v", got.Duration())
	}
	if len(got.Samples) != 16000 {
		t.Errorf("expected 16000 samples, got %d", len(got.Samples))
	}
	if got.Samples[100] != 0.25 {
		t.Errorf("expected downmixed value 0.25, got %v", got.Samples[100])
	}
}

func TestLoadCustomSampleRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := WriteWAV(path, synthetic(1, DefaultSampleRate)); err != nil {
		t.Fatal(err)
	}
	got, err := Load(context.Background(), path, WithSampleRate(8000), WithFFmpeg(""))
	if err != nil {
		t.Fatal(err)
	}
	if got.SampleRate != 8000 || len(got.Samples) != 8000 {
		t.Errorf("expected 8000 samples at 8kHz, got %d at %d", len(got.Samples), got.SampleRate)
	}
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.HasCode(err, errors.ErrCodeAssetNotFound) {
		t.Fatalf("expected ASSET_NOT_FOUND, got %v", err)
	}
}

func TestLoadDecodeErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.wav")
	if err := os.WriteFile(garbage, []byte("definitely not RIFF data"), 0o644); err != nil {
		t.Fatal(err)
	}
	mp3 := filepath.Join(dir, "talk.mp3")
	if err := os.WriteFile(mp3, []byte{0xff, 0xfb}, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		opts []Option
	}{
		{"invalid wav without ffmpeg", garbage, []Option{WithFFmpeg("")}},
		{"non-wav without ffmpeg", mp3, []Option{WithFFmpeg("")}},
		{"ffmpeg missing", mp3, []Option{WithFFmpeg("definitely-not-ffmpeg-xyz")}},
		{"directory", dir, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(context.Background(), tc.path, tc.opts...)
			if !errors.HasCode(err, errors.ErrCodeAssetDecode) {
				t.Errorf("expected ASSET_DECODE_ERROR, got %v", err)
			}
		})
	}
}

func TestLoadRejectsBadSampleRate(t *testing.T) {
	_, err := Load(context.Background(), "x.wav", WithSampleRate(0))
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestEncodeWAVBytes(t *testing.T) {
	raw, err := EncodeWAVBytes(&Asset{Samples: []float32{0, 1, -1, 2}, SampleRate: 8000})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte("RIFF")) || !bytes.Equal(raw[8:12], []byte("WAVE")) {
		t.Fatalf("expected RIFF/WAVE header, got %q", raw[:12])
	}

	samples, rate, channels, err := decodeWAV(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if rate != 8000 || channels != 1 || len(samples) != 4 {
		t.Fatalf("unexpected decode: rate=%d channels=%d n=%d", rate, channels, len(samples))
	}
	if math.Abs(float64(samples[2])+1) > 1e-4 || samples[3] > 1 || samples[3] < 0.999 {
		t.Errorf("expected full-scale values with clipping, got %v", samples)
	}
}

func TestSeekBuffer(t *testing.T) {
	var sb seekBuffer
	sb.Write([]byte("abcdef"))
	if _, err := sb.Seek(2, 0); err != nil {
		t.Fatal(err)
	}
	sb.Write([]byte("XY"))
	if string(sb.buf) != "abXYef" {
		t.Errorf("expected overwrite in place, got %q", sb.buf)
	}
	if _, err := sb.Seek(-10, 1); err == nil {
		t.Error("expected error for negative position")
	}
}
