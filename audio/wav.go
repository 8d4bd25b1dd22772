package audio

import (
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM  = 1
	wavOutputBits = 16
)

// decodeWAV reads an integer PCM WAV stream and returns interleaved samples
// normalized to [-1, 1].
func decodeWAV(r io.ReadSeeker) (samples []float32, sampleRate, channels int, err error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("not a valid wav file")
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, 0, 0, fmt.Errorf("unsupported wav encoding %d", d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read pcm: %w", err)
	}
	if buf == nil || buf.Format == nil || buf.Format.SampleRate <= 0 || buf.Format.NumChannels <= 0 {
		return nil, 0, 0, fmt.Errorf("wav header is missing format information")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(d.BitDepth)
	}
	return intToFloat(buf.Data, bitDepth), buf.Format.SampleRate, buf.Format.NumChannels, nil
}

// intToFloat scales signed PCM values by their full-scale range. 8-bit WAV
// is unsigned and centered on 128.
func intToFloat(data []int, bitDepth int) []float32 {
	out := make([]float32, len(data))
	if bitDepth == 8 {
		for i, v := range data {
			out[i] = float32(v-128) / 128
		}
		return out
	}
	scale := float32(int64(1) << (bitDepth - 1))
	for i, v := range data {
		out[i] = float32(v) / scale
	}
	return out
}

// EncodeWAV writes asset as a 16-bit PCM mono WAV stream.
func EncodeWAV(w io.WriteSeeker, asset *Asset) error {
	enc := wav.NewEncoder(w, asset.SampleRate, wavOutputBits, 1, wavFormatPCM)
	data := make([]int, len(asset.Samples))
	const full = math.MaxInt16
	for i, s := range asset.Samples {
		v := math.Round(float64(s) * full)
		data[i] = int(max(-full-1, min(full, v)))
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: asset.SampleRate},
		Data:           data,
		SourceBitDepth: wavOutputBits,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// WriteWAV writes asset to path as a 16-bit PCM mono WAV file.
func WriteWAV(path string, asset *Asset) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return EncodeWAV(f, asset)
}

// EncodeWAVBytes returns asset as an in-memory 16-bit PCM mono WAV file.
func EncodeWAVBytes(asset *Asset) ([]byte, error) {
	var sb seekBuffer
	if err := EncodeWAV(&sb, asset); err != nil {
		return nil, err
	}
	return sb.buf, nil
}

// seekBuffer is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch chunk sizes on Close.
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	if need := s.pos + len(p); need > len(s.buf) {
		s.buf = append(s.buf, make([]byte, need-len(s.buf))...)
	}
	n := copy(s.buf[s.pos:], p)
	s.pos += n
	return n, nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(s.pos) + offset
	case io.SeekEnd:
		abs = int64(len(s.buf)) + offset
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("seek: negative position %d", abs)
	}
	s.pos = int(abs)
	return abs, nil
}
