package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/kbukum/diarkit/process"
)

// DefaultFFmpegBinary is resolved on PATH.
const DefaultFFmpegBinary = "ffmpeg"

type decodeRequest struct {
	Path       string
	SampleRate int
}

// newFFmpegDecoder returns a provider that decodes any container ffmpeg
// understands into mono float32 at the requested rate.
func newFFmpegDecoder(binary string) *process.SubprocessProvider[decodeRequest, []float32] {
	return process.NewSubprocessProvider(
		binary,
		func(req decodeRequest) process.Command {
			return process.FFmpeg(binary,
				"-i", req.Path,
				"-ac", "1",
				"-ar", strconv.Itoa(req.SampleRate),
				"-f", "f32le",
				"-",
			)
		},
		func(res *process.Result) ([]float32, error) {
			return parseF32LE(res.Stdout)
		},
	).WithAvailabilityCheck(func(context.Context) bool {
		return process.Available(binary)
	})
}

// parseF32LE converts raw little-endian float32 PCM to samples.
func parseF32LE(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("f32le stream has %d trailing bytes", len(raw)%4)
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}
