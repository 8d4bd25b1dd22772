package audio

import "math"

// Resample converts samples from one rate to another with linear
// interpolation. The input is returned unchanged when the rates match.
func Resample(samples []float32, from, to int) []float32 {
	if from == to || from <= 0 || to <= 0 || len(samples) == 0 {
		return samples
	}

	n := int(math.Round(float64(len(samples)) * float64(to) / float64(from)))
	out := make([]float32, n)
	step := float64(from) / float64(to)
	last := len(samples) - 1
	for i := range out {
		pos := float64(i) * step
		i0 := int(pos)
		if i0 >= last {
			out[i] = samples[last]
			continue
		}
		frac := float32(pos - float64(i0))
		out[i] = samples[i0] + (samples[i0+1]-samples[i0])*frac
	}
	return out
}

// Downmix averages interleaved channels into a mono signal.
func Downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	out := make([]float32, frames)
	for f := range out {
		var sum float32
		for c := range channels {
			sum += interleaved[f*channels+c]
		}
		out[f] = sum / float32(channels)
	}
	return out
}
