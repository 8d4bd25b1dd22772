package diarization

import (
	"slices"
	"strings"
)

// AssignTranscript spreads the words of text across segments in order,
// giving each segment a share proportional to its duration (at least one
// word while words remain). Leftover words go to the last segment. The
// input slice is not modified.
func AssignTranscript(segments []Segment, text string) []Segment {
	out := slices.Clone(segments)
	words := strings.Fields(text)
	if len(out) == 0 || len(words) == 0 {
		return out
	}

	var total float64
	for _, s := range out {
		total += s.Duration()
	}
	if total <= 0 {
		return out
	}

	idx := 0
	for i := range out {
		n := int(out[i].Duration() / total * float64(len(words)))
		n = max(1, min(n, len(words)-idx))
		end := min(idx+n, len(words))
		out[i].Text = strings.Join(words[idx:end], " ")
		idx = end
	}

	if idx < len(words) {
		last := &out[len(out)-1]
		rest := strings.Join(words[idx:], " ")
		if last.Text == "" {
			last.Text = rest
		} else {
			last.Text += " " + rest
		}
	}
	return out
}
