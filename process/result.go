package process

import (
	"strings"
	"time"
)

// Result holds the output and status of a completed subprocess.
type Result struct {
	Stdout []byte
	Stderr []byte
	// ExitCode is the process exit code. -1 if the process was killed or never started.
	ExitCode int
	Duration time.Duration
}

// StderrTail returns the last n non-empty lines of stderr. Tools like
// ffmpeg print a banner first and the actual failure reason last.
func (r *Result) StderrTail(n int) string {
	if r == nil || len(r.Stderr) == 0 || n <= 0 {
		return ""
	}
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(string(r.Stderr)), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
