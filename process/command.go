package process

import (
	"strconv"
	"strings"
	"time"
)

// Command is one subprocess invocation.
type Command struct {
	// Binary is resolved via PATH. Adapter.Run fills it from the adapter
	// config when empty.
	Binary string
	Args   []string
	// GracePeriod between SIGTERM and SIGKILL on cancellation. Defaults to 5s.
	GracePeriod time.Duration
}

// ffmpegQuiet keeps ffmpeg from reading stdin and limits stderr to the
// failure reason, which Result.StderrTail then surfaces.
var ffmpegQuiet = []string{"-nostdin", "-hide_banner", "-loglevel", "error"}

// FFmpeg returns a command for the ffmpeg binary with the quiet flags
// prepended to args.
func FFmpeg(binary string, args ...string) Command {
	full := make([]string, 0, len(ffmpegQuiet)+len(args))
	full = append(full, ffmpegQuiet...)
	return Command{Binary: binary, Args: append(full, args...)}
}

// String renders the command line for logs. Arguments containing spaces
// are quoted.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Binary)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
