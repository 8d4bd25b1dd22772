// Command diarize runs speaker diarization over an audio file and prints
// the speaker timeline.
package main

import (
	"fmt"
	"os"

	"github.com/kbukum/diarkit/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(errors.ExitCode(err))
	}
}
