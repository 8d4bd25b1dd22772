package diarization

import (
	"fmt"
	"strings"
)

const rule = "============================================================"

// Summarize renders report as operator-facing text: timings, one line per
// segment in arrival order (at most maxLines when maxLines > 0), the segment
// total and the sorted speaker list.
func Summarize(report *Report, maxLines int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Duration: %.1fs (%.1f min)\n", report.AudioSeconds, report.AudioSeconds/60)
	if report.Clamped && report.Window != nil {
		fmt.Fprintf(&b, "Window clamped to %s\n", report.Window)
	}
	fmt.Fprintf(&b, "Pipeline loaded in %.1fs\n", report.LoadSeconds)
	fmt.Fprintf(&b, "Diarization completed in %.1fs\n", report.InferenceSeconds)
	fmt.Fprintf(&b, "Real-time factor: %.2f%%\n", report.RealTimeFactor*100)

	title := "SPEAKER SEGMENTS"
	if maxLines > 0 && len(report.Segments) > maxLines {
		title = fmt.Sprintf("SPEAKER SEGMENTS (first %d)", maxLines)
	}
	fmt.Fprintf(&b, "\n%s\n%s\n%s\n", rule, title, rule)

	for i, s := range report.Segments {
		if maxLines > 0 && i >= maxLines {
			break
		}
		fmt.Fprintf(&b, "%s\n", FormatSegment(s))
	}

	fmt.Fprintf(&b, "\n... %d total segments\n", len(report.Segments))
	fmt.Fprintf(&b, "\nTotal speakers detected: %d\n", len(report.Speakers))
	fmt.Fprintf(&b, "Speakers: %v\n", report.Speakers)
	return b.String()
}

// FormatSegment renders one turn as "  12.34s -   45.67s : SPEAKER_00".
func FormatSegment(s Segment) string {
	return fmt.Sprintf("%7.2fs - %7.2fs : %s", s.Start, s.End, s.Speaker)
}
