// Package util provides a collection of domain-agnostic helpers.
package util

import (
	"fmt"
	"math"
	"os"
	"strings"

	"golang.org/x/exp/constraints"
)

// Clamp restricts v to [lo, hi]. NaN clamps to lo, so a missing measurement never leaks into geometry.
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Max returns the maximum value among arguments.
func Max[T constraints.Ordered](items ...T) (max T) {
	if len(items) == 0 {
		return
	}
	max = items[0]
	for _, item := range items[1:] {
		if item > max {
			max = item
		}
	}
	return
}

// FormatTimestamp renders seconds as m:ss, or h:mm:ss from one hour on.
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}

	total := int(seconds)
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatBitrate renders bits per second the way the bitrate readout shows them.
func FormatBitrate(bps float64) string {
	switch {
	case bps <= 0:
		return "0 Kbps"
	case bps < 1_000_000:
		return fmt.Sprintf("%d Kbps", int(bps/1000))
	default:
		return fmt.Sprintf("%.1f Mbps", bps/1_000_000)
	}
}

// PrintErasable prints an ephemeral message to the terminal and returns a closure to clear it.
func PrintErasable(msg string) (eraser func()) {
	fmt.Fprintf(os.Stdout, "\r%s", msg)
	return func() {
		fmt.Fprintf(os.Stdout, "\r%s\r", strings.Repeat(" ", len(msg)))
	}
}

// Ignore executes a function and explicitly discards its error return value.
func Ignore(f func() error) {
	_ = f()
}
