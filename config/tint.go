package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Tint is an RGBA color with 8-bit channels.
type Tint struct {
	R, G, B, A uint8
}

// DefaultTint is orange at 70% opacity.
var DefaultTint = Tint{R: 0xFF, G: 0xA5, B: 0x00, A: 0xB3}

var tintPattern = regexp.MustCompile(`^#([0-9A-F]{2})([0-9A-F]{2})([0-9A-F]{2})([0-9A-F]{2})?$`)

// ParseTint parses a #RRGGBB or #RRGGBBAA literal. Alpha defaults to fully opaque.
func ParseTint(s string) (Tint, error) {
	match := tintPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if match == nil {
		return Tint{}, fmt.Errorf("invalid color %q: accepted formats are #RRGGBB or #RRGGBBAA", s)
	}

	channel := func(hex string) uint8 {
		v, _ := strconv.ParseUint(hex, 16, 8)
		return uint8(v)
	}

	tint := Tint{R: channel(match[1]), G: channel(match[2]), B: channel(match[3]), A: 0xFF}
	if match[4] != "" {
		tint.A = channel(match[4])
	}

	return tint, nil
}

// Hex renders the tint as #RRGGBB, dropping alpha, for terminal styling.
func (t Tint) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", t.R, t.G, t.B)
}
