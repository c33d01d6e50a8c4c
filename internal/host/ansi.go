// Package host is the line-oriented text front end for the battle resolver:
// it renders combat notifications as styled text and turns typed commands
// into encounter and session operations.
package host

import (
	"fmt"

	"github.com/cory-johannsen/tithe/internal/game/combat"
	"github.com/cory-johannsen/tithe/internal/game/element"
)

// ANSI escape codes used by the renderer.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Palette applies ANSI styling, or none when disabled.
type Palette struct {
	Enabled bool
}

// Colorize wraps text with color and a reset suffix when the palette is enabled.
func (p Palette) Colorize(color, text string) string {
	if !p.Enabled || color == "" {
		return text
	}
	return color + text + Reset
}

// Colorf formats and colorizes.
func (p Palette) Colorf(color, format string, args ...any) string {
	return p.Colorize(color, fmt.Sprintf(format, args...))
}

// ElementColor maps an element to its display color.
func ElementColor(k element.Kind) string {
	switch k {
	case element.Fire:
		return BrightRed
	case element.Ice:
		return BrightCyan
	case element.Shock:
		return BrightYellow
	case element.Dark:
		return Magenta
	case element.Light:
		return BrightWhite
	default:
		return White
	}
}

// ClassColor maps an effectiveness class to its display color.
func ClassColor(c combat.MultiplierClass) string {
	switch c {
	case combat.Weak:
		return Yellow
	case combat.Resist:
		return Dim
	default:
		return ""
	}
}

// StripANSI removes all ANSI escape sequences from s.
func StripANSI(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j
				continue
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
