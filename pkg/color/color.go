// Package color paints terminal output. NO_COLOR and non-terminal writers
// are handled by fatih/color, which every helper here goes through.
package color

import (
	"fmt"
	"hash/fnv"

	fc "github.com/fatih/color"
)

var (
	Info    = fc.New(fc.FgCyan)
	Success = fc.New(fc.FgGreen)
	Warn    = fc.New(fc.FgYellow)
	Error   = fc.New(fc.FgRed, fc.Bold)
	Muted   = fc.New(fc.Faint)
	Bold    = fc.New(fc.Bold)
)

// Palette for names, in the order they are handed out by hash.
var nameColors = []fc.Attribute{
	fc.FgHiRed,
	fc.FgHiGreen,
	fc.FgHiYellow,
	fc.FgHiBlue,
	fc.FgHiMagenta,
	fc.FgHiCyan,
	fc.FgRed,
	fc.FgGreen,
	fc.FgYellow,
	fc.FgBlue,
	fc.FgMagenta,
	fc.FgCyan,
}

// ForName returns a colour that is stable for name, so the same worker
// always prints alike.
func ForName(name string) *fc.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return fc.New(nameColors[h.Sum32()%uint32(len(nameColors))])
}

// Prefix formats "[name]" in name's colour.
func Prefix(name string) string {
	return ForName(name).Sprint(fmt.Sprintf("[%s]", name))
}

// Enabled reports whether output is being coloured at all.
func Enabled() bool {
	return !fc.NoColor
}
