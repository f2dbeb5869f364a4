package pivot

import (
	"fmt"
	"strconv"
	"strings"
)

// Summary backgrounds come from fixed palettes indexed by nesting level and
// clamped to the last entry. Summary headers read darker than the summary
// value cells inside them; the grand-total corner is the lightest tone.
var (
	groupHeaderColors = []string{"#b0b0b0", "#bababa", "#c4c4c4", "#cecece", "#d8d8d8"}
	groupValueColors  = []string{"#cccccc", "#d4d4d4", "#dcdcdc", "#e4e4e4", "#ececec"}
)

const grandTotalColor = "#f5f5f5"

const (
	headerShadeBase     = 0.04
	headerShadePerLevel = 0.04
	headerShadeMax      = 0.2
)

func groupHeaderColor(level int) string {
	return paletteColor(groupHeaderColors, level)
}

func groupValueColor(level int) string {
	return paletteColor(groupValueColors, level)
}

func paletteColor(palette []string, level int) string {
	if level < 0 {
		level = 0
	}
	if level >= len(palette) {
		level = len(palette) - 1
	}
	return palette[level]
}

// headerBackground darkens a header's own color slightly more with every
// nesting level, capped so deep trees stay readable.
func headerBackground(color string, level int) string {
	if color == "" {
		return ""
	}
	shade := headerShadeBase + float64(level)*headerShadePerLevel
	if shade > headerShadeMax {
		shade = headerShadeMax
	}
	return shadeColor(color, shade)
}

// shadeColor darkens a #rrggbb color by the given fraction. Malformed colors
// are returned unchanged.
func shadeColor(color string, amount float64) string {
	hex := strings.TrimPrefix(color, "#")
	if len(hex) != 6 {
		return color
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color
	}
	r := channelShade(uint8(value>>16), amount)
	g := channelShade(uint8(value>>8), amount)
	b := channelShade(uint8(value), amount)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func channelShade(channel uint8, amount float64) uint8 {
	shaded := float64(channel) * (1 - amount)
	if shaded < 0 {
		return 0
	}
	return uint8(shaded)
}
