package raster

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var named = map[string]string{
	"white":  "#ffffff",
	"black":  "#000000",
	"red":    "#ff0000",
	"green":  "#008000",
	"lime":   "#00ff00",
	"blue":   "#0000ff",
	"gray":   "#808080",
	"grey":   "#808080",
	"yellow": "#ffff00",
	"orange": "#ffa500",
}

// ParseColor accepts a handful of CSS color names and #rgb / #rrggbb hex
// strings.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := named[s]; ok {
		s = hex
	}
	if len(s) == 4 && s[0] == '#' {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return c, nil
}
