// Package ui provides the desktop and terminal front ends of EVPN Assistant.
// This file contains icon generation utilities for the system tray.
package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/yllada/evpn-assistant/common"
	"github.com/yllada/evpn-assistant/vpn"
)

// Glyph is the symbol drawn on top of the shield.
type Glyph int

const (
	GlyphLock Glyph = iota
	GlyphCheckmark
	GlyphDots
)

// IconConfig defines the configuration for icon generation.
type IconConfig struct {
	Size        int
	FillColor   color.RGBA
	BorderColor color.RGBA
	AccentColor color.RGBA
	SymbolColor color.RGBA
	Glyph       Glyph
}

var (
	white = color.RGBA{255, 255, 255, 255}
	grey  = color.RGBA{117, 117, 117, 255}
)

// IconConfigForState returns the icon for a connection state. Connected
// shows a checkmark and any transition shows three dots, both on a shield
// filled with tint. Every other state shows a lock on a grey shield edged
// with tint.
func IconConfigForState(state vpn.ConnectionState, tint color.RGBA) IconConfig {
	cfg := IconConfig{
		Size:        common.TrayIconSize,
		FillColor:   darken(tint, 0.8),
		BorderColor: tint,
		AccentColor: lighten(tint, 0.6),
		SymbolColor: white,
	}

	switch {
	case state == vpn.StateConnected:
		cfg.Glyph = GlyphCheckmark
	case state.IsTransitional():
		cfg.Glyph = GlyphDots
	default:
		cfg.FillColor = grey
		cfg.AccentColor = color.RGBA{189, 189, 189, 255}
		cfg.Glyph = GlyphLock
	}

	return cfg
}

// IconGenerator generates PNG icons for the system tray.
type IconGenerator struct {
	config IconConfig
}

// NewIconGenerator creates a new icon generator with the given config.
func NewIconGenerator(config IconConfig) *IconGenerator {
	return &IconGenerator{config: config}
}

// Generate creates a PNG icon and returns the bytes.
func (g *IconGenerator) Generate() []byte {
	var buf bytes.Buffer
	png.Encode(&buf, g.Image())
	return buf.Bytes()
}

// Image draws the icon.
func (g *IconGenerator) Image() *image.RGBA {
	size := g.config.Size
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	g.drawShield(img)

	switch g.config.Glyph {
	case GlyphCheckmark:
		g.drawCheckmark(img)
	case GlyphDots:
		g.drawDots(img)
	default:
		g.drawLock(img)
	}

	return img
}

// drawShield draws the shield shape on the image.
func (g *IconGenerator) drawShield(img *image.RGBA) {
	size := g.config.Size
	centerX := float64(size) / 2
	topY := 1.0
	bottomY := float64(size) - 2
	shieldWidth := float64(size) - 4

	isInShield := func(x, y float64) bool {
		relY := (y - topY) / (bottomY - topY)
		if relY < 0 || relY > 1 {
			return false
		}

		var halfWidth float64
		if relY < 0.5 {
			halfWidth = shieldWidth/2 - relY*0.5
		} else {
			progress := (relY - 0.5) * 2
			halfWidth = (shieldWidth/2 - 0.25) * (1 - progress*progress)
		}

		return x >= centerX-halfWidth && x <= centerX+halfWidth
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5

			if isInShield(fx, fy) {
				isBorder := !isInShield(fx-1, fy) || !isInShield(fx+1, fy) ||
					!isInShield(fx, fy-1) || !isInShield(fx, fy+1)

				if isBorder {
					img.Set(x, y, g.config.BorderColor)
				} else {
					relY := float64(y) / float64(size)
					if relY < 0.3 {
						img.Set(x, y, g.config.AccentColor)
					} else {
						img.Set(x, y, g.config.FillColor)
					}
				}
			}
		}
	}
}

// drawCheckmark draws a checkmark symbol on the image.
func (g *IconGenerator) drawCheckmark(img *image.RGBA) {
	// Checkmark points
	points := []struct{ x, y int }{
		{6, 11}, {7, 11}, {7, 12}, {8, 12}, {8, 13}, {9, 13},
		{9, 12}, {10, 12}, {10, 11}, {11, 11}, {11, 10}, {12, 10},
		{12, 9}, {13, 9}, {13, 8}, {14, 8},
	}
	for _, p := range points {
		if p.x >= 0 && p.x < g.config.Size && p.y >= 0 && p.y < g.config.Size {
			img.Set(p.x, p.y, g.config.SymbolColor)
		}
	}
}

// drawLock draws a lock symbol on the image.
func (g *IconGenerator) drawLock(img *image.RGBA) {
	c := g.config.SymbolColor

	// Lock body
	for y := 10; y <= 15; y++ {
		for x := 8; x <= 14; x++ {
			if y == 10 || y == 15 || x == 8 || x == 14 {
				img.Set(x, y, c)
			}
		}
	}

	// Lock shackle
	for y := 6; y <= 10; y++ {
		if y <= 8 {
			img.Set(9, y, c)
			img.Set(13, y, c)
		}
		if y == 6 {
			for x := 9; x <= 13; x++ {
				img.Set(x, y, c)
			}
		}
	}
}

// drawDots draws three dots across the middle of the shield.
func (g *IconGenerator) drawDots(img *image.RGBA) {
	y := g.config.Size / 2
	for _, cx := range []int{7, 11, 15} {
		for dy := 0; dy <= 1; dy++ {
			for dx := 0; dx <= 1; dx++ {
				x := cx - 1 + dx
				if x >= 0 && x < g.config.Size && y+dy < g.config.Size {
					img.Set(x, y+dy, g.config.SymbolColor)
				}
			}
		}
	}
}

// GenerateStateIcon generates the tray icon for state tinted with tint.
func GenerateStateIcon(state vpn.ConnectionState, tint color.RGBA) []byte {
	return NewIconGenerator(IconConfigForState(state, tint)).Generate()
}

func lighten(c color.RGBA, f float64) color.RGBA {
	mix := func(v uint8) uint8 { return uint8(float64(v) + (255-float64(v))*f) }
	return color.RGBA{mix(c.R), mix(c.G), mix(c.B), 255}
}

func darken(c color.RGBA, f float64) color.RGBA {
	mix := func(v uint8) uint8 { return uint8(float64(v) * f) }
	return color.RGBA{mix(c.R), mix(c.G), mix(c.B), 255}
}
