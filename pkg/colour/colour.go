// Package colour provides the pure colour arithmetic behind the media
// colour finder: average and brightest colour over a sampled pixel grid,
// channel inversion, readable text colour selection, and hex parsing.
package colour

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidColour is returned when a hex colour string cannot be parsed.
var ErrInvalidColour = errors.New("invalid hex colour")

// brightnessThreshold separates backgrounds that read better with black
// text from those that need white. Empirical perceived-luminance constant.
const brightnessThreshold = 186

// RGB represents an RGB colour with 8-bit components.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex formats the colour as "#RRGGBB" with uppercase hex digits.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Average computes the mean colour of an image by summing each channel
// independently over every pixel and floor-dividing by the pixel count.
// Alpha is ignored. An image with empty bounds yields the zero colour.
func Average(img image.Image) RGB {
	bounds := img.Bounds()
	if bounds.Empty() {
		return RGB{}
	}

	var r, g, b uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := pixelAt(img, x, y)
			r += uint64(c.R)
			g += uint64(c.G)
			b += uint64(c.B)
		}
	}

	n := uint64(bounds.Dx()) * uint64(bounds.Dy())
	return RGB{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n)}
}

// Brightest returns the colour of the pixel with the greatest perceived
// brightness, scanning in row-major order. Only a strictly greater
// brightness replaces the current best, so ties keep the first-seen pixel.
// The initial best brightness is zero; an empty image (or one whose pixels
// all truncate to brightness zero) yields the zero colour.
func Brightest(img image.Image) RGB {
	bounds := img.Bounds()

	var best RGB
	bestBrightness := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := pixelAt(img, x, y)
			if b := int(brightness(c)); b > bestBrightness {
				bestBrightness = b
				best = c
			}
		}
	}

	return best
}

// Invert returns the channel-wise inverse of a colour.
func Invert(c RGB) RGB {
	return RGB{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B}
}

// ContrastText selects a readable text colour for the given background:
// pure black when the background's perceived brightness exceeds the
// threshold, pure white otherwise.
func ContrastText(c RGB) RGB {
	if brightness(c) > brightnessThreshold {
		return RGB{}
	}
	return RGB{R: 255, G: 255, B: 255}
}

// ParseHex parses a hex colour string into an RGB value. The leading "#"
// is optional. Accepted digit counts:
//   - 3: shorthand, each digit duplicated ("abc" -> "aabbcc")
//   - 6: standard RRGGBB
//   - 8: RRGGBBAA, the trailing alpha digits are dropped
//
// Any other length, or a non-hex character, returns ErrInvalidColour.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(s, "#")

	switch len(h) {
	case 3:
		h = strings.Repeat(string(h[0]), 2) +
			strings.Repeat(string(h[1]), 2) +
			strings.Repeat(string(h[2]), 2)
	case 6:
	case 8:
		h = h[:6]
	default:
		return RGB{}, fmt.Errorf("%w: %q has %d hex digits", ErrInvalidColour, s, len(h))
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColour, s)
	}

	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// brightness computes the perceived brightness of a colour using the
// ITU-R BT.601 luma coefficients.
func brightness(c RGB) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// pixelAt reads a pixel's straight (non-premultiplied) channels, so that
// a transparent pixel keeps its stored colour instead of being pulled
// towards black by its alpha.
func pixelAt(img image.Image, x, y int) RGB {
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return RGB{R: c.R, G: c.G, B: c.B}
}
