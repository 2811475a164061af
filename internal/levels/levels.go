// Package levels implements the per-channel black/white/gamma remap applied
// to specular maps before compression, matching the semantics of the Levels
// tool found in image editors.
package levels

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
)

const (
	GammaMin = 0.10
	GammaMax = 3.00
)

// Identity leaves a channel untouched.
var Identity = Channel{Black: 0, Gamma: 1.0, White: 255}

// ErrUnsupportedImage is returned for file types the transform cannot decode.
var ErrUnsupportedImage = errors.New("unsupported image type")

// Channel holds the remap parameters for one color channel. Black and White
// are input levels in [0,255]; Gamma is the midtone exponent.
type Channel struct {
	Black float64
	Gamma float64
	White float64
}

// Clamp forces the parameters into their valid ranges: Black strictly below
// White, both within [0,255], Gamma within [GammaMin, GammaMax].
func (c *Channel) Clamp() {
	if c.Black < 0 {
		c.Black = 0
	}
	if c.Black > 254 {
		c.Black = 254
	}
	if c.White > 255 {
		c.White = 255
	}
	if c.White <= c.Black {
		c.White = c.Black + 1
	}
	if c.Gamma < GammaMin {
		c.Gamma = GammaMin
	}
	if c.Gamma > GammaMax {
		c.Gamma = GammaMax
	}
}

// LUT builds the 256-entry remap table for the channel. Each input value is
// normalized against the black/white points, clipped to [0,1], raised to
// 1/gamma and rescaled to [0,255] with truncation.
func (c Channel) LUT() [256]uint8 {
	var lut [256]uint8
	span := c.White - c.Black
	for i := 0; i < 256; i++ {
		if c.Gamma == 1.0 {
			// Multiply before dividing so integer black/white points remap
			// exactly; the identity triple must reproduce every input value.
			v := (float64(i) - c.Black) * 255 / span
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			lut[i] = uint8(v)
			continue
		}
		x := (float64(i) - c.Black) / span
		if x < 0 {
			x = 0
		} else if x > 1 {
			x = 1
		}
		lut[i] = uint8(math.Pow(x, 1.0/c.Gamma) * 255)
	}
	return lut
}

// Adjust remaps the red and green channels of img independently and returns
// the result as RGB. Blue passes through unchanged and alpha is discarded;
// grayscale, paletted and RGBA inputs are all normalized by the per-pixel
// conversion to color.RGBA.
func Adjust(img image.Image, red, green Channel) *image.RGBA {
	redLUT := red.LUT()
	greenLUT := green.LUT()
	return adjust.Apply(img, func(p color.RGBA) color.RGBA {
		return color.RGBA{
			R: redLUT[p.R],
			G: greenLUT[p.G],
			B: p.B,
			A: 255,
		}
	})
}
