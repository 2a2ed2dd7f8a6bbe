package texture

import (
	"math"
	"sort"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Stop is one color stop of a gradient, at a position in [0, 1].
type Stop struct {
	At    float32
	Color mgl32.Vec4
}

// Solid returns a 1x1 texture of one color.
//
// Parameters:
//   - name: the texture identifier
//   - c: the RGBA color
//
// Returns:
//   - *Texture2D: the texture
func Solid(name string, c mgl32.Vec4) *Texture2D {
	t, _ := New2D(name, 1, 1, []mgl32.Vec4{c})
	return t
}

// Gradient returns a one-row texture interpolating linearly between stops. Texel i holds the
// gradient value at its center (i + 0.5) / width, so bilinear sampling at u reproduces the
// gradient. The texture samples with clamp-to-edge addressing.
//
// Parameters:
//   - name: the texture identifier
//   - width: the number of texels (at least 2)
//   - stops: the color stops, in any order
//
// Returns:
//   - *Texture2D: the texture
func Gradient(name string, width int, stops ...Stop) *Texture2D {
	width = max(width, 2)
	sorted := append([]Stop(nil), stops...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })

	texels := make([]mgl32.Vec4, width)
	for i := range texels {
		texels[i] = gradientAt(sorted, (float32(i)+0.5)/float32(width))
	}
	t, _ := New2D(name, width, 1, texels, WithSampler(common.ClampSampler()))
	return t
}

func gradientAt(stops []Stop, u float32) mgl32.Vec4 {
	if len(stops) == 0 {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	if u <= stops[0].At {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		if u <= stops[i].At {
			a, b := stops[i-1], stops[i]
			span := b.At - a.At
			if span <= 0 {
				return b.Color
			}
			return lerp(a.Color, b.Color, (u-a.At)/span)
		}
	}
	return stops[len(stops)-1].Color
}

// Spectrum returns the temperature-to-color texture used by the sun and lens glow stages.
// Texel u holds the black-body color of temperature 800 + u*29200 K.
//
// Parameters:
//   - width: the number of texels (at least 2)
//
// Returns:
//   - *Texture2D: the texture
func Spectrum(width int) *Texture2D {
	width = max(width, 2)
	texels := make([]mgl32.Vec4, width)
	for i := range texels {
		u := (float64(i) + 0.5) / float64(width)
		texels[i] = BlackBody(800 + u*29200)
	}
	t, _ := New2D("spectrum", width, 1, texels, WithSampler(common.ClampSampler()))
	return t
}

// BlackBody approximates the normalized RGB color of a black body at the given temperature.
//
// Parameters:
//   - kelvin: the temperature in Kelvin
//
// Returns:
//   - mgl32.Vec4: the color with alpha 1
func BlackBody(kelvin float64) mgl32.Vec4 {
	t := kelvin / 100
	var r, g, b float64
	if t <= 66 {
		r = 255
		g = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		r = 329.698727446 * math.Pow(t-60, -0.1332047592)
		g = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}
	switch {
	case t >= 66:
		b = 255
	case t <= 19:
		b = 0
	default:
		b = 138.5177312231*math.Log(t-10) - 305.0447927307
	}
	return mgl32.Vec4{
		float32(common.Clamp(r, 0, 255) / 255),
		float32(common.Clamp(g, 0, 255) / 255),
		float32(common.Clamp(b, 0, 255) / 255),
		1,
	}
}

// Glow returns a square radial glow: white, with alpha falling from 1 at the center to 0 at
// the inscribed circle. The lens glow stage reads the alpha channel as intensity.
//
// Parameters:
//   - size: the edge length in texels (at least 2)
//
// Returns:
//   - *Texture2D: the texture
func Glow(size int) *Texture2D {
	size = max(size, 2)
	texels := make([]mgl32.Vec4, size*size)
	for y := range size {
		for x := range size {
			dx := (float32(x)+0.5)/float32(size)*2 - 1
			dy := (float32(y)+0.5)/float32(size)*2 - 1
			r := float32(math.Sqrt(float64(dx*dx + dy*dy)))
			a := common.Clamp(1-r, 0, 1)
			texels[y*size+x] = mgl32.Vec4{1, 1, 1, a * a}
		}
	}
	t, _ := New2D("glow", size, size, texels, WithSampler(common.ClampSampler()))
	return t
}
