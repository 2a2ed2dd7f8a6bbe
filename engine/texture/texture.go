// Package texture implements the CPU side of the texture contract shared by the shading
// stages: bilinear 2-D sampling with the stage sampler configuration, cube sampling by
// direction, decoding and resizing imported images, and the procedural gradient, spectrum
// and glow textures used when no asset is supplied.
package texture

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/Carmen-Shannon/starfield/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

// ErrEmptyImage is returned when an image or texel slice has no pixels.
var ErrEmptyImage = errors.New("texture: image has no pixels")

// Sampler2D is a filtered 2-D texture lookup.
type Sampler2D interface {
	// Sample returns the filtered RGBA value at uv, honoring the texture's address modes.
	//
	// Parameters:
	//   - uv: texture coordinates, (0, 0) at the top-left texel corner
	//
	// Returns:
	//   - mgl32.Vec4: the RGBA sample in [0, 1]
	Sample(uv mgl32.Vec2) mgl32.Vec4

	// Width returns the texture width in texels.
	Width() int

	// Height returns the texture height in texels.
	Height() int
}

// Texture2D is an RGBA texture held as float texels in row-major order.
type Texture2D struct {
	name    string
	width   int
	height  int
	texels  []mgl32.Vec4
	sampler common.SamplerStagingData
}

var _ Sampler2D = &Texture2D{}

// options collects the optional settings of the constructors.
type options struct {
	sampler      *common.SamplerStagingData
	maxDimension int
}

// Option configures texture construction.
type Option func(*options)

// WithSampler overrides the sampler configuration the texture is sampled with.
//
// Parameters:
//   - s: the sampler configuration
//
// Returns:
//   - Option: a function that applies the sampler option
func WithSampler(s common.SamplerStagingData) Option {
	return func(o *options) {
		o.sampler = &s
	}
}

// WithMaxDimension downscales decoded images so neither side exceeds n texels.
//
// Parameters:
//   - n: the largest allowed width or height
//
// Returns:
//   - Option: a function that applies the size limit
func WithMaxDimension(n int) Option {
	return func(o *options) {
		o.maxDimension = n
	}
}

func applyOptions(opts []Option, fallback common.SamplerStagingData) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sampler == nil {
		o.sampler = &fallback
	}
	return o
}

// New2D creates a texture from row-major texels.
//
// Parameters:
//   - name: the texture identifier
//   - width: the width in texels
//   - height: the height in texels
//   - texels: width*height RGBA values
//   - opts: optional settings such as WithSampler
//
// Returns:
//   - *Texture2D: the texture
//   - error: ErrEmptyImage for a zero-sized texture, or an error if the texel count mismatches
func New2D(name string, width, height int, texels []mgl32.Vec4, opts ...Option) (*Texture2D, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyImage
	}
	if len(texels) != width*height {
		return nil, fmt.Errorf("texture %s: expected %d texels, got %d", name, width*height, len(texels))
	}
	o := applyOptions(opts, common.DefaultSampler())
	return &Texture2D{name: name, width: width, height: height, texels: texels, sampler: *o.sampler}, nil
}

// FromImage converts a decoded image into a texture.
//
// Parameters:
//   - name: the texture identifier
//   - img: the decoded image
//   - opts: optional settings such as WithMaxDimension
//
// Returns:
//   - *Texture2D: the texture
//   - error: ErrEmptyImage if the image has no pixels
func FromImage(name string, img image.Image, opts ...Option) (*Texture2D, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	o := applyOptions(opts, common.DefaultSampler())

	b := img.Bounds()
	if o.maxDimension > 0 && (b.Dx() > o.maxDimension || b.Dy() > o.maxDimension) {
		scale := float64(o.maxDimension) / float64(max(b.Dx(), b.Dy()))
		img = Resize(img, max(1, int(float64(b.Dx())*scale)), max(1, int(float64(b.Dy())*scale)))
	}

	rgba := common.ToRGBA(img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	texels := make([]mgl32.Vec4, w*h)
	for i := range texels {
		p := rgba.Pix[i*4 : i*4+4]
		texels[i] = mgl32.Vec4{float32(p[0]) / 255, float32(p[1]) / 255, float32(p[2]) / 255, float32(p[3]) / 255}
	}
	return &Texture2D{name: name, width: w, height: h, texels: texels, sampler: *o.sampler}, nil
}

// FromImported decodes an ImportedTexture handed over by the asset loader, keeping its
// sampler override.
//
// Parameters:
//   - t: the imported texture
//   - opts: optional settings
//
// Returns:
//   - *Texture2D: the texture
//   - error: error if decoding fails
func FromImported(t *common.ImportedTexture, opts ...Option) (*Texture2D, error) {
	img, err := t.Image()
	if err != nil {
		return nil, err
	}
	return FromImage(t.Name, img, append([]Option{WithSampler(t.Sampler())}, opts...)...)
}

// Resize scales img to w x h with Catmull-Rom filtering.
//
// Parameters:
//   - img: the source image
//   - w: the target width
//   - h: the target height
//
// Returns:
//   - *image.RGBA: the scaled image
func Resize(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Rect, img, img.Bounds(), draw.Src, nil)
	return dst
}

func (t *Texture2D) Name() string {
	return t.name
}

func (t *Texture2D) Width() int {
	return t.width
}

func (t *Texture2D) Height() int {
	return t.height
}

// At returns the texel at integer coordinates, with x and y already in range.
func (t *Texture2D) At(x, y int) mgl32.Vec4 {
	return t.texels[y*t.width+x]
}

// Sampler returns the sampler configuration the texture is sampled with.
func (t *Texture2D) Sampler() common.SamplerStagingData {
	return t.sampler
}

func (t *Texture2D) Sample(uv mgl32.Vec2) mgl32.Vec4 {
	if t.sampler.MagFilter == wgpu.FilterModeNearest {
		x := address(int(math.Floor(float64(uv[0])*float64(t.width))), t.width, t.sampler.AddressModeU)
		y := address(int(math.Floor(float64(uv[1])*float64(t.height))), t.height, t.sampler.AddressModeV)
		return t.At(x, y)
	}

	fx := float64(uv[0])*float64(t.width) - 0.5
	fy := float64(uv[1])*float64(t.height) - 0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	ax, ay := float32(fx-x0), float32(fy-y0)

	xa := address(int(x0), t.width, t.sampler.AddressModeU)
	xb := address(int(x0)+1, t.width, t.sampler.AddressModeU)
	ya := address(int(y0), t.height, t.sampler.AddressModeV)
	yb := address(int(y0)+1, t.height, t.sampler.AddressModeV)

	top := lerp(t.At(xa, ya), t.At(xb, ya), ax)
	bottom := lerp(t.At(xa, yb), t.At(xb, yb), ax)
	return lerp(top, bottom, ay)
}

// Staging converts the texels to 8-bit RGBA staging data for GPU upload.
func (t *Texture2D) Staging() common.TextureStagingData {
	pixels := make([]byte, len(t.texels)*4)
	for i, c := range t.texels {
		for ch := range 4 {
			pixels[i*4+ch] = uint8(math.Round(float64(common.Clamp(c[ch], 0, 1)) * 255))
		}
	}
	return common.TextureStagingData{Pixels: pixels, Width: uint32(t.width), Height: uint32(t.height)}
}

// address maps an integer texel coordinate into [0, n) using the wgpu address mode.
func address(i, n int, mode wgpu.AddressMode) int {
	switch mode {
	case wgpu.AddressModeClampToEdge:
		return common.Clamp(i, 0, n-1)
	case wgpu.AddressModeMirrorRepeat:
		period := 2 * n
		i = ((i % period) + period) % period
		if i >= n {
			i = period - 1 - i
		}
		return i
	default:
		return ((i % n) + n) % n
	}
}

func lerp(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}
