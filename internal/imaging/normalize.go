// Package imaging turns uploaded image bytes into the fixed-size float tensor
// the pest classifiers consume.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxBytes  = 10 << 20
	DefaultMaxPixels = 40_000_000
)

// ErrDecode is matched by every DecodeError.
var ErrDecode = errors.New("image decode failed")

// DecodeError reports input that is not a usable image.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode image: %s: %v", e.Reason, e.Err)
	}
	return "decode image: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Normalizer decodes, converts to RGB, resizes to Width x Height without
// keeping aspect ratio, and scales channels into [0, 1]. It holds no mutable
// state and is safe for concurrent use.
type Normalizer struct {
	maxBytes  int
	maxPixels int
	kernel    draw.Scaler
}

type Option func(*Normalizer)

// WithMaxBytes caps the encoded input size. Zero disables the check.
func WithMaxBytes(n int) Option {
	return func(nr *Normalizer) { nr.maxBytes = n }
}

// WithMaxPixels caps width*height as read from the image header, before the
// pixel data is decoded. Zero disables the check.
func WithMaxPixels(n int) Option {
	return func(nr *Normalizer) { nr.maxPixels = n }
}

func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		maxBytes:  DefaultMaxBytes,
		maxPixels: DefaultMaxPixels,
		kernel:    draw.CatmullRom,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize returns a tensor of shape InputShape() with values in [0, 1].
// data is only read.
func (n *Normalizer) Normalize(data []byte) (Tensor, error) {
	if len(data) == 0 {
		return Tensor{}, &DecodeError{Reason: "empty input"}
	}
	if n.maxBytes > 0 && len(data) > n.maxBytes {
		return Tensor{}, &DecodeError{Reason: fmt.Sprintf("%d bytes exceeds limit of %d", len(data), n.maxBytes)}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Tensor{}, &DecodeError{Reason: "unrecognized format", Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Tensor{}, &DecodeError{Reason: fmt.Sprintf("%s has empty dimensions %dx%d", format, cfg.Width, cfg.Height)}
	}
	if n.maxPixels > 0 && cfg.Width*cfg.Height > n.maxPixels {
		return Tensor{}, &DecodeError{Reason: fmt.Sprintf("%dx%d exceeds %d pixels", cfg.Width, cfg.Height, n.maxPixels)}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Tensor{}, &DecodeError{Reason: "corrupt " + format, Err: err}
	}

	rgb := toOpaqueRGB(img)

	resized := image.NewNRGBA(image.Rect(0, 0, Width, Height))
	n.kernel.Scale(resized, resized.Bounds(), rgb, rgb.Bounds(), draw.Src, nil)

	t := NewTensor(InputShape()...)
	i := 0
	for y := 0; y < Height; y++ {
		row := resized.Pix[y*resized.Stride : y*resized.Stride+Width*4]
		for x := 0; x < Width; x++ {
			px := row[x*4 : x*4+3]
			t.Data[i] = float32(px[0]) / 255
			t.Data[i+1] = float32(px[1]) / 255
			t.Data[i+2] = float32(px[2]) / 255
			i += 3
		}
	}

	return t, nil
}

// toOpaqueRGB keeps the non-premultiplied colour of every pixel and discards
// alpha, so transparent regions keep their stored colour instead of turning
// black. Grayscale and paletted images are expanded to three channels.
func toOpaqueRGB(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			o := out.PixOffset(x-b.Min.X, y-b.Min.Y)
			out.Pix[o] = c.R
			out.Pix[o+1] = c.G
			out.Pix[o+2] = c.B
			out.Pix[o+3] = 0xff
		}
	}

	return out
}
