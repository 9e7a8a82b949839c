// Package carrier holds the opaque 8-bit RGB view of an image whose channel
// least-significant bits carry hidden data.
package carrier

import (
	"context"
	"image"
	"image/color"
)

// Channels is the number of colour channels used per pixel (R, G, B).
const Channels = 3

// Bits is a readable bit sequence.
type Bits interface {
	Len() int
	Bit(at int) uint8
}

// Image is an RGB copy of a source image. Alpha is fixed at 255.
type Image struct {
	bounds        image.Rectangle
	width, height int
	area          int

	rgb *image.NRGBA
}

// New coerces src to opaque 8-bit RGB. Palette, grayscale, alpha, 16-bit and
// YCbCr images are converted through the non-premultiplied colour model, so
// straight colour values are kept and alpha is dropped.
func New(src image.Image) Image {
	var c Image
	c.bounds = src.Bounds()
	c.width, c.height = c.bounds.Dx(), c.bounds.Dy()
	c.area = c.width * c.height
	c.rgb = image.NewNRGBA(c.bounds)

	if nrgba, ok := src.(*image.NRGBA); ok {
		for y := range c.height {
			from := nrgba.PixOffset(c.bounds.Min.X, c.bounds.Min.Y+y)
			to := c.rgb.PixOffset(c.bounds.Min.X, c.bounds.Min.Y+y)
			copy(c.rgb.Pix[to:to+c.width*4], nrgba.Pix[from:from+c.width*4])
		}
	} else {
		for y := range c.height {
			for x := range c.width {
				px, py := c.bounds.Min.X+x, c.bounds.Min.Y+y
				c.rgb.SetNRGBA(px, py, color.NRGBAModel.Convert(src.At(px, py)).(color.NRGBA))
			}
		}
	}
	for i := 3; i < len(c.rgb.Pix); i += 4 {
		c.rgb.Pix[i] = 0xff
	}
	return c
}

// Capacity returns the number of bits the image can carry, one per channel.
func (c Image) Capacity() int {
	return c.area * Channels
}

// Bounds returns the bounds of the source image.
func (c Image) Bounds() image.Rectangle {
	return c.bounds
}

// Embed writes bits into channel LSBs in row-major pixel order, R then G
// then B, and stops as soon as the bits or the capacity run out. Channels
// after the last written bit are not touched. It returns the number of bits
// written.
func (c Image) Embed(ctx context.Context, bits Bits) (int, error) {
	n := min(bits.Len(), c.Capacity())
	at := 0
	for y := range c.height {
		if at >= n {
			break
		}
		if err := ctx.Err(); err != nil {
			return at, err
		}
		row := c.rgb.PixOffset(c.bounds.Min.X, c.bounds.Min.Y+y)
		for x := 0; x < c.width && at < n; x++ {
			px := row + x*4
			for ch := 0; ch < Channels && at < n; ch++ {
				c.rgb.Pix[px+ch] = c.rgb.Pix[px+ch]&0xfe | bits.Bit(at)
				at++
			}
		}
	}
	return at, nil
}

// LSBs reads the least-significant bit of every channel of every pixel in
// row-major order, R then G then B.
func (c Image) LSBs(ctx context.Context) ([]bool, error) {
	bits := make([]bool, 0, c.Capacity())
	for y := range c.height {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := c.rgb.PixOffset(c.bounds.Min.X, c.bounds.Min.Y+y)
		for x := range c.width {
			px := row + x*4
			for ch := range Channels {
				bits = append(bits, c.rgb.Pix[px+ch]&1 == 1)
			}
		}
	}
	return bits, nil
}

// Samples returns the channel values in carrier order: R, G, B of each pixel,
// row-major.
func (c Image) Samples() []uint8 {
	out := make([]uint8, 0, c.Capacity())
	for y := range c.height {
		row := c.rgb.PixOffset(c.bounds.Min.X, c.bounds.Min.Y+y)
		for x := range c.width {
			px := row + x*4
			out = append(out, c.rgb.Pix[px:px+Channels]...)
		}
	}
	return out
}

// Build returns the carrier pixels as an image.
func (c Image) Build() *image.NRGBA {
	return c.rgb
}
