// Package quality measures how far a stego image drifts from its cover.
package quality

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/yyyoichi/stegano_lsb/internal/carrier"
	"github.com/yyyoichi/stegano_lsb/internal/yuv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrSizeMismatch = errors.New("images differ in size")
	ErrEmptyImage   = errors.New("image has no pixels")
)

const (
	maxSample = 255.0
	c1        = (0.01 * maxSample) * (0.01 * maxSample)
	c2        = (0.03 * maxSample) * (0.03 * maxSample)
)

// Report compares two images channel by channel.
type Report struct {
	Width, Height int
	// ChangedChannels counts R, G and B samples that differ.
	ChangedChannels int
	// MSE per channel in R, G, B order.
	MSE      [carrier.Channels]float64
	MSETotal float64
	// PSNR in dB; +Inf when the images are identical.
	PSNR float64
	// SSIM over luma, computed as a single global window.
	SSIM float64
}

// Compare coerces both images to RGB and compares them.
func Compare(cover, stego image.Image) (Report, error) {
	a, b := carrier.New(cover), carrier.New(stego)
	ra, rb := a.Bounds(), b.Bounds()
	if ra.Dx() != rb.Dx() || ra.Dy() != rb.Dy() {
		return Report{}, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, ra.Dx(), ra.Dy(), rb.Dx(), rb.Dy())
	}
	if ra.Empty() {
		return Report{}, ErrEmptyImage
	}

	sa, sb := a.Samples(), b.Samples()
	r := Report{Width: ra.Dx(), Height: ra.Dy()}

	var (
		pixels  = len(sa) / carrier.Channels
		sqErr   = make([][]float64, carrier.Channels)
		allDiff = make([]float64, len(sa))
	)
	for ch := range sqErr {
		sqErr[ch] = make([]float64, pixels)
	}
	for i := range sa {
		d := float64(sa[i]) - float64(sb[i])
		if d != 0 {
			r.ChangedChannels++
		}
		sqErr[i%carrier.Channels][i/carrier.Channels] = d * d
		allDiff[i] = d * d
	}
	for ch := range sqErr {
		r.MSE[ch] = stat.Mean(sqErr[ch], nil)
	}
	r.MSETotal = stat.Mean(allDiff, nil)
	r.PSNR = psnr(r.MSETotal)
	r.SSIM = ssim(yuv.LumaBatch(sa), yuv.LumaBatch(sb))
	return r, nil
}

func psnr(mse float64) float64 {
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(maxSample*maxSample/mse)
}

func ssim(x, y []float64) float64 {
	mx, vx := stat.PopMeanVariance(x, nil)
	my, vy := stat.PopMeanVariance(y, nil)
	xy := floats.MulTo(make([]float64, len(x)), x, y)
	cov := stat.Mean(xy, nil) - mx*my
	return ((2*mx*my + c1) * (2*cov + c2)) / ((mx*mx + my*my + c1) * (vx + vy + c2))
}
