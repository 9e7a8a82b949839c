package yuv

// https://github.com/opencv/opencv/blob/0e88b49a53842f0f7cdc4c61b98c283be7e5057c/modules/imgproc/src/opencl/color_yuv.cl#L148-L234

const (
	yr = 0.299
	yg = 0.587
	yb = 0.114
)

// LumaBatch converts interleaved R, G, B samples into one luma value per pixel.
func LumaBatch(samples []uint8) []float64 {
	y := make([]float64, len(samples)/3)
	for i := range y {
		r := float64(samples[i*3])
		g := float64(samples[i*3+1])
		b := float64(samples[i*3+2])
		y[i] = yr*r + yg*g + yb*b
	}
	return y
}
