package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// Image is a downsampled asset: per-pixel luminance and alpha in [0,1].
type Image struct {
	W, H  int
	Lum   []float64
	Alpha []float64
}

// Decode parses PNG/JPEG/GIF data and scales it to fit within maxW×maxH,
// preserving aspect ratio.
func Decode(data []byte, maxW, maxH int) (*Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("assets: decode: %w", err)
	}
	return FromImage(src, maxW, maxH), nil
}

// FromImage converts an already decoded image.
func FromImage(src image.Image, maxW, maxH int) *Image {
	b := src.Bounds()
	w, h := fit(b.Dx(), b.Dy(), maxW, maxH)

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	img := &Image{
		W:     w,
		H:     h,
		Lum:   make([]float64, w*h),
		Alpha: make([]float64, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := dst.NRGBAAt(x, y)
			i := y*w + x
			// Rec. 601 luma
			img.Lum[i] = (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
			img.Alpha[i] = float64(c.A) / 255
		}
	}
	return img
}

func fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	// Scale by the tighter bound
	if w*maxH > h*maxW {
		return maxW, max(1, h*maxW/w)
	}
	return max(1, w*maxH/h), maxH
}

// LumAt samples luminance at normalized coordinates u, v in [0,1].
func (im *Image) LumAt(u, v float64) float64 {
	return im.Lum[im.index(u, v)]
}

// AlphaAt samples alpha at normalized coordinates u, v in [0,1].
func (im *Image) AlphaAt(u, v float64) float64 {
	return im.Alpha[im.index(u, v)]
}

func (im *Image) index(u, v float64) int {
	x := int(u * float64(im.W))
	y := int(v * float64(im.H))
	x = min(max(x, 0), im.W-1)
	y = min(max(y, 0), im.H-1)
	return y*im.W + x
}
