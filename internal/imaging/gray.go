// Package imaging implements the raster preprocessing used ahead of OCR:
// grayscale conversion, deskew, denoise, adaptive binarization and
// morphological cleanup. The binary convention throughout the package is
// dark ink (0) on a white (255) background unless a function states
// otherwise.
package imaging

import (
	"image"
	"image/color"
)

// ToGray converts any image to 8-bit grayscale. A *image.Gray input is
// returned as-is.
func ToGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(src.At(x, y)))
		}
	}
	return dst
}

// Invert flips every pixel value (v -> 255-v), returning a new image.
func Invert(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	for i := range src.Pix {
		dst.Pix[i] = 255 - src.Pix[i]
	}
	return dst
}

// Clone returns a deep copy.
func Clone(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

func gray8(v int) color.Gray {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return color.Gray{Y: uint8(v)}
}

// CountNonZero returns the number of pixels with a value above zero.
func CountNonZero(src *image.Gray) int {
	n := 0
	for _, v := range src.Pix {
		if v > 0 {
			n++
		}
	}
	return n
}
