package imaging

import (
	"image"
	"sort"
)

// MedianDenoise applies a 3x3 median filter. Cheap salt-and-pepper removal
// ahead of thresholding; border pixels are copied through.
func MedianDenoise(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := Clone(src)
	var window [9]int
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					window[i] = int(src.GrayAt(x+dx, y+dy).Y)
					i++
				}
			}
			vals := window[:]
			sort.Ints(vals)
			dst.SetGray(x, y, gray8(vals[4]))
		}
	}
	return dst
}

// AdaptiveThreshold binarizes with a local-mean threshold computed over a
// blockSize x blockSize neighborhood (via an integral image) minus c.
// Catalog scans have uneven illumination, so a single global threshold
// loses entire regions; the local mean tracks the background instead.
// Output pixels are strictly 0 (ink) or 255 (background).
func AdaptiveThreshold(src *image.Gray, blockSize int, c float64) *image.Gray {
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	// integral[y][x] holds the sum over the rectangle [0,x) x [0,y).
	integral := make([]uint64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum uint64
		for x := 0; x < w; x++ {
			rowSum += uint64(src.GrayAt(x, y).Y)
			integral[(y+1)*(w+1)+(x+1)] = integral[y*(w+1)+(x+1)] + rowSum
		}
	}

	half := blockSize / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := max(0, x-half), max(0, y-half)
			x1, y1 := min(w-1, x+half), min(h-1, y+half)
			area := uint64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*(w+1)+(x1+1)] -
				integral[y0*(w+1)+(x1+1)] -
				integral[(y1+1)*(w+1)+x0] +
				integral[y0*(w+1)+x0]
			mean := float64(sum) / float64(area)
			if float64(src.GrayAt(x, y).Y) > mean-c {
				dst.SetGray(x, y, gray8(255))
			} else {
				dst.SetGray(x, y, gray8(0))
			}
		}
	}
	return dst
}
