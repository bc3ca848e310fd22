package imaging

import "image"

// Morphological operators over binary images. Foreground is white (255);
// callers working with ink-as-black must invert first. Kernels are kw x kh
// rectangles, matching the directional kernels used for table rule
// detection (wide-short for horizontal strokes, tall-narrow for vertical).

// Erode keeps a foreground pixel only when the whole kernel neighborhood is
// foreground.
func Erode(src *image.Gray, kw, kh int) *image.Gray {
	return apply(src, kw, kh, func(allSet bool, anySet bool) bool { return allSet })
}

// Dilate sets a pixel when any kernel neighbor is foreground.
func Dilate(src *image.Gray, kw, kh int) *image.Gray {
	return apply(src, kw, kh, func(allSet bool, anySet bool) bool { return anySet })
}

// Open erodes then dilates, removing foreground specks smaller than the
// kernel.
func Open(src *image.Gray, kw, kh, iterations int) *image.Gray {
	out := src
	for i := 0; i < iterations; i++ {
		out = Dilate(Erode(out, kw, kh), kw, kh)
	}
	return out
}

// Close dilates then erodes, filling background gaps smaller than the
// kernel.
func Close(src *image.Gray, kw, kh, iterations int) *image.Gray {
	out := src
	for i := 0; i < iterations; i++ {
		out = Erode(Dilate(out, kw, kh), kw, kh)
	}
	return out
}

// Add unions two binary images of identical bounds.
func Add(a, b *image.Gray) *image.Gray {
	dst := Clone(a)
	for i := range dst.Pix {
		if b.Pix[i] > dst.Pix[i] {
			dst.Pix[i] = b.Pix[i]
		}
	}
	return dst
}

func apply(src *image.Gray, kw, kh int, keep func(allSet, anySet bool) bool) *image.Gray {
	if kw < 1 {
		kw = 1
	}
	if kh < 1 {
		kh = 1
	}
	bnd := src.Bounds()
	w, h := bnd.Dx(), bnd.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	// Kernel anchor at the top-left half; rectangular kernels are separable
	// but page sizes here make the naive scan acceptable.
	ax, ay := kw/2, kh/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			allSet, anySet := true, false
			for ky := 0; ky < kh; ky++ {
				for kx := 0; kx < kw; kx++ {
					px, py := x+kx-ax, y+ky-ay
					set := false
					if px >= 0 && px < w && py >= 0 && py < h {
						set = src.GrayAt(px, py).Y > 0
					}
					if set {
						anySet = true
					} else {
						allSet = false
					}
				}
			}
			if keep(allSet, anySet) {
				dst.SetGray(x, y, gray8(255))
			}
		}
	}
	return dst
}
