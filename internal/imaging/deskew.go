package imaging

import (
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

const (
	// edgeThreshold is the Sobel gradient magnitude above which a pixel
	// counts as an edge.
	edgeThreshold = 120
	// houghVoteFloor is the minimum accumulator count for a candidate line.
	houghVoteFloor = 200
	// minSkewDegrees below this the rotation is skipped: resampling a
	// near-straight page costs more sharpness than the correction gains.
	minSkewDegrees = 0.5
)

// DetectSkew estimates the dominant text/rule angle of a grayscale page in
// degrees, restricted to (-45, 45). The second return is false when no
// reliable angle was found.
func DetectSkew(gray *image.Gray) (float64, bool) {
	edges := sobelEdges(gray)
	angles := houghAngles(edges, gray.Bounds().Dx(), gray.Bounds().Dy())
	if len(angles) == 0 {
		return 0, false
	}
	sort.Float64s(angles)
	return angles[len(angles)/2], true
}

// Deskew rotates the page by the negated detected skew angle. Rotation is
// skipped for angles under minSkewDegrees.
func Deskew(gray *image.Gray) (*image.Gray, float64) {
	angle, ok := DetectSkew(gray)
	if !ok || math.Abs(angle) < minSkewDegrees {
		return gray, 0
	}
	return rotate(gray, -angle), angle
}

// sobelEdges returns a bitmap of strong gradient pixels.
func sobelEdges(gray *image.Gray) []bool {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	edges := make([]bool, w*h)
	at := func(x, y int) int {
		return int(gray.GrayAt(x, y).Y)
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1) +
				at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			if math.Hypot(float64(gx), float64(gy)) >= edgeThreshold {
				edges[y*w+x] = true
			}
		}
	}
	return edges
}

// houghAngles runs a standard (rho, theta) line transform over the edge map
// and returns the angles, in degrees relative to horizontal, of every line
// clearing the vote floor. Angles outside (-45, 45) are discarded so that
// vertical rules do not masquerade as extreme skews.
func houghAngles(edges []bool, w, h int) []float64 {
	const thetaSteps = 180 // 1 degree resolution
	diag := int(math.Ceil(math.Hypot(float64(w), float64(h))))
	nRho := 2 * diag

	sin := make([]float64, thetaSteps)
	cos := make([]float64, thetaSteps)
	for t := 0; t < thetaSteps; t++ {
		rad := float64(t) * math.Pi / 180
		sin[t] = math.Sin(rad)
		cos[t] = math.Cos(rad)
	}

	acc := make([]int32, thetaSteps*nRho)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !edges[y*w+x] {
				continue
			}
			for t := 0; t < thetaSteps; t++ {
				rho := int(float64(x)*cos[t]+float64(y)*sin[t]) + diag
				if rho >= 0 && rho < nRho {
					acc[t*nRho+rho]++
				}
			}
		}
	}

	var angles []float64
	for t := 0; t < thetaSteps; t++ {
		for r := 0; r < nRho; r++ {
			if acc[t*nRho+r] < houghVoteFloor {
				continue
			}
			angle := float64(t) - 90
			if angle > -45 && angle < 45 {
				angles = append(angles, angle)
			}
		}
	}
	return angles
}

// rotate turns the image by deg degrees around its center using Catmull-Rom
// resampling, filling uncovered corners with white.
func rotate(src *image.Gray, deg float64) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for i := range dst.Pix {
		dst.Pix[i] = 255
	}

	rad := deg * math.Pi / 180
	s, c := math.Sin(rad), math.Cos(rad)
	cx, cy := float64(w)/2, float64(h)/2

	// src -> dst mapping: translate center to origin, rotate, translate back.
	m := f64.Aff3{
		c, -s, cx - c*cx + s*cy,
		s, c, cy - s*cx - c*cy,
	}
	draw.CatmullRom.Transform(dst, m, src, b, draw.Over, nil)
	return dst
}
