package imaging

import (
	"image"
	"testing"
)

func uniformGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestAdaptiveThresholdOutputIsBinary(t *testing.T) {
	src := uniformGray(64, 64, 200)
	// a dark blob on a bright background
	for y := 20; y < 30; y++ {
		for x := 20; x < 30; x++ {
			src.SetGray(x, y, gray8(30))
		}
	}

	out := AdaptiveThreshold(src, 11, 2)
	for i, p := range out.Pix {
		if p != 0 && p != 255 {
			t.Fatalf("pixel %d = %d, want 0 or 255", i, p)
		}
	}
	if out.GrayAt(25, 25).Y != 0 {
		t.Error("blob center should threshold to ink")
	}
	if out.GrayAt(5, 5).Y != 255 {
		t.Error("background should threshold to white")
	}
}

func TestAdaptiveThresholdUnevenIllumination(t *testing.T) {
	// background brightness ramps left to right; ink stays a fixed step
	// below the local background, which defeats any single global cut.
	src := image.NewGray(image.Rect(0, 0, 120, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 120; x++ {
			src.SetGray(x, y, gray8(100+x))
		}
	}
	for _, x := range []int{20, 100} {
		for y := 15; y < 25; y++ {
			src.SetGray(x, y, gray8(100+x-80))
		}
	}

	out := AdaptiveThreshold(src, 11, 2)
	if out.GrayAt(20, 20).Y != 0 || out.GrayAt(100, 20).Y != 0 {
		t.Error("local-mean threshold should catch ink on both ends of the ramp")
	}
}

func TestMedianDenoiseRemovesSpeck(t *testing.T) {
	src := uniformGray(16, 16, 255)
	src.SetGray(8, 8, gray8(0)) // isolated pepper pixel

	out := MedianDenoise(src)
	if out.GrayAt(8, 8).Y != 255 {
		t.Errorf("speck survived denoising: %d", out.GrayAt(8, 8).Y)
	}
}

func TestDeskewSkipsStraightPage(t *testing.T) {
	// horizontal rules on a white page: dominant angle 0, under the
	// rotation floor
	src := uniformGray(300, 300, 255)
	for _, y := range []int{100, 200} {
		for x := 0; x < 300; x++ {
			src.SetGray(x, y, gray8(0))
		}
	}

	out, angle := Deskew(src)
	if angle != 0 {
		t.Errorf("applied angle = %.2f, want 0", angle)
	}
	if out != src {
		t.Error("straight page should be returned unrotated")
	}
}

func TestDeskewBlankPage(t *testing.T) {
	out, angle := Deskew(uniformGray(100, 100, 255))
	if angle != 0 || out == nil {
		t.Errorf("blank page: angle = %.2f", angle)
	}
}

func TestMorphologyOpenRemovesSpecksKeepsRules(t *testing.T) {
	// foreground white on black, as the grid detector uses it
	src := uniformGray(100, 100, 0)
	for x := 0; x < 100; x++ {
		src.SetGray(x, 50, gray8(255))
	}
	src.SetGray(10, 10, gray8(255)) // speck

	out := Open(src, 40, 1, 2)
	if out.GrayAt(10, 10).Y != 0 {
		t.Error("speck should not survive a 40x1 open")
	}
	if out.GrayAt(50, 50).Y != 255 {
		t.Error("full-width rule should survive a 40x1 open")
	}
}

func TestInvertRoundTrip(t *testing.T) {
	src := uniformGray(8, 8, 255)
	src.SetGray(3, 3, gray8(40))

	twice := Invert(Invert(src))
	for i := range src.Pix {
		if twice.Pix[i] != src.Pix[i] {
			t.Fatalf("pixel %d differs after double inversion", i)
		}
	}
}

func TestCountNonZero(t *testing.T) {
	src := uniformGray(10, 10, 0)
	src.SetGray(1, 1, gray8(255))
	src.SetGray(2, 2, gray8(1))
	if got := CountNonZero(src); got != 2 {
		t.Errorf("CountNonZero = %d, want 2", got)
	}
}
