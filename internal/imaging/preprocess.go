package imaging

import (
	"image"
	"log/slog"
	"time"
)

const (
	thresholdBlockSize = 11
	thresholdC         = 2.0
	openKernelSize     = 2
	closeKernelSize    = 1
)

// DebugFrame is one retained intermediate stage of a preprocessing run.
// Frames are an explicit return value so a Preprocessor can be shared
// across pages and goroutines without accumulating state.
type DebugFrame struct {
	Name  string
	Image *image.Gray
}

// Preprocessor prepares rendered catalog pages for OCR.
type Preprocessor struct {
	Logger *slog.Logger
	Debug  bool // retain intermediate frames
}

func NewPreprocessor(logger *slog.Logger, debug bool) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{Logger: logger, Debug: debug}
}

// Preprocess runs the full pipeline, order matters:
// grayscale -> deskew -> denoise -> adaptive binarization -> morphological
// open+close. The returned image is binary, dark ink on white. Debug frames
// are returned only when Debug is set and have no effect on the result.
func (p *Preprocessor) Preprocess(src image.Image) (*image.Gray, []DebugFrame) {
	start := time.Now()
	var frames []DebugFrame
	keep := func(name string, img *image.Gray) {
		if p.Debug {
			frames = append(frames, DebugFrame{Name: name, Image: Clone(img)})
		}
	}

	gray := ToGray(src)
	keep("01_grayscale", gray)

	deskewed, angle := Deskew(gray)
	if angle != 0 {
		p.Logger.Info("page deskewed", "angle_deg", angle)
	}
	keep("02_deskewed", deskewed)

	denoised := MedianDenoise(deskewed)
	keep("03_denoised", denoised)

	binary := AdaptiveThreshold(denoised, thresholdBlockSize, thresholdC)
	keep("04_thresholded", binary)

	// Morphology runs ink-as-foreground: open drops isolated noise pixels,
	// close fills pinhole gaps. Kernels stay minimal so thin glyph strokes
	// survive.
	ink := Invert(binary)
	ink = Open(ink, openKernelSize, openKernelSize, 1)
	ink = Close(ink, closeKernelSize, closeKernelSize, 1)
	cleaned := Invert(ink)
	keep("05_cleaned", cleaned)

	p.Logger.Debug("preprocessing done",
		"width", cleaned.Bounds().Dx(),
		"height", cleaned.Bounds().Dy(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return cleaned, frames
}
