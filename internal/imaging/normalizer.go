package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"runtime"
	"sync"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"gonum.org/v1/gonum/stat"

	"github.com/dsaini64/food-tracker-sub001/pkg/models"
)

var (
	// ErrEmptyInput indicates a zero-length upload buffer.
	ErrEmptyInput = errors.New("empty image buffer")

	// ErrDecode indicates a malformed, truncated or unsupported image.
	ErrDecode = errors.New("undecodable image")

	// ErrEncode indicates a failure re-encoding the corrected image.
	ErrEncode = errors.New("image re-encoding failed")
)

// Exposure correction bounds. Gain is clamped so a pathological histogram
// cannot blow the image out; the targets sit in the middle of the range the
// recognition model was observed to handle best.
const (
	targetLuminance = 0.50
	targetSpread    = 0.18
	minGain         = 0.85
	maxGain         = 1.60
	sampleStride    = 4
)

// Normalizer converts arbitrary uploaded images into the canonical form sent
// to the recognition collaborator. It is a fast, local, fail-fast gate: it
// must run before any external network call.
type Normalizer struct {
	maxDimension int
	jpegQuality  int
}

func NewNormalizer(maxDimension, jpegQuality int) *Normalizer {
	return &Normalizer{
		maxDimension: maxDimension,
		jpegQuality:  jpegQuality,
	}
}

// Normalize decodes the buffer, bounds it to the configured max dimension
// (preserving aspect ratio, never upscaling), applies the exposure
// auto-correction pass unconditionally and re-encodes as JPEG.
func (n *Normalizer) Normalize(data []byte) (*models.NormalizedImage, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: zero-sized image", ErrDecode)
	}

	scaled := n.scaleDown(src)
	corrected := autoCorrect(scaled)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, corrected, &jpeg.Options{Quality: n.jpegQuality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	out := buf.Bytes()
	return &models.NormalizedImage{
		Data:     out,
		MIMEType: "image/jpeg",
		Width:    corrected.Bounds().Dx(),
		Height:   corrected.Bounds().Dy(),
		Base64:   base64.StdEncoding.EncodeToString(out),
	}, nil
}

// scaleDown bounds the image to maxDimension on its longer axis. Images that
// already fit are returned untouched; upscaling never happens.
func (n *Normalizer) scaleDown(src image.Image) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= n.maxDimension && h <= n.maxDimension {
		return src
	}

	var dw, dh int
	if w >= h {
		dw = n.maxDimension
		dh = (h*n.maxDimension + w/2) / w
	} else {
		dh = n.maxDimension
		dw = (w*n.maxDimension + h/2) / h
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

// autoCorrect applies a linear brightness/contrast remap derived from the
// sampled luminance distribution. Well-exposed images pass through almost
// unchanged; dim or washed-out photos are pulled toward the target range.
func autoCorrect(src image.Image) *image.RGBA {
	gain, bias := correctionParams(src)

	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	// Process in horizontal strips for cache locality.
	numWorkers := runtime.NumCPU()
	height := bounds.Dy()
	if height < numWorkers {
		numWorkers = height
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		startY := bounds.Min.Y + i*rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > bounds.Max.Y {
			endY = bounds.Max.Y
		}
		if startY >= endY {
			continue
		}
		wg.Add(1)
		go func(startY, endY int) {
			defer wg.Done()
			for y := startY; y < endY; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					r, g, b, a := src.At(x, y).RGBA()
					off := dst.PixOffset(x-bounds.Min.X, y-bounds.Min.Y)
					dst.Pix[off+0] = remap(r, gain, bias)
					dst.Pix[off+1] = remap(g, gain, bias)
					dst.Pix[off+2] = remap(b, gain, bias)
					dst.Pix[off+3] = uint8(a >> 8)
				}
			}
		}(startY, endY)
	}
	wg.Wait()

	return dst
}

// correctionParams samples the luminance histogram and derives the linear
// gain/bias pair that moves it toward the target mean and spread.
func correctionParams(src image.Image) (gain, bias float64) {
	bounds := src.Bounds()
	samples := make([]float64, 0, (bounds.Dx()/sampleStride+1)*(bounds.Dy()/sampleStride+1))

	for y := bounds.Min.Y; y < bounds.Max.Y; y += sampleStride {
		for x := bounds.Min.X; x < bounds.Max.X; x += sampleStride {
			r, g, b, _ := src.At(x, y).RGBA()
			rf := float64(r) / 65535.0
			gf := float64(g) / 65535.0
			bf := float64(b) / 65535.0
			samples = append(samples, 0.299*rf+0.587*gf+0.114*bf)
		}
	}
	if len(samples) == 0 {
		return 1, 0
	}

	mean := stat.Mean(samples, nil)
	sigma := stat.StdDev(samples, nil)

	gain = 1.0
	if sigma > 1e-6 && sigma < targetSpread {
		gain = targetSpread / sigma
	}
	if gain < minGain {
		gain = minGain
	}
	if gain > maxGain {
		gain = maxGain
	}
	bias = targetLuminance - gain*mean

	// Keep the shift gentle; large biases wash out shadows or highlights.
	if bias > 0.15 {
		bias = 0.15
	}
	if bias < -0.15 {
		bias = -0.15
	}
	return gain, bias
}

func remap(channel uint32, gain, bias float64) uint8 {
	v := gain*(float64(channel)/65535.0) + bias
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(v*255.0 + 0.5)
}
