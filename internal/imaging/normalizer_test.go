package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeJPEG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestNormalize_EmptyInput(t *testing.T) {
	n := NewNormalizer(768, 85)

	_, err := n.Normalize(nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}

	_, err = n.Normalize([]byte{})
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput for zero-length slice, got %v", err)
	}
}

func TestNormalize_UndecodableInput(t *testing.T) {
	n := NewNormalizer(768, 85)

	inputs := [][]byte{
		[]byte("definitely not an image"),
		{0xFF, 0xD8, 0xFF}, // truncated JPEG header
		{0x00, 0x01, 0x02, 0x03},
	}
	for _, data := range inputs {
		if _, err := n.Normalize(data); !errors.Is(err, ErrDecode) {
			t.Errorf("Expected ErrDecode for %d bytes, got %v", len(data), err)
		}
	}
}

func TestNormalize_SmallImageNotUpscaled(t *testing.T) {
	n := NewNormalizer(768, 85)

	out, err := n.Normalize(encodeJPEG(t, 100, 60, color.RGBA{R: 120, G: 130, B: 110, A: 255}))
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if out.Width != 100 || out.Height != 60 {
		t.Errorf("Small image must keep its dimensions, got %dx%d", out.Width, out.Height)
	}
}

func TestNormalize_LargeImageBounded(t *testing.T) {
	n := NewNormalizer(256, 85)

	out, err := n.Normalize(encodePNG(t, 1024, 512))
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if out.Width > 256 || out.Height > 256 {
		t.Errorf("Expected both dimensions bounded by 256, got %dx%d", out.Width, out.Height)
	}
	// 2:1 aspect ratio must survive the resize.
	if out.Width != 256 || out.Height != 128 {
		t.Errorf("Expected 256x128, got %dx%d", out.Width, out.Height)
	}
}

func TestNormalize_PortraitAspectPreserved(t *testing.T) {
	n := NewNormalizer(300, 85)

	out, err := n.Normalize(encodePNG(t, 400, 800))
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if out.Height != 300 || out.Width != 150 {
		t.Errorf("Expected 150x300, got %dx%d", out.Width, out.Height)
	}
}

func TestNormalize_OutputIsValidJPEG(t *testing.T) {
	n := NewNormalizer(768, 85)

	out, err := n.Normalize(encodePNG(t, 320, 240))
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if out.MIMEType != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", out.MIMEType)
	}

	decoded, format, err := image.Decode(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("Output must be decodable: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("Expected jpeg output, got %s", format)
	}
	if decoded.Bounds().Dx() != out.Width || decoded.Bounds().Dy() != out.Height {
		t.Error("Reported dimensions must match encoded output")
	}
}

func TestNormalize_Base64MatchesData(t *testing.T) {
	n := NewNormalizer(768, 85)

	out, err := n.Normalize(encodeJPEG(t, 64, 64, color.RGBA{R: 90, G: 90, B: 90, A: 255}))
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(out.Base64)
	if err != nil {
		t.Fatalf("Base64 field must decode: %v", err)
	}
	if !bytes.Equal(decoded, out.Data) {
		t.Error("Base64 field must encode exactly the JPEG bytes")
	}
}

func TestNormalize_DarkImageBrightened(t *testing.T) {
	n := NewNormalizer(768, 85)

	out, err := n.Normalize(encodeJPEG(t, 80, 80, color.RGBA{R: 20, G: 20, B: 20, A: 255}))
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("Output must be decodable: %v", err)
	}

	r, g, b, _ := decoded.At(40, 40).RGBA()
	lum := 0.299*float64(r)/65535 + 0.587*float64(g)/65535 + 0.114*float64(b)/65535
	// Input luminance is roughly 0.08; correction must lift it.
	if lum <= 0.09 {
		t.Errorf("Expected the dark image to be brightened, got luminance %.3f", lum)
	}
}

func TestCorrectionParams_GainClamped(t *testing.T) {
	// A flat single-color image has zero spread; gain must stay in bounds.
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}

	gain, bias := correctionParams(img)
	if gain < minGain || gain > maxGain {
		t.Errorf("Gain %v outside [%v, %v]", gain, minGain, maxGain)
	}
	if bias < -0.15 || bias > 0.15 {
		t.Errorf("Bias %v outside clamp range", bias)
	}
}

func TestRemap_Bounds(t *testing.T) {
	if got := remap(0, 2.0, -0.5); got != 0 {
		t.Errorf("Expected underflow clamped to 0, got %d", got)
	}
	if got := remap(65535, 2.0, 0.5); got != 255 {
		t.Errorf("Expected overflow clamped to 255, got %d", got)
	}
	if got := remap(65535, 1.0, 0); got != 255 {
		t.Errorf("Expected identity remap of white to stay white, got %d", got)
	}
}
