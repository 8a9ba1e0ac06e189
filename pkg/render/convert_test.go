package render

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestToJPEG(t *testing.T) {
	data, err := ToJPEG(testImage(40, 30), 90)
	if err != nil {
		t.Fatalf("ToJPEG() error: %v", err)
	}
	if len(data) < 3 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Fatalf("ToJPEG() missing SOI marker")
	}

	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("decoded bounds = %v", b)
	}
}

func TestToJPEGInvalidQualityFallsBack(t *testing.T) {
	if _, err := ToJPEG(testImage(8, 8), 0); err != nil {
		t.Errorf("ToJPEG(quality 0) error: %v", err)
	}
	if _, err := ToJPEG(testImage(8, 8), 500); err != nil {
		t.Errorf("ToJPEG(quality 500) error: %v", err)
	}
}

func TestToPNG(t *testing.T) {
	data, err := ToPNG(testImage(10, 10))
	if err != nil {
		t.Fatalf("ToPNG() error: %v", err)
	}
	if !strings.HasPrefix(string(data), "\x89PNG") {
		t.Error("ToPNG() missing PNG signature")
	}
}

func TestThumbnail(t *testing.T) {
	thumb := Thumbnail(testImage(800, 1100), 200)
	if b := thumb.Bounds(); b.Dx() != 200 || b.Dy() != 275 {
		t.Errorf("Thumbnail bounds = %v, want 200x275", b)
	}

	small := testImage(100, 100)
	if Thumbnail(small, 200) != small {
		t.Error("Thumbnail should return narrow images unchanged")
	}
}

func TestDataURL(t *testing.T) {
	got := DataURL(ContentTypeJPEG, []byte("abc"))
	if got != "data:image/jpeg;base64,YWJj" {
		t.Errorf("DataURL() = %q", got)
	}
}
