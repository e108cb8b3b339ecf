package utils_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math/rand"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/mmdatafocus/tpq_backend/utils"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 5, G: 150, B: 105, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

// encodeNoisePNG builds an image that PNG cannot compress.
func encodeNoisePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	rng.Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func decodedBounds(t *testing.T, data []byte) image.Rectangle {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
	return img.Bounds()
}

func TestResizeLogoFitsLargeImages(t *testing.T) {
	out, err := utils.ResizeLogo(bytes.NewReader(encodePNG(t, 1024, 512)))
	if err != nil {
		t.Fatalf("ResizeLogo: %v", err)
	}
	b := decodedBounds(t, out)
	if b.Dx() != utils.LogoMaxWidth || b.Dy() != utils.LogoMaxHeight/2 {
		t.Fatalf("resized to %dx%d", b.Dx(), b.Dy())
	}
}

func TestResizeLogoKeepsSmallImages(t *testing.T) {
	out, err := utils.ResizeLogo(bytes.NewReader(encodePNG(t, 64, 32)))
	if err != nil {
		t.Fatalf("ResizeLogo: %v", err)
	}
	if b := decodedBounds(t, out); b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf("small image resized to %dx%d", b.Dx(), b.Dy())
	}
}

func TestResizeLogoRejectsNonImages(t *testing.T) {
	_, err := utils.ResizeLogo(strings.NewReader("definitely not an image"))
	if !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestStoreLogoInline(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", utils.StorageProviderInline)
	data := encodePNG(t, 4, 4)
	url, err := utils.StoreLogo(context.Background(), "admin-1", data)
	if err != nil {
		t.Fatalf("StoreLogo: %v", err)
	}
	if url != utils.LogoDataURI(data) || !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("inline logo = %.40q...", url)
	}
}

func TestStoreLogoInlineShrinksLargeLogos(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", utils.StorageProviderInline)
	resized, err := utils.ResizeLogo(bytes.NewReader(encodeNoisePNG(t, 400, 400)))
	if err != nil {
		t.Fatalf("ResizeLogo: %v", err)
	}
	if len(utils.LogoDataURI(resized)) <= utils.MaxLogoChars {
		t.Fatalf("noise logo already fits, test needs a larger image")
	}

	url, err := utils.StoreLogo(context.Background(), "admin-1", resized)
	if err != nil {
		t.Fatalf("StoreLogo: %v", err)
	}
	if len(url) > utils.MaxLogoChars {
		t.Fatalf("inline logo is %d chars, limit %d", len(url), utils.MaxLogoChars)
	}
	comma := strings.IndexByte(url, ',')
	if !strings.HasPrefix(url, "data:image/") || comma < 0 {
		t.Fatalf("inline logo = %.40q...", url)
	}
	raw, err := base64.StdEncoding.DecodeString(url[comma+1:])
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not an image: %v", err)
	}
	if b := img.Bounds(); b.Dx() > utils.LogoMaxWidth || b.Dy() > utils.LogoMaxHeight || b.Dx() == 0 {
		t.Fatalf("inline logo is %dx%d", b.Dx(), b.Dy())
	}
}

func TestInlineLogoURIRejectsWhatNeverFits(t *testing.T) {
	_, err := utils.InlineLogoURI(encodeNoisePNG(t, 64, 64), 64)
	if !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestRemoveStoredLogoSkipsInline(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", utils.StorageProviderGCS)
	t.Setenv("GCS_BUCKET", "")
	// no object key, so no bucket call is attempted
	if err := utils.RemoveStoredLogo(context.Background(), "data:image/png;base64,AAAA"); err != nil {
		t.Fatalf("RemoveStoredLogo(data uri): %v", err)
	}
	if err := utils.RemoveStoredLogo(context.Background(), "https://example.com/logo.png"); err != nil {
		t.Fatalf("RemoveStoredLogo(foreign url): %v", err)
	}
}

func TestExtractObjectKeyFromURL(t *testing.T) {
	t.Setenv("STORAGE_ACCESS_BASE_URL", "")
	t.Setenv("GCS_URL", "")
	t.Setenv("GCS_BUCKET", "tpq-assets")
	key := "admin-1/logo/abc.png"
	if got := utils.ExtractObjectKeyFromURL(utils.BuildObjectAccessURL(key)); got != key {
		t.Fatalf("round trip = %q, want %q", got, key)
	}
	if got := utils.ExtractObjectKeyFromURL("gs://tpq-assets/" + key); got != key {
		t.Fatalf("gs url = %q", got)
	}
}
