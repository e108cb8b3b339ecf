package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	LogoMaxWidth  = 256
	LogoMaxHeight = 256

	// MaxLogoChars bounds a stored logo_url, data URIs included.
	MaxLogoChars = 65000
)

// inline logos step down through these boxes until the data URI fits
var inlineLogoBoxes = []int{LogoMaxWidth, 192, 128, 96, 64, 48, 32}

const inlineLogoJPEGQuality = 70

// ResizeLogo decodes an uploaded image (jpeg/png/gif/bmp/tiff), fits it into
// LogoMaxWidth x LogoMaxHeight and re-encodes it as PNG.
func ResizeLogo(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, ValidationError("unsupported image: " + err.Error())
	}
	var fitted image.Image = img
	b := img.Bounds()
	if b.Dx() > LogoMaxWidth || b.Dy() > LogoMaxHeight {
		fitted = imaging.Fit(img, LogoMaxWidth, LogoMaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LogoDataURI renders png bytes as an inline data URI.
func LogoDataURI(png []byte) string {
	return dataURI("image/png", png)
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// InlineLogoURI returns a data URI of at most maxChars characters. Larger
// logos are re-encoded in smaller boxes, as PNG and then as JPEG, and a logo
// that never fits is rejected with ErrValidation.
func InlineLogoURI(png []byte, maxChars int) (string, error) {
	if uri := LogoDataURI(png); len(uri) <= maxChars {
		return uri, nil
	}
	img, err := imaging.Decode(bytes.NewReader(png))
	if err != nil {
		return "", ValidationError("unsupported image: " + err.Error())
	}
	for _, box := range inlineLogoBoxes {
		fitted := img
		if b := img.Bounds(); b.Dx() > box || b.Dy() > box {
			fitted = imaging.Fit(img, box, box, imaging.Lanczos)
		}
		for _, enc := range []struct {
			mime   string
			format imaging.Format
			opts   []imaging.EncodeOption
		}{
			{"image/png", imaging.PNG, nil},
			{"image/jpeg", imaging.JPEG, []imaging.EncodeOption{imaging.JPEGQuality(inlineLogoJPEGQuality)}},
		} {
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, fitted, enc.format, enc.opts...); err != nil {
				return "", err
			}
			if uri := dataURI(enc.mime, buf.Bytes()); len(uri) <= maxChars {
				return uri, nil
			}
		}
	}
	return "", ValidationError("logo too large")
}

// StoreLogo saves the processed logo with the configured storage provider and
// returns the value to keep in logo_url.
func StoreLogo(ctx context.Context, adminId string, png []byte) (string, error) {
	switch GetStorageProvider() {
	case StorageProviderGCS:
		objectKey := fmt.Sprintf("%s/logo/%s.png", adminId, uuid.NewString())
		if err := UploadBytesToGCS(ctx, objectKey, png, "image/png"); err != nil {
			return "", err
		}
		return BuildObjectAccessURL(objectKey), nil
	case StorageProviderInline:
		return InlineLogoURI(png, MaxLogoChars)
	default:
		return "", fmt.Errorf("storage provider %q is not supported", GetStorageProvider())
	}
}

// RemoveStoredLogo deletes the bucket object behind a replaced logo_url.
// Inline data URIs and foreign URLs are left alone.
func RemoveStoredLogo(ctx context.Context, logoUrl string) error {
	objectKey := ExtractObjectKeyFromURL(logoUrl)
	if objectKey == "" || GetStorageProvider() != StorageProviderGCS {
		return nil
	}
	return DeleteObjectFromGCS(ctx, objectKey)
}
