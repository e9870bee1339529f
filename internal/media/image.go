package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"learnhub/pkg/apierror"
)

func decodeSource(source string) ([]byte, string, error) {
	payload := source
	if strings.HasPrefix(payload, "data:") {
		comma := strings.Index(payload, ",")
		if comma < 0 || !strings.Contains(payload[:comma], ";base64") {
			return nil, "", apierror.BadRequest("image must be a base64 data URI")
		}
		payload = payload[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", apierror.BadRequest("image is not valid base64")
	}

	contentType := http.DetectContentType(data)
	if !isImageMIME(contentType) {
		return nil, "", apierror.New("UNSUPPORTED_TYPE", "file is not an image", contentType, http.StatusUnsupportedMediaType)
	}

	return data, contentType, nil
}

func isImageMIME(mimeType string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(mimeType))
	return strings.HasPrefix(cleaned, "image/")
}

// resize scales the image to targetWidth and re-encodes it. PNG and GIF
// sources come out as PNG to keep transparency; everything else as JPEG.
func resize(data []byte, targetWidth int) ([]byte, string, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", apierror.New("UNSUPPORTED_TYPE", "cannot decode image", err.Error(), http.StatusUnsupportedMediaType)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, "", apierror.New("UNSUPPORTED_TYPE", "invalid image dimensions", "", http.StatusUnsupportedMediaType)
	}

	targetHeight := bounds.Dy() * targetWidth / bounds.Dx()
	if targetHeight < 1 {
		targetHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if format == "png" || format == "gif" {
		if err := png.Encode(&buf, dst); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	}

	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
