// Package imaging normalizes uploaded profile pictures.
package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	ProfileSize    = 512
	WebPQuality    = 80
	ProfileMIME    = "image/webp"
	ProfileFileExt = ".webp"
)

var (
	ErrUnsupportedImage = errors.New("Invalid image type")
	ErrInvalidImage     = errors.New("Invalid image file")
)

// NormalizeProfileImage center-crops content to a square, scales it to
// ProfileSize×ProfileSize and re-encodes it as WebP.
func NormalizeProfileImage(content []byte) ([]byte, error) {
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return nil, ErrUnsupportedImage
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, ErrInvalidImage
	}
	if !isSupportedDecodedFormat(format) {
		return nil, ErrUnsupportedImage
	}

	square := cropToSquare(decoded)
	scaled := scaleTo(square, ProfileSize, ProfileSize)
	return encodeWebP(scaled, WebPQuality)
}

func cropToSquare(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	side := w
	if h < side {
		side = h
	}
	if side <= 0 {
		return src
	}

	x := b.Min.X + (w-side)/2
	y := b.Min.Y + (h-side)/2
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(dst, dst.Bounds(), src, image.Point{X: x, Y: y}, draw.Src)
	return dst
}

func scaleTo(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}
