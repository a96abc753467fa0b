// Package avatar приводит загруженную картинку профиля к PNG не больше
// MaxSide по длинной стороне и кодирует её в data URI.
package avatar

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxSide = 300

	// MaxUploadBytes ограничивает тело запроса с картинкой
	MaxUploadBytes = 10 << 20

	// MaxPixels ограничивает размер из заголовка до полного декодирования
	MaxPixels = 40_000_000
)

var ErrInvalidImage = errors.New("file is not a supported image")

// Process декодирует картинку, уменьшает с сохранением пропорций и
// возвращает data:image/png;base64,...
func Process(r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(raw) > MaxUploadBytes {
		return "", fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxUploadBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return "", fmt.Errorf("%w: %dx%d is too large", ErrInvalidImage, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Thumbnail(src, MaxSide)); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Thumbnail вписывает картинку в квадрат side×side; маленькие не растягивает
func Thumbnail(src image.Image, side int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= side && h <= side {
		return src
	}

	nw, nh := side, side
	if w > h {
		nh = h * side / w
	} else {
		nw = w * side / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
