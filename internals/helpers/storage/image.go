package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"kindergarten_backend/internals/configs"
)

var ErrUnsupportedImage = fmt.Errorf("format tidak didukung")

/* =======================================================================
   Konfigurasi WebP (ENV-Driven)
======================================================================= */

type WebPOptions struct {
	MaxW     int     // batas lebar (resize keep-aspect)
	MaxH     int     // batas tinggi
	Quality  float32 // 0..100
	Lossless bool
}

func DefaultWebPOptions() WebPOptions {
	return WebPOptions{
		MaxW:    configs.GetInt("IMAGE_WEBP_MAX_W", 1600),
		MaxH:    configs.GetInt("IMAGE_WEBP_MAX_H", 1600),
		Quality: float32(configs.GetInt("IMAGE_WEBP_QUALITY", 80)),
	}
}

// decodeImage: sniff MIME (jpeg/png/webp), fallback ke ekstensi.
func decodeImage(all []byte, filename string) (image.Image, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	r := bytes.NewReader(all)

	switch {
	case strings.Contains(ct, "jpeg"):
		return jpeg.Decode(r)
	case strings.Contains(ct, "png"):
		return png.Decode(r)
	case strings.Contains(ct, "webp"):
		return webp.Decode(r)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".png":
		return png.Decode(r)
	case ".webp":
		return webp.Decode(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, ct)
}

// downscaleIfNeeded: imaging.Fit keeps the aspect ratio and never upscales.
func downscaleIfNeeded(src image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 && maxH <= 0 {
		return src
	}
	b := src.Bounds()
	if (maxW <= 0 || b.Dx() <= maxW) && (maxH <= 0 || b.Dy() <= maxH) {
		return src
	}
	if maxW <= 0 {
		maxW = b.Dx()
	}
	if maxH <= 0 {
		maxH = b.Dy()
	}
	return imaging.Fit(src, maxW, maxH, imaging.CatmullRom)
}

func encodeToWebP(img image.Image, opt WebPOptions) ([]byte, error) {
	q := opt.Quality
	if q <= 0 {
		q = 80
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: opt.Lossless, Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConvertToWebP decode → resize → encode.
func ConvertToWebP(data []byte, filename string, opt WebPOptions) ([]byte, error) {
	img, err := decodeImage(data, filename)
	if err != nil {
		return nil, err
	}
	return encodeToWebP(downscaleIfNeeded(img, opt.MaxW, opt.MaxH), opt)
}
