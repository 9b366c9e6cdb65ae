package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrNotAnImage = errors.New("file is not a supported image")

// Variant - производное изображение для карточки
type Variant struct {
	Name     string
	MaxWidth int
}

var (
	VariantThumbnail = Variant{Name: "thumbnail", MaxWidth: 480}
	VariantPreview   = Variant{Name: "preview", MaxWidth: 1280}
)

// Processor уменьшает изображения для сетки портфолио
type Processor struct {
	quality int // JPEG quality (1-100)
}

func NewProcessor(quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Processor{quality: quality}
}

// Info - размеры и формат исходного файла
type Info struct {
	Width  int
	Height int
	Format string
}

// Inspect читает только заголовок изображения
func Inspect(r io.Reader) (Info, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return Info{}, ErrNotAnImage
	}
	return Info{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// Resize уменьшает изображение до ширины variant.MaxWidth с сохранением пропорций.
// Изображение уже нужной ширины не увеличивается. Результат: PNG для png/gif, иначе JPEG.
func (p *Processor) Resize(data []byte, variant Variant) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", ErrNotAnImage
	}

	resized := p.scale(img, variant.MaxWidth)

	var buf bytes.Buffer
	switch format {
	case "png", "gif":
		if err := png.Encode(&buf, resized); err != nil {
			return nil, "", fmt.Errorf("failed to encode PNG: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	default:
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, "", fmt.Errorf("failed to encode JPEG: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}

func (p *Processor) scale(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if maxWidth <= 0 || width <= maxWidth {
		return img
	}

	newHeight := height * maxWidth / width
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
