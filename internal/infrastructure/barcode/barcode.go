// Package barcode renders product barcodes and shelf labels as PNG images.
package barcode

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/big"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ContentTypePNG is the MIME type of all generated images
const ContentTypePNG = "image/png"

// Default barcode image size in pixels
const (
	DefaultWidth  = 300
	DefaultHeight = 100
)

var (
	// ErrEmptyContent is returned when there is nothing to encode
	ErrEmptyContent = errors.New("barcode content is empty")
	// ErrInvalidSize is returned for non-positive or oversized dimensions
	ErrInvalidSize = errors.New("barcode size must be between 1 and 2000 pixels")
)

const maxDimension = 2000

// Code128 encodes content as a Code 128 barcode PNG
func Code128(content string, width, height int) ([]byte, error) {
	bc, err := encodeCode128(content, width, height)
	if err != nil {
		return nil, err
	}
	return encodePNG(bc)
}

// EAN13 encodes a 12 or 13 digit code as an EAN-13 barcode PNG
func EAN13(code string, width, height int) ([]byte, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	bc, err := ean.Encode(code)
	if err != nil {
		return nil, fmt.Errorf("encode ean-13: %w", err)
	}
	scaled, err := barcode.Scale(bc, width, height)
	if err != nil {
		return nil, fmt.Errorf("scale barcode: %w", err)
	}
	return encodePNG(scaled)
}

// Encode picks EAN-13 for 13-digit numeric codes and Code 128 otherwise
func Encode(content string, width, height int) ([]byte, error) {
	if len(content) == 13 && isDigits(content) && ValidEAN13(content) {
		return EAN13(content, width, height)
	}
	return Code128(content, width, height)
}

func encodeCode128(content string, width, height int) (barcode.Barcode, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	bc, err := code128.Encode(content)
	if err != nil {
		return nil, fmt.Errorf("encode code128: %w", err)
	}
	// Code 128 needs at least one pixel per module.
	if width < bc.Bounds().Dx() {
		width = bc.Bounds().Dx()
	}
	scaled, err := barcode.Scale(bc, width, height)
	if err != nil {
		return nil, fmt.Errorf("scale barcode: %w", err)
	}
	return scaled, nil
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 || width > maxDimension || height > maxDimension {
		return ErrInvalidSize
	}
	return nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateEAN13 returns a random 13 digit EAN code with a valid check digit.
// The prefix (up to 12 digits) is kept as the leading digits; "2" marks
// in-store numbering.
func GenerateEAN13(prefix string) (string, error) {
	if prefix == "" {
		prefix = "2"
	}
	if len(prefix) > 12 || !isDigits(prefix) {
		return "", fmt.Errorf("invalid ean prefix %q", prefix)
	}
	var sb strings.Builder
	sb.WriteString(prefix)
	for sb.Len() < 12 {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate digit: %w", err)
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	body := sb.String()
	return body + string(rune('0'+checkDigit(body))), nil
}

// ValidEAN13 reports whether code is 13 digits with a correct check digit
func ValidEAN13(code string) bool {
	if len(code) != 13 || !isDigits(code) {
		return false
	}
	return int(code[12]-'0') == checkDigit(code[:12])
}

// checkDigit computes the EAN check digit for the first 12 digits
func checkDigit(body string) int {
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(body[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Label is the content of a printable shelf sticker
type Label struct {
	Name    string
	Price   string
	Code    string
	Caption string
}

// Label size in pixels
const (
	LabelWidth  = 400
	LabelHeight = 240
)

// RenderLabel draws the product name, price and barcode on a white sticker
func RenderLabel(l Label) ([]byte, error) {
	code := strings.TrimSpace(l.Code)
	if code == "" {
		return nil, ErrEmptyContent
	}

	img := image.NewRGBA(image.Rect(0, 0, LabelWidth, LabelHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	drawText(img, truncate(l.Name, 26), 10, 10, 2)
	if l.Price != "" {
		drawText(img, truncate(l.Price, 18), 10, 42, 2)
	}

	var bc image.Image
	var err error
	if len(code) == 13 && ValidEAN13(code) {
		var raw barcode.Barcode
		raw, err = ean.Encode(code)
		if err == nil {
			bc, err = barcode.Scale(raw, LabelWidth-40, 110)
		}
	} else {
		bc, err = encodeCode128(code, LabelWidth-40, 110)
	}
	if err != nil {
		return nil, fmt.Errorf("encode label barcode: %w", err)
	}

	b := bc.Bounds()
	x := (LabelWidth - b.Dx()) / 2
	if x < 0 {
		x = 0
	}
	draw.Draw(img, image.Rect(x, 80, x+b.Dx(), 80+b.Dy()), bc, b.Min, draw.Src)

	caption := l.Caption
	if caption == "" {
		caption = code
	}
	drawText(img, truncate(caption, 52), (LabelWidth-len(truncate(caption, 52))*7)/2, 80+b.Dy()+8, 1)

	return encodePNG(img)
}

// drawText renders s with the built-in 7x13 face at the given integer scale
func drawText(dst *image.RGBA, s string, x, y, scale int) {
	if s == "" {
		return
	}
	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Ceil()
	h := face.Metrics().Height.Ceil()

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)

	target := image.Rect(x, y, x+w*scale, y+h*scale)
	draw.NearestNeighbor.Scale(dst, target, src, src.Bounds(), draw.Over, nil)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
