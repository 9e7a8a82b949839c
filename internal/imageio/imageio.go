// Package imageio reads images in any registered format and writes them in
// one of the supported output formats without leaving partial files behind.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"

	"github.com/moby/sys/atomicwriter"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedFormat = errors.New("unsupported output format, use PNG, BMP, or JPG/JPEG")

// Format is an output encoding.
type Format string

const (
	PNG  Format = "PNG"
	BMP  Format = "BMP"
	JPEG Format = "JPEG"
)

const DefaultJPEGQuality = 100

var formats = map[string]Format{
	"PNG":  PNG,
	"BMP":  BMP,
	"JPG":  JPEG,
	"JPEG": JPEG,
}

// FormatFromPath picks the output format from the file extension,
// case-insensitively.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if f, ok := formats[strings.ToUpper(ext)]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Options controls encoding.
type Options struct {
	// JPEGQuality ranges from 1 to 100. Zero selects DefaultJPEGQuality.
	JPEGQuality int
}

// Read opens and decodes the image at path. The decoder is chosen by content.
// Errors name path.
func Read(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	img, name, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	return img, name, nil
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format, opts Options) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case JPEG:
		q := opts.JPEGQuality
		if q == 0 {
			q = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Write encodes img in memory and then replaces path atomically. The
// destination directory must exist. On failure path is left as it was.
// Errors name path.
func Write(path string, img image.Image, f Format, opts Options) error {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f, opts); err != nil {
		return fmt.Errorf("encode %s as %s: %w", path, f, err)
	}
	if err := atomicwriter.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
