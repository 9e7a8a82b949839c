package stegano

import (
	"context"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/yyyoichi/stegano_lsb/internal/bitconv"
	"github.com/yyyoichi/stegano_lsb/internal/carrier"
	"github.com/yyyoichi/stegano_lsb/internal/frame"
	"github.com/yyyoichi/stegano_lsb/internal/imageio"
)

// DefaultDelimiter marks the end of the hidden message.
const DefaultDelimiter = "11111111"

var (
	ErrImageRead          = errors.New("failed to read image")
	ErrImageWrite         = errors.New("failed to write image")
	ErrUnsupportedFormat  = imageio.ErrUnsupportedFormat
	ErrCapacityExceeded   = errors.New("message does not fit in the image")
	ErrUnencodableMessage = errors.New("message cannot be encoded with 8 bits per character")
	ErrInvalidDelimiter   = errors.New("delimiter must be a non-empty string of 0 and 1")
)

// Embed hides message in src with the specified options.
// This is a convenience function that creates a Stegano instance and calls its Embed method.
func Embed(ctx context.Context, src image.Image, message string, opts ...Option) (*image.NRGBA, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return s.Embed(ctx, src, message)
}

// Extract recovers the hidden message from src with the specified options.
// This is a convenience function that creates a Stegano instance and calls its Extract method.
func Extract(ctx context.Context, src image.Image, opts ...Option) (string, error) {
	s, err := New(opts...)
	if err != nil {
		return "", err
	}
	return s.Extract(ctx, src)
}

// EmbedFile hides message in the image at srcPath and writes the result to outPath.
// This is a convenience function that creates a Stegano instance and calls its EmbedFile method.
func EmbedFile(ctx context.Context, srcPath, message, outPath string, opts ...Option) error {
	s, err := New(opts...)
	if err != nil {
		return err
	}
	return s.EmbedFile(ctx, srcPath, message, outPath)
}

// ExtractFile recovers the hidden message from the image at path.
// This is a convenience function that creates a Stegano instance and calls its ExtractFile method.
func ExtractFile(ctx context.Context, path string, opts ...Option) (string, error) {
	s, err := New(opts...)
	if err != nil {
		return "", err
	}
	return s.ExtractFile(ctx, path)
}

// Open reads and decodes the image at path with any registered decoder.
func Open(path string) (image.Image, error) {
	img, _, err := imageio.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageRead, err)
	}
	return img, nil
}

// Capacity returns the number of bits src can carry: one per R, G and B
// channel of every pixel.
func Capacity(src image.Image) int {
	r := src.Bounds()
	return r.Dx() * r.Dy() * carrier.Channels
}

// MaxMessageLen returns the number of 8-bit characters that fit in src
// together with delimiter.
func MaxMessageLen(src image.Image, delimiter string) int {
	return max(Capacity(src)-len(delimiter), 0) / 8
}

// ValidateDelimiter reports whether delimiter is a non-empty string of '0'
// and '1'. The codec itself accepts any delimiter.
func ValidateDelimiter(delimiter string) error {
	if delimiter == "" {
		return fmt.Errorf("%w: empty", ErrInvalidDelimiter)
	}
	for i := range len(delimiter) {
		if c := delimiter[i]; c != '0' && c != '1' {
			return fmt.Errorf("%w: %q", ErrInvalidDelimiter, delimiter)
		}
	}
	return nil
}

type Stegano struct {
	delimiter   string
	truncate    bool
	jpegQuality int
	logger      *zap.Logger
}

// New initializes an LSB codec.
// By default the delimiter is DefaultDelimiter, oversized messages are
// rejected, JPEG output uses quality 100 and nothing is logged.
func New(opts ...Option) (*Stegano, error) {
	s := new(Stegano)
	if err := s.init(opts...); err != nil {
		return nil, err
	}
	return s, nil
}

// Embed hides message in a copy of src.
//
// Process:
//  1. Coerces src to opaque 8-bit RGB.
//  2. Maps each character onto one byte and frames the bytes, most significant
//     bit first, followed by the delimiter.
//  3. Writes the bits into the least-significant bit of R, G and B of each
//     pixel in row-major order, leaving every later channel untouched.
//
// Characters above U+00FF are rejected with ErrUnencodableMessage.
// A message longer than the capacity fails with ErrCapacityExceeded unless
// WithTruncate is set.
func (s *Stegano) Embed(ctx context.Context, src image.Image, message string) (*image.NRGBA, error) {
	payload, err := frame.Latin1Bytes(message)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnencodableMessage, err)
	}
	return s.EmbedBytes(ctx, src, payload)
}

// EmbedBytes hides payload in a copy of src. See Embed.
func (s *Stegano) EmbedBytes(ctx context.Context, src image.Image, payload []byte) (*image.NRGBA, error) {
	img := carrier.New(src)
	if err := s.embed(ctx, img, payload); err != nil {
		return nil, err
	}
	return img.Build(), nil
}

// Extract recovers the hidden message from src.
//
// Process:
//  1. Coerces src to opaque 8-bit RGB.
//  2. Reads the least-significant bit of R, G and B of every pixel.
//  3. Cuts the bits at the first delimiter starting on a character boundary.
//     Without a delimiter the whole scan is used.
//  4. Drops an incomplete trailing byte and maps each byte onto a character.
//
// Extract never fails on images that carry no message; it returns whatever
// the low bits spell.
func (s *Stegano) Extract(ctx context.Context, src image.Image) (string, error) {
	b, err := s.ExtractBytes(ctx, src)
	if err != nil {
		return "", err
	}
	return frame.Latin1String(b), nil
}

// ExtractBytes recovers the hidden payload from src. See Extract.
func (s *Stegano) ExtractBytes(ctx context.Context, src image.Image) ([]byte, error) {
	bits, err := carrier.New(src).LSBs(ctx)
	if err != nil {
		return nil, err
	}
	at := frame.DelimiterIndex(bits, s.delimiter)
	s.logger.Debug("extracted bits",
		zap.Int("scanned", len(bits)),
		zap.Int("delimiter_at", at),
	)
	if at >= 0 {
		bits = bits[:at]
	}
	return bitconv.BoolsToBytes(bits), nil
}

// EmbedFile hides message in the image at srcPath and writes it to outPath
// in the format named by the extension of outPath.
//
// The extension is checked before any I/O and must be PNG, BMP, JPG or JPEG
// in any case; other extensions fail with ErrUnsupportedFormat. The source
// file is never modified. The output is written to a temporary file and
// renamed into place, so a failed call leaves no partial image at outPath.
func (s *Stegano) EmbedFile(ctx context.Context, srcPath, message, outPath string) error {
	format, err := imageio.FormatFromPath(outPath)
	if err != nil {
		return err
	}
	payload, err := frame.Latin1Bytes(message)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnencodableMessage, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := Open(srcPath)
	if err != nil {
		return err
	}
	img := carrier.New(src)
	if err := s.embed(ctx, img, payload); err != nil {
		return err
	}
	if err := imageio.Write(outPath, img.Build(), format, imageio.Options{JPEGQuality: s.jpegQuality}); err != nil {
		return fmt.Errorf("%w: %w", ErrImageWrite, err)
	}
	s.logger.Info("message encoded",
		zap.String("source", srcPath),
		zap.String("output", outPath),
		zap.String("format", string(format)),
	)
	return nil
}

// ExtractFile recovers the hidden message from the image at path.
func (s *Stegano) ExtractFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, err := Open(path)
	if err != nil {
		return "", err
	}
	return s.Extract(ctx, src)
}

func (s *Stegano) embed(ctx context.Context, img carrier.Image, payload []byte) error {
	bits, err := frame.Encode(payload, s.delimiter)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnencodableMessage, err)
	}
	capacity := img.Capacity()
	if bits.Len() > capacity && !s.truncate {
		return fmt.Errorf("%w: need %d bits, image holds %d", ErrCapacityExceeded, bits.Len(), capacity)
	}
	n, err := img.Embed(ctx, bits)
	if err != nil {
		return err
	}
	if n < bits.Len() {
		s.logger.Warn("message truncated",
			zap.Int("bits", bits.Len()),
			zap.Int("written", n),
		)
	}
	s.logger.Debug("embedded bits",
		zap.Int("written", n),
		zap.Int("capacity", capacity),
	)
	return nil
}

func (s *Stegano) init(opts ...Option) error {
	s.delimiter = DefaultDelimiter
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return err
		}
	}
	if s.jpegQuality == 0 {
		s.jpegQuality = imageio.DefaultJPEGQuality
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return nil
}
