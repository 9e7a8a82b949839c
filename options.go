package stegano

import (
	"fmt"

	"go.uber.org/zap"
)

type Option func(*Stegano) error

// WithDelimiter sets the bit pattern that terminates the message.
// Each '1' is embedded as a set bit and any other character as a clear bit;
// on extraction the pattern is matched literally, so a delimiter with other
// characters never matches. An empty delimiter embeds no terminator and
// makes extraction return the whole scan.
// Use ValidateDelimiter to reject malformed input early.
func WithDelimiter(delimiter string) Option {
	return func(s *Stegano) error {
		s.delimiter = delimiter
		return nil
	}
}

// WithTruncate drops message bits that do not fit in the image instead of
// failing with ErrCapacityExceeded. A truncated message usually loses its
// delimiter, so extraction returns the whole scan.
func WithTruncate() Option {
	return func(s *Stegano) error {
		s.truncate = true
		return nil
	}
}

// WithJPEGQuality sets the quality used when the output is JPEG, from 1 to 100.
// JPEG is lossy: a message written to JPEG is not expected to survive.
func WithJPEGQuality(quality int) Option {
	return func(s *Stegano) error {
		if quality < 1 || quality > 100 {
			return fmt.Errorf("jpeg quality %d out of range [1, 100]", quality)
		}
		s.jpegQuality = quality
		return nil
	}
}

// WithLogger logs embedding and extraction details to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Stegano) error {
		s.logger = logger
		return nil
	}
}
