package bmp

import (
	"errors"
	"log/slog"
)

// Sentinel errors for bitmap decoding and encoding.
var (
	// ErrTruncated indicates the input ended early.
	ErrTruncated = errors.New("bmp: truncated input")

	// ErrBadMagic indicates a missing "BM" signature.
	ErrBadMagic = errors.New("bmp: not a bitmap file")

	// ErrUnsupportedHeader indicates an info header size other than 40, 108 or 124.
	ErrUnsupportedHeader = errors.New("bmp: unsupported info header")

	// ErrUnsupportedDepth indicates a bit count other than 8, 24 or 32.
	ErrUnsupportedDepth = errors.New("bmp: unsupported bit depth")

	// ErrUnsupportedCompression indicates RLE, JPEG, PNG or non-default bit fields.
	ErrUnsupportedCompression = errors.New("bmp: unsupported compression")

	// ErrPaletteRequired indicates an 8-bit image without a colour table.
	ErrPaletteRequired = errors.New("bmp: palette required")

	// ErrCorruptHeader indicates inconsistent header values.
	ErrCorruptHeader = errors.New("bmp: corrupt header")
)

// Layout constants.
const (
	FileHeaderSize = 14
	V1HeaderSize   = 40
	V4HeaderSize   = 108
	V5HeaderSize   = 124

	compressionRGB       = 0
	compressionBitfields = 3

	// lcsSRGB is the 'sRGB' colour space tag written into V4/V5 headers.
	lcsSRGB = 0x73524742
	// lcsGMImages is the rendering intent written into V5 headers.
	lcsGMImages = 4

	pixelsPerMeter = 2835 // 72 DPI
)

// HeaderVersion selects the info header layout written by Encode.
type HeaderVersion int

const (
	// V1 is BITMAPINFOHEADER.
	V1 HeaderVersion = iota
	// V4 is BITMAPV4HEADER.
	V4
	// V5 is BITMAPV5HEADER.
	V5
)

// Size returns the on-disk size of the header layout.
func (v HeaderVersion) Size() uint32 {
	switch v {
	case V4:
		return V4HeaderSize
	case V5:
		return V5HeaderSize
	default:
		return V1HeaderSize
	}
}

// FileHeader is the fixed 14-byte BITMAPFILEHEADER.
type FileHeader struct {
	Type       [2]byte
	FileSize   uint32
	Reserved1  uint16
	Reserved2  uint16
	DataOffset uint32
}

// InfoHeader is the union of the V1, V4 and V5 info headers. Fields past
// HeaderSize are zero after decoding.
type InfoHeader struct {
	// V1
	HeaderSize      uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	SizeImage       uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      uint32
	ColorsImportant uint32

	// V4
	RedMask    uint32
	GreenMask  uint32
	BlueMask   uint32
	AlphaMask  uint32
	CSType     uint32
	Endpoints  [36]byte
	GammaRed   uint32
	GammaGreen uint32
	GammaBlue  uint32

	// V5
	Intent      uint32
	ProfileData uint32
	ProfileSize uint32
	Reserved    uint32
}

// Option configures the codec.
type Option func(*Options)

// Options holds codec parameters.
type Options struct {
	// Header is the info header layout written by Encode.
	Header HeaderVersion

	// Logger receives debug records; defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns V1 headers and the default logger.
func DefaultOptions() Options {
	return Options{Header: V1, Logger: slog.Default()}
}

// WithHeaderVersion selects the info header layout written by Encode.
func WithHeaderVersion(v HeaderVersion) Option {
	return func(o *Options) {
		if v >= V1 && v <= V5 {
			o.Header = v
		}
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// rowStride is the padded size of one stored row.
func rowStride(bitCount uint16, width uint32) uint64 {
	return (uint64(bitCount)*uint64(width) + 31) / 32 * 4
}
