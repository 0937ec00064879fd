package snapshot

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/katalvlaran/provmap/province"
	"github.com/katalvlaran/provmap/raster"
)

// Sentinel errors for snapshot streams.
var (
	ErrBadMagic          = errors.New("snapshot: bad magic")
	ErrTruncated         = errors.New("snapshot: truncated stream")
	ErrMissingTerminator = errors.New("snapshot: missing terminator")
	ErrDimensionMismatch = errors.New("snapshot: dimension mismatch")
	ErrTooLarge          = errors.New("snapshot: matrix too large")
)

// Kind selects the matrix stored in a snapshot.
type Kind [4]byte

var (
	// Labels marks a label matrix snapshot.
	Labels = Kind{'S', 'D', 'A', 'T'}
	// ProvinceIDs marks a province-ID matrix snapshot.
	ProvinceIDs = Kind{'P', 'D', 'A', 'T'}
)

// MaxPixels bounds the matrix size accepted by readers.
const MaxPixels = 1 << 28

// readChunk is the number of elements decoded per read. Buffers grow with
// the data actually present, not with the declared size.
const readChunk = 1 << 16

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Option configures a writer.
type Option func(*Options)

// Options holds writer parameters.
type Options struct {
	Compress bool
	Level    zstd.EncoderLevel
}

// DefaultOptions writes uncompressed snapshots.
func DefaultOptions() Options {
	return Options{Level: zstd.SpeedDefault}
}

// WithCompression wraps the snapshot in zstd at the default level.
func WithCompression() Option {
	return func(o *Options) {
		o.Compress = true
	}
}

// WithLevel wraps the snapshot in zstd at level.
func WithLevel(level zstd.EncoderLevel) Option {
	return func(o *Options) {
		o.Compress = true
		o.Level = level
	}
}

// WriteLabels writes an SDAT snapshot of labels.
func WriteLabels(w io.Writer, dims raster.Dimensions, labels []uint32, opts ...Option) error {
	if len(labels) != dims.Area() {
		return fmt.Errorf("%w: %d labels for %dx%d", ErrDimensionMismatch, len(labels), dims.W, dims.H)
	}

	return write(w, Labels, dims, opts, func(bw io.Writer) error {
		return binary.Write(bw, binary.LittleEndian, labels)
	})
}

// WriteProvinceIDs writes a PDAT snapshot of ids.
func WriteProvinceIDs(w io.Writer, dims raster.Dimensions, ids []province.ID, opts ...Option) error {
	if len(ids) != dims.Area() {
		return fmt.Errorf("%w: %d ids for %dx%d", ErrDimensionMismatch, len(ids), dims.W, dims.H)
	}

	return write(w, ProvinceIDs, dims, opts, func(bw io.Writer) error {
		for _, id := range ids {
			if _, err := bw.Write(id[:]); err != nil {
				return err
			}
		}
		return nil
	})
}

func write(w io.Writer, kind Kind, dims raster.Dimensions, opts []Option, body func(io.Writer) error) error {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var zw *zstd.Encoder
	dst := w
	if o.Compress {
		var err error
		zw, err = zstd.NewWriter(w, zstd.WithEncoderLevel(o.Level))
		if err != nil {
			return fmt.Errorf("snapshot: zstd writer: %w", err)
		}
		dst = zw
	}
	bw := bufio.NewWriter(dst)

	// 1. Header.
	if _, err := bw.Write(kind[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, [2]uint32{dims.W, dims.H}); err != nil {
		return err
	}
	// 2. Matrix and terminator.
	if err := body(bw); err != nil {
		return err
	}
	if err := bw.WriteByte(0); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if zw != nil {
		return zw.Close()
	}

	return nil
}

// ReadLabels reads an SDAT snapshot.
func ReadLabels(r io.Reader) (raster.Dimensions, []uint32, error) {
	var labels []uint32
	dims, err := read(r, Labels, func(br io.Reader, d raster.Dimensions) error {
		n := d.Area()
		labels = make([]uint32, 0, min(n, readChunk))
		buf := make([]uint32, min(n, readChunk))
		for len(labels) < n {
			part := buf[:min(n-len(labels), readChunk)]
			if err := binary.Read(br, binary.LittleEndian, part); err != nil {
				return err
			}
			labels = append(labels, part...)
		}
		return nil
	})
	if err != nil {
		return raster.Dimensions{}, nil, err
	}

	return dims, labels, nil
}

// ReadLabelsInto reads an SDAT snapshot of exactly dims into dst.
func ReadLabelsInto(r io.Reader, dst []uint32, dims raster.Dimensions) error {
	if len(dst) != dims.Area() {
		return fmt.Errorf("%w: buffer holds %d labels, want %dx%d", ErrDimensionMismatch, len(dst), dims.W, dims.H)
	}
	_, err := read(r, Labels, func(br io.Reader, d raster.Dimensions) error {
		if d != dims {
			return fmt.Errorf("%w: snapshot %dx%d, want %dx%d", ErrDimensionMismatch, d.W, d.H, dims.W, dims.H)
		}
		return binary.Read(br, binary.LittleEndian, dst)
	})

	return err
}

// ReadProvinceIDs reads a PDAT snapshot.
func ReadProvinceIDs(r io.Reader) (raster.Dimensions, []province.ID, error) {
	var ids []province.ID
	dims, err := read(r, ProvinceIDs, func(br io.Reader, d raster.Dimensions) error {
		n := d.Area()
		ids = make([]province.ID, 0, min(n, readChunk))
		for len(ids) < n {
			var id province.ID
			if _, err := io.ReadFull(br, id[:]); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return raster.Dimensions{}, nil, err
	}

	return dims, ids, nil
}

func read(r io.Reader, kind Kind, body func(io.Reader, raster.Dimensions) error) (raster.Dimensions, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(zstdMagic)); err == nil && bytes.Equal(head, zstdMagic) {
		zr, err := zstd.NewReader(br)
		if err != nil {
			return raster.Dimensions{}, fmt.Errorf("snapshot: zstd reader: %w", err)
		}
		defer zr.Close()
		br = bufio.NewReader(zr)
	}

	// 1. Header.
	var magic Kind
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return raster.Dimensions{}, truncated(err)
	}
	if magic != kind {
		return raster.Dimensions{}, fmt.Errorf("%w: %q, want %q", ErrBadMagic, magic[:], kind[:])
	}
	var wh [2]uint32
	if err := binary.Read(br, binary.LittleEndian, &wh); err != nil {
		return raster.Dimensions{}, truncated(err)
	}
	dims := raster.Dimensions{W: wh[0], H: wh[1]}
	if uint64(dims.W)*uint64(dims.H) > MaxPixels {
		return raster.Dimensions{}, fmt.Errorf("%w: %dx%d", ErrTooLarge, dims.W, dims.H)
	}

	// 2. Matrix.
	if err := body(br, dims); err != nil {
		return raster.Dimensions{}, truncated(err)
	}

	// 3. Terminator.
	end, err := br.ReadByte()
	if err != nil || end != 0 {
		return raster.Dimensions{}, ErrMissingTerminator
	}

	return dims, nil
}

// truncated maps short reads to ErrTruncated and passes other errors through.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	return err
}
