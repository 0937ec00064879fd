package province

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/katalvlaran/provmap/raster"
)

// ErrMalformedRecord is returned for lines that do not parse.
var ErrMalformedRecord = errors.New("province: malformed record")

// Field order of a record.
const (
	colID = iota
	colR
	colG
	colB
	colType
	colCoastal
	colTerrain
	colContinent
	colBottomLeftX
	colBottomLeftY
	colTopRightX
	colTopRightY
	colState
	recordFields
)

// FormatRecord renders p as record fields.
func FormatRecord(p *Province) []string {
	rec := make([]string, recordFields)
	rec[colID] = p.ID.String()
	rec[colR] = strconv.Itoa(int(p.UniqueColor.R))
	rec[colG] = strconv.Itoa(int(p.UniqueColor.G))
	rec[colB] = strconv.Itoa(int(p.UniqueColor.B))
	rec[colType] = p.Type.String()
	rec[colCoastal] = strconv.FormatBool(p.Coastal)
	rec[colTerrain] = p.Terrain
	rec[colContinent] = p.Continent
	rec[colBottomLeftX] = strconv.FormatUint(uint64(p.BoundingBox.BottomLeft.X), 10)
	rec[colBottomLeftY] = strconv.FormatUint(uint64(p.BoundingBox.BottomLeft.Y), 10)
	rec[colTopRightX] = strconv.FormatUint(uint64(p.BoundingBox.TopRight.X), 10)
	rec[colTopRightY] = strconv.FormatUint(uint64(p.BoundingBox.TopRight.Y), 10)
	rec[colState] = strconv.FormatUint(uint64(p.State), 10)

	return rec
}

// ParseRecord builds a parentless province from record fields.
func ParseRecord(rec []string) (*Province, error) {
	if len(rec) != recordFields {
		return nil, fmt.Errorf("%w: %d fields, want %d", ErrMalformedRecord, len(rec), recordFields)
	}

	id, err := uuid.Parse(rec[colID])
	if err != nil {
		return nil, fmt.Errorf("%w: id %q: %v", ErrMalformedRecord, rec[colID], err)
	}
	p := New(id)

	var (
		nums [recordFields]uint64
		errs []error
	)
	parse := func(col, size int) {
		v, perr := strconv.ParseUint(rec[col], 10, size)
		if perr != nil {
			errs = append(errs, fmt.Errorf("field %d: %w", col, perr))
		}
		nums[col] = v
	}
	parse(colR, 8)
	parse(colG, 8)
	parse(colB, 8)
	for _, col := range []int{colBottomLeftX, colBottomLeftY, colTopRightX, colTopRightY, colState} {
		parse(col, 32)
	}
	coastal, cerr := strconv.ParseBool(rec[colCoastal])
	if cerr != nil {
		errs = append(errs, fmt.Errorf("field %d: %w", colCoastal, cerr))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, errors.Join(errs...))
	}

	p.UniqueColor = raster.Color{R: uint8(nums[colR]), G: uint8(nums[colG]), B: uint8(nums[colB])}
	p.Type = ParseType(rec[colType])
	p.Coastal = coastal
	p.Terrain = rec[colTerrain]
	p.Continent = rec[colContinent]
	p.BoundingBox = raster.BoundingBox{
		BottomLeft: raster.Point2D{X: uint32(nums[colBottomLeftX]), Y: uint32(nums[colBottomLeftY])},
		TopRight:   raster.Point2D{X: uint32(nums[colTopRightX]), Y: uint32(nums[colTopRightY])},
	}
	p.State = StateID(nums[colState])

	return p, nil
}

func newCSVWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	return cw
}

// WriteRecords writes one line per province.
func WriteRecords(w io.Writer, provinces []*Province) error {
	cw := newCSVWriter(w)
	for _, p := range provinces {
		if err := cw.Write(FormatRecord(p)); err != nil {
			return fmt.Errorf("province: write %s: %w", p.ID, err)
		}
	}
	cw.Flush()

	return cw.Error()
}

// ReadRecords parses every non-empty line of r. Errors name the 1-based line.
func ReadRecords(r io.Reader) ([]*Province, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var out []*Province
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		line, _ := cr.FieldPos(0)
		p, err := ParseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, p)
	}
}
