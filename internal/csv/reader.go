package csv

import (
	encsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/mobcsv/internal/core"
)

// Decoder streams core.Records out of a CSV with a ph,name,count header.
// It implements core.RecordReader and core.ByteCounter.
type Decoder struct {
	r       *encsv.Reader
	counter *CountingReader
	idx     HeaderIndex
	header  []string
	err     error
}

// NewDecoder wraps r. The header is read on the first call to Read or Header.
func NewDecoder(r io.Reader) *Decoder {
	wrapped, counter := WrapInput(r)
	cr := encsv.NewReader(wrapped)
	cr.ReuseRecord = true
	return &Decoder{r: cr, counter: counter}
}

// Header returns the raw header row, reading it if necessary.
func (d *Decoder) Header() ([]string, error) {
	if err := d.readHeader(); err != nil {
		return nil, err
	}
	return d.header, nil
}

func (d *Decoder) readHeader() error {
	if d.idx != nil || d.err != nil {
		return d.err
	}

	row, err := d.r.Read()
	if err == io.EOF {
		d.err = &core.DecodeError{Line: 1, Err: core.ErrMissingHeader}
		return d.err
	}
	if err != nil {
		d.err = wrapParseError(err)
		return d.err
	}

	d.header = append([]string(nil), row...)
	idx, err := ValidateHeaders(d.header)
	if err != nil {
		d.err = &core.DecodeError{Line: 1, Err: err}
		return d.err
	}
	d.idx = idx
	return nil
}

// Read returns the next record and its input line. It returns io.EOF after
// the last row. Any other error is a *core.DecodeError and is sticky.
func (d *Decoder) Read() (core.Record, int, error) {
	if err := d.readHeader(); err != nil {
		return core.Record{}, 0, err
	}

	row, err := d.r.Read()
	if err == io.EOF {
		return core.Record{}, 0, io.EOF
	}
	if err != nil {
		d.err = wrapParseError(err)
		return core.Record{}, 0, d.err
	}

	line, _ := d.r.FieldPos(0)
	rec, err := d.decode(row)
	if err != nil {
		d.err = &core.DecodeError{Line: line, Err: err}
		return core.Record{}, line, d.err
	}
	return rec, line, nil
}

func (d *Decoder) decode(row []string) (core.Record, error) {
	count := strings.TrimSpace(row[d.idx[core.ColumnCount]])
	n, err := strconv.ParseUint(count, 10, 16)
	if err != nil {
		return core.Record{}, fmt.Errorf("%w %q: want 0-65535", core.ErrInvalidCount, count)
	}
	return core.Record{
		Phone: row[d.idx[core.ColumnPhone]],
		Name:  row[d.idx[core.ColumnName]],
		Count: uint16(n),
	}, nil
}

// BytesRead returns the raw input bytes consumed so far.
func (d *Decoder) BytesRead() int64 {
	return d.counter.BytesRead()
}

// wrapParseError attaches the line number from an encoding/csv error.
func wrapParseError(err error) error {
	var pe *encsv.ParseError
	if errors.As(err, &pe) {
		return &core.DecodeError{Line: pe.Line, Err: pe.Err}
	}
	return &core.IOError{Op: "read", Err: err}
}
