package csv

import (
	encsv "encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/mobcsv/internal/core"
)

// StatusColumn is the leading column of a rejects file.
const StatusColumn = "status"

// Encoder writes core.Records as CSV with a ph,name,count header.
// It implements core.RecordWriter.
type Encoder struct {
	w           *encsv.Writer
	wroteHeader bool
	row         []string
}

// NewEncoder returns an Encoder writing to w. The header is written before
// the first record, or on Flush if no record was written.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: encsv.NewWriter(w), row: make([]string, len(core.Columns))}
}

func (e *Encoder) writeHeader() error {
	if e.wroteHeader {
		return nil
	}
	e.wroteHeader = true
	return e.w.Write(core.Columns)
}

// Write encodes one record.
func (e *Encoder) Write(rec core.Record) error {
	if err := e.writeHeader(); err != nil {
		return err
	}
	e.row[0] = rec.Phone
	e.row[1] = rec.Name
	e.row[2] = strconv.FormatUint(uint64(rec.Count), 10)
	return e.w.Write(e.row)
}

// Flush writes any buffered data to the underlying writer.
func (e *Encoder) Flush() error {
	if err := e.writeHeader(); err != nil {
		return err
	}
	e.w.Flush()
	return e.w.Error()
}

// RejectEncoder writes rejected records with a leading status column:
//
//	status,ph,name,count
//	line 4: phone: non-digit characters in "20111bad",20111bad,test1,0
//
// It implements core.RejectWriter.
type RejectEncoder struct {
	w           *encsv.Writer
	wroteHeader bool
	row         []string
}

// NewRejectEncoder returns a RejectEncoder writing to w.
func NewRejectEncoder(w io.Writer) *RejectEncoder {
	return &RejectEncoder{w: encsv.NewWriter(w), row: make([]string, len(core.Columns)+1)}
}

func (e *RejectEncoder) writeHeader() error {
	if e.wroteHeader {
		return nil
	}
	e.wroteHeader = true
	return e.w.Write(append([]string{StatusColumn}, core.Columns...))
}

// WriteRejection encodes one rejected record.
func (e *RejectEncoder) WriteRejection(rj core.Rejection) error {
	if err := e.writeHeader(); err != nil {
		return err
	}
	e.row[0] = fmt.Sprintf("line %d: %s", rj.Line, rj.Reason)
	e.row[1] = rj.Record.Phone
	e.row[2] = rj.Record.Name
	e.row[3] = strconv.FormatUint(uint64(rj.Record.Count), 10)
	return e.w.Write(e.row)
}

// Flush writes any buffered data to the underlying writer.
func (e *RejectEncoder) Flush() error {
	if err := e.writeHeader(); err != nil {
		return err
	}
	e.w.Flush()
	return e.w.Error()
}
