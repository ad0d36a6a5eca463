package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/mobcsv/internal/logging"
)

// ContextCheckInterval is how often (in rows) the pipeline checks for
// cancellation.
var ContextCheckInterval = 100

// RecordReader yields decoded records in input order. Read returns io.EOF
// after the last record. line is the 1-indexed input line of the record.
type RecordReader interface {
	Read() (rec Record, line int, err error)
}

// RecordWriter encodes accepted records.
type RecordWriter interface {
	Write(Record) error
	Flush() error
}

// RejectWriter receives records that failed validation.
type RejectWriter interface {
	WriteRejection(Rejection) error
	Flush() error
}

// ByteCounter is implemented by readers that track input bytes.
type ByteCounter interface {
	BytesRead() int64
}

// Pipeline runs records through a Rule.
type Pipeline struct {
	Rule    Rule
	Rejects RejectWriter // Optional
	Logger  *slog.Logger // Optional; defaults to slog.Default()
}

// NewPipeline creates a pipeline for the given rule.
func NewPipeline(rule Rule) *Pipeline {
	return &Pipeline{Rule: rule}
}

// Run reads every record from src, normalizes and validates it, and writes
// the survivors to dst in input order.
//
// dst (and Rejects, if set) are flushed on every return path. A decode or
// write error stops the run; the partial Result is returned with it.
func (p *Pipeline) Run(ctx context.Context, src RecordReader, dst RecordWriter) (res *Result, err error) {
	start := time.Now()
	logger := p.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	res = &Result{Rule: p.Rule.Name, Regions: make(RegionCounts)}

	defer func() {
		if ferr := dst.Flush(); ferr != nil {
			err = errors.Join(err, &IOError{Op: "flush", Err: ferr})
		}
		if p.Rejects != nil {
			if ferr := p.Rejects.Flush(); ferr != nil {
				err = errors.Join(err, &IOError{Op: "flush rejects", Err: ferr})
			}
		}
		if bc, ok := src.(ByteCounter); ok {
			res.BytesRead = bc.BytesRead()
		}
		res.Duration = time.Since(start)
	}()

	for i := 0; ; i++ {
		if i%ContextCheckInterval == 0 {
			if cerr := ctx.Err(); cerr != nil {
				return res, fmt.Errorf("run cancelled after %d rows: %w", res.Read, cerr)
			}
		}

		rec, line, rerr := src.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return res, rerr
		}
		res.Read++

		out, verr := p.Rule.Apply(rec)
		if verr != nil {
			res.Rejected++
			logger.Debug("record rejected",
				"line", line,
				"raw", rec.Phone,
				"phone", out.Phone,
				"reason", verr.Error(),
			)
			if p.Rejects != nil {
				if werr := p.Rejects.WriteRejection(Rejection{Line: line, Reason: verr.Error(), Record: rec, Normalized: out.Phone}); werr != nil {
					return res, &IOError{Op: "write rejects", Err: werr}
				}
			}
			continue
		}

		logger.Log(ctx, logging.LevelTrace, "record accepted", "line", line, "raw", rec.Phone, "phone", out.Phone)

		if werr := dst.Write(out); werr != nil {
			return res, &IOError{Op: "write", Err: werr}
		}
		res.Accepted++
		res.Regions[RegionOf(out.Phone)]++
	}

	return res, nil
}
