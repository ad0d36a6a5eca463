package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

// sliceReader is an in-memory RecordReader. Lines start at 2 (after header).
type sliceReader struct {
	recs  []Record
	pos   int
	errAt int // Return failErr instead of the record at this index (if >0)
	fail  error
}

func (r *sliceReader) Read() (Record, int, error) {
	if r.fail != nil && r.pos == r.errAt {
		return Record{}, r.pos + 2, r.fail
	}
	if r.pos >= len(r.recs) {
		return Record{}, 0, io.EOF
	}
	rec := r.recs[r.pos]
	r.pos++
	return rec, r.pos + 1, nil
}

type memWriter struct {
	recs     []Record
	flushes  int
	writeErr error
}

func (w *memWriter) Write(r Record) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.recs = append(w.recs, r)
	return nil
}

func (w *memWriter) Flush() error {
	w.flushes++
	return nil
}

type memRejects struct {
	rejections []Rejection
	flushes    int
}

func (w *memRejects) WriteRejection(r Rejection) error {
	w.rejections = append(w.rejections, r)
	return nil
}

func (w *memRejects) Flush() error {
	w.flushes++
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRecords() []Record {
	return []Record{
		{Phone: "20111bad", Name: "test1", Count: 0},
		{Phone: "+2(0111)6613061", Name: "test2", Count: 1},
		{Phone: "1232131", Name: "test3", Count: 2},
		{Phone: "00201116613061", Name: "test4", Count: 3},
		{Phone: "540029129", Name: "test5", Count: 4},
		{Phone: "1116613061", Name: "test6", Count: 5},
	}
}

func TestPipelineRun(t *testing.T) {
	src := &sliceReader{recs: sampleRecords()}
	dst := &memWriter{}
	rejects := &memRejects{}

	p := &Pipeline{Rule: RuleStrict, Rejects: rejects, Logger: quietLogger()}
	res, err := p.Run(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []Record{
		{Phone: "201116613061", Name: "test2", Count: 1},
		{Phone: "201116613061", Name: "test4", Count: 3},
		{Phone: "966540029129", Name: "test5", Count: 4},
		{Phone: "201116613061", Name: "test6", Count: 5},
	}
	if len(dst.recs) != len(want) {
		t.Fatalf("wrote %d records, want %d: %+v", len(dst.recs), len(want), dst.recs)
	}
	for i := range want {
		if dst.recs[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, dst.recs[i], want[i])
		}
	}

	if res.Read != 6 || res.Accepted != 4 || res.Rejected != 2 {
		t.Errorf("Result = read %d accepted %d rejected %d, want 6/4/2", res.Read, res.Accepted, res.Rejected)
	}
	if res.Accepted != res.Read-res.Rejected {
		t.Errorf("accepted %d != read %d - rejected %d", res.Accepted, res.Read, res.Rejected)
	}
	if res.Regions["EG"] != 3 || res.Regions["SA"] != 1 {
		t.Errorf("Regions = %v, want EG:3 SA:1", res.Regions)
	}
	if res.Rule != RuleStrictName {
		t.Errorf("Rule = %q, want %q", res.Rule, RuleStrictName)
	}

	if len(rejects.rejections) != 2 {
		t.Fatalf("got %d rejections, want 2", len(rejects.rejections))
	}
	first := rejects.rejections[0]
	if first.Line != 2 || first.Record.Phone != "20111bad" || first.Record.Name != "test1" {
		t.Errorf("first rejection = %+v", first)
	}
	second := rejects.rejections[1]
	if second.Line != 4 || second.Record.Phone != "1232131" || second.Normalized != "201232131" {
		t.Errorf("second rejection = %+v", second)
	}

	if dst.flushes != 1 || rejects.flushes != 1 {
		t.Errorf("flushes = %d/%d, want 1/1", dst.flushes, rejects.flushes)
	}
}

func TestPipelineRun_Legacy(t *testing.T) {
	src := &sliceReader{recs: []Record{
		{Phone: "+21116613061", Name: "a"},
		{Phone: "540029129", Name: "b"},
	}}
	dst := &memWriter{}

	p := &Pipeline{Rule: RuleLegacy, Logger: quietLogger()}
	res, err := p.Run(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Accepted != 1 || dst.recs[0].Phone != "21116613061" {
		t.Errorf("legacy accepted %+v", dst.recs)
	}
}

func TestPipelineRun_DecodeErrorIsFatal(t *testing.T) {
	decodeErr := &DecodeError{Line: 4, Err: ErrInvalidCount}
	src := &sliceReader{recs: sampleRecords(), errAt: 2, fail: decodeErr}
	dst := &memWriter{}

	p := &Pipeline{Rule: RuleStrict, Logger: quietLogger()}
	res, err := p.Run(context.Background(), src, dst)
	if !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("Run() error = %v, want ErrInvalidCount", err)
	}
	if LineOf(err) != 4 {
		t.Errorf("LineOf = %d, want 4", LineOf(err))
	}
	if res.Read != 2 {
		t.Errorf("Read = %d, want 2", res.Read)
	}
	if dst.flushes != 1 {
		t.Errorf("output not flushed on error path: flushes = %d", dst.flushes)
	}
}

func TestPipelineRun_WriteError(t *testing.T) {
	src := &sliceReader{recs: sampleRecords()}
	dst := &memWriter{writeErr: errors.New("no space left on device")}

	p := &Pipeline{Rule: RuleStrict, Logger: quietLogger()}
	_, err := p.Run(context.Background(), src, dst)

	var ioe *IOError
	if !errors.As(err, &ioe) || ioe.Op != "write" {
		t.Fatalf("Run() error = %v, want write IOError", err)
	}
	if MapError(err).Code != "IO001" {
		t.Errorf("MapError code = %q, want IO001", MapError(err).Code)
	}
}

func TestPipelineRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &sliceReader{recs: sampleRecords()}
	dst := &memWriter{}

	p := &Pipeline{Rule: RuleStrict, Logger: quietLogger()}
	_, err := p.Run(ctx, src, dst)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(dst.recs) != 0 {
		t.Errorf("wrote %d records after cancel", len(dst.recs))
	}
	if dst.flushes != 1 {
		t.Errorf("flushes = %d, want 1", dst.flushes)
	}
}

func TestPipelineRun_LogsRejections(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	src := &sliceReader{recs: []Record{{Phone: "20111bad", Name: "x"}}}
	p := &Pipeline{Rule: RuleStrict, Logger: logger}
	if _, err := p.Run(context.Background(), src, &memWriter{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "record rejected") || !strings.Contains(out, "20111bad") {
		t.Errorf("log output missing rejection: %s", out)
	}
}

func TestPipelineRun_Empty(t *testing.T) {
	dst := &memWriter{}
	res, err := NewPipeline(RuleStrict).Run(context.Background(), &sliceReader{}, dst)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Read != 0 || res.Accepted != 0 || dst.flushes != 1 {
		t.Errorf("Result = %+v, flushes = %d", res, dst.flushes)
	}
}
