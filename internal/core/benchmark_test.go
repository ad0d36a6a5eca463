package core

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

// ============================================================================
// Normalization Benchmarks
// ============================================================================

var benchPhones = []string{
	"1116613061",
	"+2(0111)6613061",
	"00201116613061",
	"540029129",
	" 0966-540-029-129 ",
	"20111bad",
}

// BenchmarkNormalizePhone runs the full strict cleanup over mixed inputs.
// Runs once per record, so this is the hot path.
func BenchmarkNormalizePhone(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, p := range benchPhones {
			NormalizePhone(p)
		}
	}
}

// BenchmarkStripSpecial_Clean benchmarks the common case of nothing to strip.
func BenchmarkStripSpecial_Clean(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		StripSpecial("201116613061")
	}
}

// ============================================================================
// Validation Benchmarks
// ============================================================================

func BenchmarkRuleApply(b *testing.B) {
	for _, rule := range []Rule{RuleStrict, RuleLegacy} {
		b.Run(rule.Name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				for _, p := range benchPhones {
					rule.Apply(Record{Phone: p, Name: "bench", Count: 1})
				}
			}
		})
	}
}

func BenchmarkRegionOf(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RegionOf("201116613061")
		RegionOf("966540029129")
	}
}

// ============================================================================
// Pipeline Benchmarks
// ============================================================================

// discardWriter drops every record.
type discardWriter struct{}

func (discardWriter) Write(Record) error { return nil }
func (discardWriter) Flush() error       { return nil }

// BenchmarkPipelineRun measures per-record overhead of the driver with no I/O.
func BenchmarkPipelineRun(b *testing.B) {
	recs := make([]Record, 10000)
	for i := range recs {
		recs[i] = Record{Phone: benchPhones[i%len(benchPhones)], Name: "bench", Count: uint16(i)}
	}
	p := NewPipeline(RuleStrict)
	p.Logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Run(context.Background(), &sliceReader{recs: recs}, discardWriter{}); err != nil {
			b.Fatal(err)
		}
	}
}
