package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/JonMunkholm/mobcsv/internal/core"
	"github.com/JonMunkholm/mobcsv/internal/csv"
	"github.com/JonMunkholm/mobcsv/internal/history"
	"github.com/JonMunkholm/mobcsv/internal/logging"
	"github.com/JonMunkholm/mobcsv/internal/web/templates"
)

// Response headers carrying the run summary.
const (
	HeaderRunID    = "X-Mobcsv-Run-Id"
	HeaderRead     = "X-Mobcsv-Read"
	HeaderAccepted = "X-Mobcsv-Accepted"
	HeaderRejected = "X-Mobcsv-Rejected"
)

// multipartMemory is how much of a multipart upload is held in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

const recordTimeout = 5 * time.Second

var errNoFile = errors.New(`no file provided in form field "file"`)

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := templates.IndexPage{
		Rules:         core.RuleNames,
		DefaultRule:   s.cfg.Pipeline.Rule,
		MaxUploadSize: s.cfg.Server.MaxUploadSize,
	}
	templ.Handler(templates.Index(page)).ServeHTTP(w, r)
}

type healthResponse struct {
	Status  string        `json:"status"`
	Runs    LimiterStatus `json:"runs"`
	History bool          `json:"history"`
}

// handleHealth reports liveness and run slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:  "ok",
		Runs:    s.limiter.Status(),
		History: s.runs != nil,
	})
}

// upload is the CSV body of a normalize request.
type upload struct {
	body io.ReadCloser
	name string
	rule string
}

// readUpload accepts either a multipart form with a "file" field or a raw
// CSV body. The rule comes from the query string, then the form.
func readUpload(r *http.Request) (upload, error) {
	rule := r.URL.Query().Get("rule")

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return upload{body: r.Body, name: "upload.csv", rule: rule}, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return upload{}, fmt.Errorf("no file provided: invalid upload form: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return upload{}, errNoFile
	}
	if rule == "" {
		rule = r.FormValue("rule")
	}
	return upload{body: file, name: header.Filename, rule: rule}, nil
}

// handleNormalize runs the pipeline over an uploaded CSV and returns the
// accepted records as CSV.
//
// The output is buffered so a decode error late in the file can still be
// reported with an error status. Memory is bounded by MaxUploadSize.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	release, err := s.limiter.Acquire(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer release()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadSize)

	up, err := readUpload(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer up.body.Close()

	if up.rule == "" {
		up.rule = s.cfg.Pipeline.Rule
	}
	rule, err := core.RuleByName(up.rule)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	runID := uuid.New()
	ctx := logging.WithRunID(r.Context(), runID.String())
	started := time.Now()

	var out bytes.Buffer
	res, err := core.NewPipeline(rule).Run(ctx, csv.NewDecoder(up.body), csv.NewEncoder(&out))
	s.recordRun(ctx, history.NewRun(runID, "http", up.name, "", started, res, err))
	if err != nil {
		s.respondError(w, r.WithContext(ctx), err)
		return
	}

	logging.FromContext(ctx).Info("upload normalized",
		"file", up.name,
		"rule", res.Rule,
		"read", res.Read,
		"accepted", res.Accepted,
		"rejected", res.Rejected,
		"bytes", res.BytesRead,
	)

	h := w.Header()
	h.Set("Content-Type", "text/csv; charset=utf-8")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cleanedName(up.name)))
	h.Set(HeaderRunID, runID.String())
	h.Set(HeaderRead, strconv.Itoa(res.Read))
	h.Set(HeaderAccepted, strconv.Itoa(res.Accepted))
	h.Set(HeaderRejected, strconv.Itoa(res.Rejected))
	w.WriteHeader(http.StatusOK)
	w.Write(out.Bytes())
}

// recordRun stores run in history if enabled. Failures are logged only.
func (s *Server) recordRun(ctx context.Context, run history.Run) {
	if s.runs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := s.runs.Record(ctx, run); err != nil {
		logging.FromContext(ctx).Warn("failed to record run", "error", err)
	}
}

// runResponse is the JSON form of a history.Run.
type runResponse struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Input      string    `json:"input"`
	Output     string    `json:"output,omitempty"`
	Rule       string    `json:"rule"`
	Read       int       `json:"read"`
	Accepted   int       `json:"accepted"`
	Rejected   int       `json:"rejected"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// handleRuns lists recent runs from history.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, r, http.StatusNotFound, ErrorResponse{
			Error:   "run history is disabled",
			Message: "Run history is disabled",
			Action:  "Set DATABASE_URL to record runs",
		})
		return
	}

	runs, err := s.runs.Recent(r.Context(), parseIntParam(r, "limit", 20, 100))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, runResponse{
			ID:         run.ID.String(),
			Source:     run.Source,
			Input:      run.Input,
			Output:     run.Output,
			Rule:       run.Rule,
			Read:       run.Read,
			Accepted:   run.Accepted,
			Rejected:   run.Rejected,
			StartedAt:  run.StartedAt,
			DurationMS: run.Duration.Milliseconds(),
			Error:      run.Error,
		})
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// parseIntParam parses a positive integer query parameter, falling back to
// defaultVal and capping at maxVal.
func parseIntParam(r *http.Request, name string, defaultVal, maxVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return min(i, maxVal)
}

// cleanedName derives the download name, e.g. "contacts.csv" becomes
// "contacts-clean.csv".
func cleanedName(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "upload"
	}
	return base + "-clean.csv"
}
