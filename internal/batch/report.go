package batch

import (
	"time"

	"github.com/JonMunkholm/pdftables/internal/core"
	"github.com/JonMunkholm/pdftables/internal/normalize"
	"github.com/google/uuid"
)

// FileResult is the outcome of converting one file.
type FileResult struct {
	File     string          `json:"file"`
	Output   string          `json:"output,omitempty"`
	Tables   int             `json:"tables"`
	Stats    normalize.Stats `json:"stats"`
	Duration time.Duration   `json:"duration"`

	// Err is the technical error; Code and Message are its user-facing form.
	Err     error  `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the file was converted.
func (f *FileResult) OK() bool {
	return f.Err == nil
}

func (f *FileResult) setErr(err error) {
	msg := core.MapError(err)
	f.Err = err
	f.Code = msg.Code
	f.Message = msg.Message
}

// Report summarizes a batch run.
type Report struct {
	RunID     uuid.UUID     `json:"run_id"`
	InputDir  string        `json:"input_dir"`
	OutputDir string        `json:"output_dir"`
	Format    string        `json:"format"`
	Layout    string        `json:"layout"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	// Files holds one result per input file, in file name order.
	Files []FileResult `json:"files"`
}

// Failed returns the number of files that could not be converted.
func (r *Report) Failed() int {
	n := 0
	for i := range r.Files {
		if !r.Files[i].OK() {
			n++
		}
	}
	return n
}

// Succeeded returns the number of converted files.
func (r *Report) Succeeded() int {
	return len(r.Files) - r.Failed()
}

// Tables returns the number of tables written across all files.
func (r *Report) Tables() int {
	n := 0
	for i := range r.Files {
		if r.Files[i].OK() {
			n += r.Files[i].Tables
		}
	}
	return n
}

// Stats merges the normalization counters of all converted files.
func (r *Report) Stats() normalize.Stats {
	var s normalize.Stats
	for i := range r.Files {
		if r.Files[i].OK() {
			s.Merge(r.Files[i].Stats)
		}
	}
	return s
}
