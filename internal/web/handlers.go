package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/pdftables/internal/assemble"
	"github.com/JonMunkholm/pdftables/internal/core"
	"github.com/JonMunkholm/pdftables/internal/extract"
	"github.com/JonMunkholm/pdftables/internal/normalize"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody caps request bodies of the normalize endpoints.
const maxJSONBody = 10 << 20

// multipartMemory is the part of an upload kept in memory before spilling
// to a temp file.
const multipartMemory = 8 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----------------------------------------------------------------------------
// Normalization
// ----------------------------------------------------------------------------

// NormalizeRequest carries a grid of raw cells. JSON null is an absent cell.
type NormalizeRequest struct {
	Rows [][]*string `json:"rows"`
}

// NormalizeResponse is the normalized grid with per-format counts.
type NormalizeResponse struct {
	Rows     [][]string      `json:"rows"`
	Stats    normalize.Stats `json:"stats"`
	ByFormat map[string]int  `json:"by_format"`
}

// ValueRequest carries a single raw cell.
type ValueRequest struct {
	Value *string `json:"value"`
}

// ValueResponse is the canonical form of one cell and its classification.
type ValueResponse struct {
	Value  string `json:"value"`
	Format string `json:"format"`
}

func (s *Server) handleNormalizeRows(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	grid := make([][]normalize.Cell, len(req.Rows))
	for i, row := range req.Rows {
		grid[i] = make([]normalize.Cell, len(row))
		for j, v := range row {
			grid[i][j] = toCell(v)
		}
	}

	var stats normalize.Stats
	rows := normalize.Rows(grid, &stats)
	writeJSON(w, http.StatusOK, NormalizeResponse{
		Rows:     rows,
		Stats:    stats,
		ByFormat: stats.ByFormat(),
	})
}

func (s *Server) handleNormalizeValue(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	res := normalize.Normalize(toCell(req.Value))
	writeJSON(w, http.StatusOK, ValueResponse{
		Value:  res.Value,
		Format: res.Format.String(),
	})
}

func toCell(v *string) normalize.Cell {
	if v == nil {
		return normalize.Absent()
	}
	return normalize.Text(*v)
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return fmt.Errorf("%w: %w", core.ErrFileTooLarge, err)
		}
		return fmt.Errorf("%w: %w", core.ErrInvalidBody, err)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Conversion
// ----------------------------------------------------------------------------

// handleConvert converts an uploaded document and returns the spreadsheet.
//
// Form field "file" holds the document. Query parameters "format" (xlsx, csv)
// and "layout" (combined, per-table) select the output.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	format, err := assemble.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		err = fmt.Errorf("%w: %w", core.ErrInvalidOption, err)
		respondError(w, r, err, statusFor(err))
		return
	}
	layout, err := assemble.ParseLayout(r.URL.Query().Get("layout"))
	if err != nil {
		err = fmt.Errorf("%w: %w", core.ErrInvalidOption, err)
		respondError(w, r, err, statusFor(err))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Convert.MaxFileSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) || r.ContentLength > s.cfg.Convert.MaxFileSize {
			err = fmt.Errorf("%w: %w", core.ErrFileTooLarge, err)
		} else {
			err = fmt.Errorf("%w: %w", core.ErrInvalidBody, err)
		}
		respondError(w, r, err, statusFor(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		err = fmt.Errorf("%w: %w", core.ErrNoFile, err)
		respondError(w, r, err, statusFor(err))
		return
	}
	defer file.Close()

	if !s.registry.Supported(header.Filename) {
		err := fmt.Errorf("%s: %w", header.Filename, extract.ErrUnsupported)
		respondError(w, r, err, statusFor(err))
		return
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	defer s.limiter.Release()

	path, cleanup, err := spool(file, filepath.Ext(header.Filename))
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	defer cleanup()

	conv, err := core.ConvertFile(ctx, s.registry, path)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	// Render fully before writing headers so a failure still gets a JSON error.
	var buf bytes.Buffer
	if err := conv.Write(&buf, format, layout); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	name := strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename)) + format.Ext()
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Tables", strconv.Itoa(len(conv.Tables)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleConvertStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.limiter.Status())
}

// spool copies an upload to a temp file keeping ext, since extractors are
// chosen by extension and read from disk.
func spool(src io.Reader, ext string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "pdftables-*"+strings.ToLower(ext))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("spool upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("spool upload: %w", err)
	}
	return tmp.Name(), cleanup, nil
}

// ----------------------------------------------------------------------------
// Run history
// ----------------------------------------------------------------------------

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		http.NotFound(w, r)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			err := fmt.Errorf("%w: limit %q", core.ErrInvalidOption, v)
			respondError(w, r, err, statusFor(err))
			return
		}
		limit = n
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		http.NotFound(w, r)
		return
	}

	run, err := s.runs.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, run)
}
