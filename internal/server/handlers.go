package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/philipparndt/gomesh/internal/cache"
	"github.com/philipparndt/gomesh/pkg/analysis"
	"github.com/philipparndt/gomesh/pkg/meshio"
	"github.com/philipparndt/gomesh/pkg/preview"
	"github.com/philipparndt/gomesh/pkg/stl"
	"github.com/philipparndt/gomesh/version"
	"github.com/rs/zerolog/hlog"
)

const (
	// multipartMemory is the part of a form kept in memory before spilling to disk
	multipartMemory = 8 << 20
	maxPreviewSize  = 1024
)

// Dimensions are the bounding box extents
type Dimensions struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// MeshReport is the response to an upload.
type MeshReport struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	Format      string     `json:"format"`
	Triangles   int        `json:"triangles"`
	Dimensions  Dimensions `json:"dimensions"`
	SurfaceArea float64    `json:"surfaceArea"`
	Volume      float64    `json:"volume"`
	Closed      bool       `json:"closed"`
	Converted   bool       `json:"converted"`
	DownloadURL string     `json:"downloadUrl,omitempty"`
	PreviewURL  string     `json:"previewUrl"`
	Cached      bool       `json:"cached"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.GetVersion(),
	})
}

// upload handles POST /api/v1/meshes.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := hlog.FromRequest(r)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required", err.Error())
		return
	}
	defer file.Close()

	format := meshio.ParseFormat(r.FormValue("format"))
	if format == "" {
		format = meshio.FormatFromFilename(header.Filename)
	}
	if !s.formats[format] {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported format",
			(&meshio.UnsupportedFormatError{Tag: string(format)}).Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload", err.Error())
		return
	}

	reportKey := cache.Key("report", cache.ContentKey(string(format), data))
	if cached, err := s.cache.Get(ctx, reportKey); err == nil {
		var report MeshReport
		if err := json.Unmarshal(cached, &report); err == nil {
			report.Filename = header.Filename
			report.Cached = true
			logger.Debug().Str("id", report.ID).Msg("Serving cached report")
			writeJSON(w, http.StatusOK, report)
			return
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn().Err(err).Msg("Cache lookup failed")
	}

	result, err := s.pipeline.Process(data, format)
	if err != nil {
		status, msg := statusForError(err)
		logger.Info().Err(err).Str("format", format.String()).Msg("Rejected upload")
		writeError(w, status, msg, err.Error())
		return
	}

	stats := analysis.Analyze(result.Mesh)
	report := MeshReport{
		ID:        uuid.NewString(),
		Filename:  header.Filename,
		Format:    format.String(),
		Triangles: stats.TriangleCount,
		Dimensions: Dimensions{
			X: stats.Dimensions.X,
			Y: stats.Dimensions.Y,
			Z: stats.Dimensions.Z,
		},
		SurfaceArea: stats.SurfaceArea,
		Volume:      stats.Volume,
		Closed:      stats.Topology.Closed(),
		Converted:   result.Converted(),
	}

	// STL uploads are stored as received so previews work for every id
	canonical := data
	if result.Converted() {
		canonical = result.Canonical
		report.DownloadURL = fmt.Sprintf("/api/v1/meshes/%s/stl", report.ID)
	}
	if err := s.cache.Set(ctx, cache.Key("stl", report.ID), canonical, s.cacheTTL); errors.Is(err, cache.ErrValueTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "converted mesh too large to store", err.Error())
		return
	} else if err != nil {
		logger.Error().Err(err).Msg("Failed to store canonical STL")
		writeError(w, http.StatusInternalServerError, "failed to store conversion", err.Error())
		return
	}
	report.PreviewURL = fmt.Sprintf("/api/v1/meshes/%s/preview.png", report.ID)

	if encoded, err := json.Marshal(report); err == nil {
		if err := s.cache.Set(ctx, reportKey, encoded, s.cacheTTL); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache report")
		}
	}

	logger.Info().
		Str("id", report.ID).
		Str("format", report.Format).
		Int("triangles", report.Triangles).
		Bool("converted", report.Converted).
		Msg("Processed upload")

	writeJSON(w, http.StatusOK, report)
}

// download handles GET /api/v1/meshes/{id}/stl.
func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	id, data, ok := s.loadStored(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/sla")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".stl"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// preview handles GET /api/v1/meshes/{id}/preview.png. Optional query
// parameters: size (square side in pixels), azimuth and elevation in degrees.
func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	opts, err := previewOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid preview parameters", err.Error())
		return
	}

	_, data, ok := s.loadStored(w, r)
	if !ok {
		return
	}

	m, err := stl.Parse(data)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Stored mesh is unreadable")
		writeError(w, http.StatusInternalServerError, "failed to load conversion", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := preview.WritePNG(&buf, m, opts); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render preview", err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// loadStored fetches the STL stored for the {id} URL parameter. It writes
// the error response itself and reports false when there is nothing to serve.
func (s *Server) loadStored(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "conversion not found", "")
		return "", nil, false
	}

	data, err := s.cache.Get(r.Context(), cache.Key("stl", id.String()))
	if errors.Is(err, cache.ErrCacheMiss) {
		writeError(w, http.StatusNotFound, "conversion not found", "")
		return "", nil, false
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Cache lookup failed")
		writeError(w, http.StatusInternalServerError, "failed to load conversion", err.Error())
		return "", nil, false
	}
	return id.String(), data, true
}

func previewOptions(q url.Values) (preview.Options, error) {
	opts := preview.DefaultOptions()

	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 16 || size > maxPreviewSize {
			return opts, fmt.Errorf("size must be between 16 and %d", maxPreviewSize)
		}
		opts.Width, opts.Height = size, size
	}
	for name, dst := range map[string]*float64{"azimuth": &opts.Azimuth, "elevation": &opts.Elevation} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return opts, fmt.Errorf("%s must be a number of degrees", name)
		}
		*dst = f
	}
	return opts, nil
}

// statusForError maps pipeline errors onto HTTP status codes.
func statusForError(err error) (int, string) {
	var (
		unsupported *meshio.UnsupportedFormatError
		format      *meshio.FormatError
		truncated   *meshio.TruncatedInputError
	)
	switch {
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType, "unsupported format"
	case errors.As(err, &truncated):
		return http.StatusUnprocessableEntity, "truncated input"
	case errors.As(err, &format):
		return http.StatusUnprocessableEntity, "malformed input"
	}
	return http.StatusInternalServerError, "conversion failed"
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, ErrorResponse{Error: message, Detail: detail})
}
