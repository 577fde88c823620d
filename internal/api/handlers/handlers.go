package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dvloznov/pharmacy-sales/internal/api/middleware"
	"github.com/dvloznov/pharmacy-sales/internal/domain"
	"github.com/dvloznov/pharmacy-sales/internal/export"
	"github.com/dvloznov/pharmacy-sales/internal/gcs"
	"github.com/dvloznov/pharmacy-sales/internal/logger"
	"github.com/dvloznov/pharmacy-sales/internal/pipeline"
	"github.com/dvloznov/pharmacy-sales/internal/runs"
)

// multipartMemory is the part of a multipart upload kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var (
		malformed *domain.MalformedExtractError
		badTime   *domain.InvalidTimestampError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &malformed), errors.As(err, &badTime):
		return http.StatusUnprocessableEntity
	case errors.As(err, &tooLarge), errors.Is(err, gcs.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, runs.ErrNotFound), errors.Is(err, pipeline.ErrDashboardExpired):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrNoFetcher):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure logs server-side failures through the request logger and
// writes the error response.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg(msg)
		middleware.WriteError(w, status, msg)
		return
	}
	middleware.WriteError(w, status, err.Error())
}

// DashboardsHandler handles dashboard creation endpoints.
type DashboardsHandler struct {
	svc       pipeline.Summarizer
	maxUpload int64
}

// NewDashboardsHandler creates a new dashboards handler.
func NewDashboardsHandler(svc pipeline.Summarizer, maxUpload int64) *DashboardsHandler {
	return &DashboardsHandler{
		svc:       svc,
		maxUpload: maxUpload,
	}
}

// Create handles POST /api/dashboards
// The export is either the multipart field "file" or the raw request body.
func (h *DashboardsHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	data, source, err := readUpload(r)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		middleware.WriteError(w, status, err.Error())
		return
	}
	if len(data) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Export file is empty")
		return
	}

	dash, err := h.svc.Summarize(r.Context(), source, data)
	if err != nil {
		writeFailure(w, r, err, "Failed to build dashboard")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dash)
}

func readUpload(r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, "", err
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload"
		}
		return data, filepath.Base(name), nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", errors.New("file field is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, filepath.Base(header.Filename), nil
}

// CreateFromGCS handles POST /api/dashboards/gcs
func (h *DashboardsHandler) CreateFromGCS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GCSURI string `json:"gcs_uri"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, _, err := gcs.ParseURI(req.GCSURI); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	dash, err := h.svc.SummarizeURI(r.Context(), req.GCSURI)
	if err != nil {
		writeFailure(w, r, err, "Failed to build dashboard")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dash)
}

// RunsHandler handles run-related endpoints.
type RunsHandler struct {
	svc pipeline.Summarizer
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(svc pipeline.Summarizer) *RunsHandler {
	return &RunsHandler{svc: svc}
}

// ListRuns handles GET /api/runs
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := runs.Filter{
		FileHash: query.Get("file_hash"),
		Status:   runs.Status(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	list, err := h.svc.Runs(r.Context(), filter)
	if err != nil {
		writeFailure(w, r, err, "Failed to list runs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  list,
		"count": len(list),
	})
}

// GetRun handles GET /api/runs/{id}
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "Failed to get run")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, run)
}

// GetRunDashboard handles GET /api/runs/{id}/dashboard
// ?format=csv returns the time-bucket table, ?format=xlsx the workbook.
func (h *RunsHandler) GetRunDashboard(w http.ResponseWriter, r *http.Request) {
	format := export.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := export.ParseFormat(f)
		if err != nil || parsed == export.FormatText {
			middleware.WriteError(w, http.StatusBadRequest, "format must be json, csv or xlsx")
			return
		}
		format = parsed
	}

	dash, err := h.svc.Dashboard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, "Failed to get dashboard")
		return
	}

	if format == export.FormatJSON {
		middleware.WriteJSON(w, http.StatusOK, dash)
		return
	}

	name := dash.Source
	if gcs.IsURI(name) {
		name = gcs.ExtractFilename(name)
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		base = "ventas"
	}
	switch format {
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	case export.FormatXLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": base + "-dashboard." + string(format),
	}))

	if err := export.Write(w, format, dash); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("run_id", dash.RunID).Msg("Failed to write dashboard export")
	}
}
