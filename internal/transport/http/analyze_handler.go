package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"macrocycle/internal/analysis"
	apperrors "macrocycle/internal/errors"
	"macrocycle/internal/report"
	"macrocycle/internal/table"
)

// Form field names of the upload endpoints.
const (
	FieldQuarterly   = "quarterly"
	FieldAnnual      = "annual"
	FieldBaseQuarter = "base_quarter"
	FieldSheet       = "sheet"
)

// AnalysisService runs the analyses over uploaded tables.
type AnalysisService interface {
	RunAll(ctx context.Context, in analysis.Inputs, opts analysis.Options) *analysis.Results
}

// AnalyzeRequest holds the non-file form fields.
type AnalyzeRequest struct {
	BaseQuarter string `validate:"omitempty,max=32"`
	Sheet       string `validate:"omitempty,max=31"`
}

// AnalyzeHandler handles analysis uploads
type AnalyzeHandler struct {
	service   AnalysisService
	opts      analysis.Options
	maxUpload int64
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewAnalyzeHandler creates an analyze handler. opts supplies everything the
// request does not override.
func NewAnalyzeHandler(service AnalysisService, opts analysis.Options, maxUpload int64, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		service:   service,
		opts:      opts,
		maxUpload: maxUpload,
		validate:  validator.New(),
		logger:    logger.With(slog.String("handler", "analyze")),
	}
}

// Routes sets up the analysis routes
func (h *AnalyzeHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/analyze", h.Analyze)
	r.Post("/quarters", h.Quarters)
	return r
}

// Analyze handles POST /api/v1/analyze. It answers 200 with the report when
// at least one task succeeded, listing failed tasks in the body, and the
// business-cycle error otherwise.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, quarterly, apiErr := h.parse(r)
	if apiErr != nil {
		h.fail(w, r, apiErr)
		return
	}
	annual, apiErr := h.readTable(r, FieldAnnual, req.Sheet, false)
	if apiErr != nil {
		h.fail(w, r, apiErr)
		return
	}

	opts := h.opts
	if req.BaseQuarter != "" {
		opts.BaseQuarter = req.BaseQuarter
	}

	res := h.service.RunAll(ctx, analysis.Inputs{Quarterly: quarterly, Annual: annual}, opts)
	if res.AllFailed() {
		err := res.Errors[res.Attempted[0]]
		apiErr := apperrors.ToAPIError(err)
		failures := make(map[string]string, len(res.Errors))
		for task, e := range res.Errors {
			failures[task] = e.Error()
		}
		h.fail(w, r, apperrors.NewWithDetails(apiErr.StatusCode, apiErr.ErrorCode, apiErr.Message,
			map[string]any{"run_id": res.RunID, "failures": failures}))
		return
	}

	h.logger.InfoContext(ctx, "analysis served",
		slog.String("run_id", res.RunID),
		slog.Int("failed_tasks", len(res.Errors)))
	render.JSON(w, r, report.FromResults(res))
}

// Quarters handles POST /api/v1/quarters, describing the uploaded table's time axis.
func (h *AnalyzeHandler) Quarters(w http.ResponseWriter, r *http.Request) {
	_, quarterly, apiErr := h.parse(r)
	if apiErr != nil {
		h.fail(w, r, apiErr)
		return
	}

	ax, err := analysis.DescribeAxis(quarterly, h.opts.Patterns)
	if err != nil {
		h.fail(w, r, apperrors.ToAPIError(err))
		return
	}
	render.JSON(w, r, ax)
}

// parse reads the multipart form, validates the fields and loads the
// required quarterly table.
func (h *AnalyzeHandler) parse(r *http.Request) (AnalyzeRequest, *table.Table, *apperrors.APIError) {
	var req AnalyzeRequest
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, nil, apperrors.ErrPayloadTooLarge
		}
		return req, nil, apperrors.NewWithDetails(http.StatusBadRequest, apperrors.ErrInvalidRequest.ErrorCode,
			"expected a multipart/form-data upload", err.Error())
	}

	req.BaseQuarter = r.FormValue(FieldBaseQuarter)
	req.Sheet = r.FormValue(FieldSheet)
	if err := h.validate.Struct(req); err != nil {
		return req, nil, apperrors.ToAPIError(apperrors.NewValidationError("invalid form field", err))
	}

	quarterly, apiErr := h.readTable(r, FieldQuarterly, req.Sheet, true)
	return req, quarterly, apiErr
}

// readTable loads one uploaded table. A missing optional file yields nil.
func (h *AnalyzeHandler) readTable(r *http.Request, field, sheet string, required bool) (*table.Table, *apperrors.APIError) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		if !required {
			return nil, nil
		}
		return nil, apperrors.NewWithDetails(http.StatusBadRequest, apperrors.ErrMissingParameter.ErrorCode,
			fmt.Sprintf("missing %q file field", field), map[string]string{"field": field})
	}
	if err != nil {
		return nil, apperrors.NewWithDetails(http.StatusBadRequest, apperrors.ErrInvalidRequest.ErrorCode,
			fmt.Sprintf("unreadable %q upload", field), err.Error())
	}
	defer file.Close()

	t, err := table.Read(header.Filename, file, sheet)
	if err != nil {
		return nil, apperrors.NewWithDetails(http.StatusUnprocessableEntity, "DATA_FORMAT",
			err.Error(), map[string]string{"field": field})
	}
	return t, nil
}

func (h *AnalyzeHandler) fail(w http.ResponseWriter, r *http.Request, apiErr *apperrors.APIError) {
	level := slog.LevelWarn
	if apiErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "analysis request failed",
		slog.Int("status", apiErr.StatusCode),
		slog.String("code", apiErr.ErrorCode),
		slog.String("error", apiErr.Message))
	apperrors.WriteError(w, apiErr)
}
