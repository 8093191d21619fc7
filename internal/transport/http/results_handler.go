package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/supersonicwisd1/result-processing-system/internal/auth"
	"github.com/supersonicwisd1/result-processing-system/internal/config"
	apierrors "github.com/supersonicwisd1/result-processing-system/internal/errors"
	"github.com/supersonicwisd1/result-processing-system/internal/extract"
	"github.com/supersonicwisd1/result-processing-system/internal/services"
	"github.com/supersonicwisd1/result-processing-system/internal/store"
	"github.com/supersonicwisd1/result-processing-system/pkg/contracts"
	"github.com/supersonicwisd1/result-processing-system/pkg/contracts/domain"
)

// ResultsHandler serves upload, submission and query endpoints.
type ResultsHandler struct {
	service *services.ResultService
	cfg     *config.Config
	logger  *slog.Logger
}

// NewResultsHandler creates a results handler.
func NewResultsHandler(service *services.ResultService, cfg *config.Config, logger *slog.Logger) *ResultsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultsHandler{
		service: service,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "results_handler")),
	}
}

// Upload handles POST /api/v1/results/upload. The multipart field name is
// "file"; the upload is spooled to the configured upload directory before
// extraction so the extractors can work from a path.
func (h *ResultsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.Server.MaxUploadBytes); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrValidation("file", "multipart file field is required")))
		return
	}
	defer file.Close()

	path, err := h.spoolUpload(file, fileHeader.Filename)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "spool upload failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}
	defer os.Remove(path)

	user := auth.UserFromContext(r.Context())
	meta := domain.UploadMeta{
		OriginalFilename: fileHeader.Filename,
		UploadedAt:       time.Now().UTC(),
	}
	if user != nil {
		meta.UploaderID = user.ID
	}

	outcome, err := h.service.ProcessUpload(r.Context(), path, meta)
	var unsupported *extract.ErrUnsupportedFormat
	switch {
	case errors.As(err, &unsupported):
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.UnsupportedFormatError(err)))
		return
	case errors.Is(err, services.ErrNoRecords):
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.NewWithDetails(http.StatusUnprocessableEntity, "NO_USABLE_ROWS",
				"No usable score rows in file", outcome.Problems)))
		return
	case err != nil:
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ExtractionFailedError(err)))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, outcome)
}

// spoolUpload writes the multipart body to a uniquely named file in the
// upload directory, keeping the original extension for format dispatch.
func (h *ResultsHandler) spoolUpload(src io.Reader, original string) (string, error) {
	dir := h.cfg.Storage.UploadDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, uuid.NewString()+filepath.Ext(original))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

type submitRequest struct {
	Header  domain.CourseHeader  `json:"header"`
	Records []domain.ScoreRecord `json:"records"`
}

// Submit handles POST /api/v1/results/submit.
func (h *ResultsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	var uploaderID int64
	if user := auth.UserFromContext(r.Context()); user != nil {
		uploaderID = user.ID
	}

	outcome, err := h.service.SubmitScores(r.Context(), req.Header, req.Records, uploaderID)
	switch {
	case errors.Is(err, services.ErrNoRecords):
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.NewWithDetails(http.StatusUnprocessableEntity, "NO_USABLE_ROWS",
				"No valid records in submission", outcome.Problems)))
		return
	case err != nil:
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, outcome)
}

// ByCourse handles GET /api/v1/results/by-course.
func (h *ResultsHandler) ByCourse(w http.ResponseWriter, r *http.Request) {
	courseCode := r.URL.Query().Get("course_code")
	semester := r.URL.Query().Get("semester_name")
	if courseCode == "" || semester == "" {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("course_code", "course_code and semester_name are required")))
		return
	}

	scores, err := h.service.ResultsByCourse(r.Context(), courseCode, semester)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "query by course failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}
	render.JSON(w, r, map[string]interface{}{"count": len(scores), "results": scores})
}

// ByRegistration handles GET /api/v1/results/by-registration. The response
// is the student's full transcript with per-semester GPA and CGPA.
func (h *ResultsHandler) ByRegistration(w http.ResponseWriter, r *http.Request) {
	regNumber := r.URL.Query().Get("registration_number")
	if regNumber == "" {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("registration_number", "registration_number is required")))
		return
	}

	transcript, err := h.service.Transcript(r.Context(), regNumber)
	if errors.Is(err, services.ErrStudentNotFound) {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.NotFoundError("Student")))
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "transcript failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}
	render.JSON(w, r, transcript)
}

type byDepartmentRequest struct {
	Department   string `json:"department"`
	Level        string `json:"level"`
	SemesterName string `json:"semester_name"`
}

// ByDepartment handles POST /api/v1/results/by-department.
func (h *ResultsHandler) ByDepartment(w http.ResponseWriter, r *http.Request) {
	var req byDepartmentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}
	if req.Department == "" || req.SemesterName == "" {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("department", "department and semester_name are required")))
		return
	}

	scores, err := h.service.ResultsByDepartment(r.Context(), req.Department, req.Level, req.SemesterName)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "query by department failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}
	render.JSON(w, r, map[string]interface{}{"count": len(scores), "results": scores})
}

type updateRequest struct {
	ScoreID              int64   `json:"score_id"`
	ContinuousAssessment float64 `json:"continuous_assessment"`
	ExamScore            float64 `json:"exam_score"`
	TotalScore           float64 `json:"total_score"`
	Grade                string  `json:"grade"`
}

// Update handles PUT /api/v1/results/update.
func (h *ResultsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}
	if req.ScoreID == 0 {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrValidation("score_id", "score_id is required")))
		return
	}

	var actorID int64
	if user := auth.UserFromContext(r.Context()); user != nil {
		actorID = user.ID
	}

	err := h.service.UpdateScore(r.Context(), actorID, req.ScoreID,
		req.ContinuousAssessment, req.ExamScore, req.TotalScore, req.Grade)
	if errors.Is(err, store.ErrNotFound) {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.NotFoundError("Score")))
		return
	}
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}
	render.JSON(w, r, map[string]bool{"success": true})
}

// Delete handles DELETE /api/v1/results/{id}.
func (h *ResultsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrValidation("id", "id must be an integer")))
		return
	}

	var actorID int64
	if user := auth.UserFromContext(r.Context()); user != nil {
		actorID = user.ID
	}

	if err := h.service.DeleteScore(r.Context(), actorID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.NotFoundError("Score")))
			return
		}
		h.logger.ErrorContext(r.Context(), "delete score failed", slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}
	render.JSON(w, r, map[string]bool{"success": true})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":  "ok",
		"version": contracts.GetVersionInfo(),
	})
}
