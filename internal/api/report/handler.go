package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deep-research/config"
	"deep-research/internal/core/extract"
	corereport "deep-research/internal/core/report"
	"deep-research/internal/store"
	"deep-research/pkg/apperror"
	"deep-research/pkg/apperror/status"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ReportService is what the handlers need from the report service.
type ReportService interface {
	Generate(ctx context.Context, path, question string) (store.ReportRecord, error)
	Get(ctx context.Context, id string) (store.ReportRecord, error)
	List(ctx context.Context) ([]store.ReportSummary, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	svc         ReportService
	stager      Stager
	maxFileSize int64
}

func NewHandler(svc ReportService, stager Stager, maxFileSize int64) *Handler {
	return &Handler{svc: svc, stager: stager, maxFileSize: maxFileSize}
}

var validate = validator.New()

type generateRequest struct {
	Question string `validate:"required,min=1,max=1000"`
}

type generateResponse struct {
	ReportID       string                 `json:"report_id"`
	MarkdownReport string                 `json:"markdown_report"`
	ReportMetadata corereport.RunMetadata `json:"report_metadata"`
}

type listResponse struct {
	Reports []store.ReportSummary `json:"reports"`
	Total   int                   `json:"total"`
}

type getResponse struct {
	ReportID  string                 `json:"report_id"`
	Question  string                 `json:"question"`
	Content   string                 `json:"content"`
	Metadata  corereport.RunMetadata `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
}

type deleteResponse struct {
	ReportID string `json:"report_id"`
	Deleted  bool   `json:"deleted"`
}

// GenerateReport accepts a multipart upload (file + question) and runs the whole pipeline.
func (h *Handler) GenerateReport(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	if _, err := c.MultipartForm(); err != nil {
		return apperror.BadRequest(config.ModuleReport, c, status.ReportInvalidRequestBody, "expected a multipart/form-data body")
	}
	req := generateRequest{Question: strings.TrimSpace(c.FormValue("question"))}
	if err := validate.Struct(req); err != nil {
		return apperror.BadRequest(config.ModuleReport, c, status.ReportMissingParams, "question must be 1-1000 characters")
	}

	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.ReportMissingParams, "file is required")
	}
	if fh.Size == 0 {
		return apperror.BadRequest(config.ModuleUpload, c, status.ReportMissingParams, "empty file")
	}
	if !extract.IsSupported(fh.Filename) {
		return apperror.BadRequest(config.ModuleUpload, c, status.ReportUnsupportedFile,
			fmt.Sprintf("unsupported file type, expected one of %s", strings.Join(extract.SupportedExtensions, ", ")))
	}
	if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
		return apperror.WriteError(config.ModuleUpload, c, fiber.StatusRequestEntityTooLarge,
			apperror.Code(status.ReportFileTooLarge), fmt.Sprintf("file exceeds %d bytes", h.maxFileSize))
	}

	path, cleanup, err := h.stager.Stage(c.Context(), fh)
	if err != nil {
		return apperror.WriteError(config.ModuleUpload, c, fiber.StatusInternalServerError,
			apperror.Code(status.ReportUploadFailed), err.Error())
	}
	defer cleanup()

	rec, err := h.svc.Generate(c.Context(), path, req.Question)
	if err != nil {
		return writeServiceError(c, err)
	}

	return apperror.Success(config.ModuleReport, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "Report generated successfully",
		TrackingID: trackingID,
		Data: generateResponse{
			ReportID:       rec.ID,
			MarkdownReport: rec.Document,
			ReportMetadata: rec.Metadata,
		},
	})
}

// DownloadReport sends the stored report as a Markdown attachment.
func (h *Handler) DownloadReport(c fiber.Ctx) error {
	rec, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	c.Attachment(fmt.Sprintf("research_report_%s.md", rec.ID))
	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return c.Send(store.Markdown(rec))
}

func (h *Handler) ListReports(c fiber.Ctx) error {
	items, err := h.svc.List(c.Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return apperror.Success(config.ModuleReport, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "OK",
		TrackingID: c.Get("X-Request-ID"),
		Data:       listResponse{Reports: items, Total: len(items)},
	})
}

func (h *Handler) GetReport(c fiber.Ctx) error {
	rec, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return apperror.Success(config.ModuleReport, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "OK",
		TrackingID: c.Get("X-Request-ID"),
		Data: getResponse{
			ReportID:  rec.ID,
			Question:  rec.Question,
			Content:   rec.Document,
			Metadata:  rec.Metadata,
			CreatedAt: rec.CreatedAt,
		},
	})
}

func (h *Handler) DeleteReport(c fiber.Ctx) error {
	id := c.Params("id")
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return apperror.Success(config.ModuleReport, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "Report deleted",
		TrackingID: c.Get("X-Request-ID"),
		Data:       deleteResponse{ReportID: id, Deleted: true},
	})
}
