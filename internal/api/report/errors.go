package report

import (
	"errors"

	"deep-research/config"
	"deep-research/internal/core/extract"
	reportsvc "deep-research/internal/services/report"
	"deep-research/internal/store"
	"deep-research/pkg/apperror"
	"deep-research/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

type errorMapping struct {
	target     error
	module     config.Module
	httpStatus int
	code       status.ErrorCode
}

// Order matters: the first matching target wins.
var errorMappings = []errorMapping{
	{store.ErrInvalidID, config.ModuleStore, fiber.StatusBadRequest, status.ReportInvalidID},
	{store.ErrNotFound, config.ModuleStore, fiber.StatusNotFound, status.ReportNotFound},
	{extract.ErrExtraction, config.ModuleExtract, fiber.StatusUnprocessableEntity, status.ReportExtractionFailed},
	{reportsvc.ErrEmptyInput, config.ModuleExtract, fiber.StatusUnprocessableEntity, status.ReportEmptyDocument},
	{reportsvc.ErrAllChunksFailed, config.ModuleLLM, fiber.StatusBadGateway, status.ReportModelFailed},
	{reportsvc.ErrRunCancelled, config.ModuleReport, fiber.StatusRequestTimeout, status.ReportCancelled},
	{reportsvc.ErrSaveReport, config.ModuleStore, fiber.StatusInternalServerError, status.ReportStorageFailed},
}

// writeServiceError renders err with the status and code of its sentinel.
func writeServiceError(c fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return apperror.WriteError(m.module, c, m.httpStatus, apperror.Code(m.code), err.Error())
		}
	}
	return apperror.WriteError(config.ModuleReport, c, fiber.StatusInternalServerError,
		apperror.Code(status.ReportInternal), err.Error())
}
