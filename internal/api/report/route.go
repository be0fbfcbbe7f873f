package report

import (
	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes registers report routes on the provided router.
func RegisterRoutes(r fiber.Router, h *Handler) {
	r.Post("/generate_report", h.GenerateReport)
	r.Get("/download_report/:id", h.DownloadReport)
	r.Get("/reports", h.ListReports)
	r.Get("/reports/:id", h.GetReport)
	r.Delete("/reports/:id", h.DeleteReport)
}
