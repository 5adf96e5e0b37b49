package api

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"livescan/internal/validation"
)

// ReportHandler serves aggregate statistics and scan history.
type ReportHandler struct {
	store Store
	now   func() time.Time
}

// NewReportHandler creates a new API report handler.
func NewReportHandler(store Store) *ReportHandler {
	return &ReportHandler{store: store, now: time.Now}
}

// Statistics summarises activity over the last N hours (default 24).
func (h *ReportHandler) Statistics(c fiber.Ctx) error {
	hours, msg := validation.ParseIntRange("hours", c.Query("hours"), validation.DefaultStatsHours, 1, validation.MaxStatsHours)
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	since := h.now().Add(-time.Duration(hours) * time.Hour)
	stats, err := h.store.GetStatistics(c.Context(), since)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute statistics")
	}

	return jsonSuccess(c, stats)
}

// ScanHistory returns a page of scan records, newest first.
func (h *ReportHandler) ScanHistory(c fiber.Ctx) error {
	limit, msg := validation.ParseIntRange("limit", c.Query("limit"), validation.DefaultScanLimit, 1, validation.MaxScanLimit)
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	offset, msg := validation.ParseOffset(c.Query("offset"))
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	scans, total, err := h.store.ListScans(c.Context(), limit, offset)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch scan history")
	}

	return jsonPage(c, scans, total, limit, offset)
}
