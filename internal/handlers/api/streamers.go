package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"livescan/internal/db"
	"livescan/internal/models"
	"livescan/internal/validation"
)

// StreamerHandler serves stored streamer records.
type StreamerHandler struct {
	store Store
}

// NewStreamerHandler creates a new API streamer handler.
func NewStreamerHandler(store Store) *StreamerHandler {
	return &StreamerHandler{store: store}
}

// List returns a page of streamers, optionally filtered by query and live flag.
func (h *StreamerHandler) List(c fiber.Ctx) error {
	limit, msg := validation.ParseIntRange("limit", c.Query("limit"), validation.DefaultStreamerLimit, 1, validation.MaxStreamerLimit)
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	offset, msg := validation.ParseOffset(c.Query("offset"))
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	isLive, msg := validation.ParseOptionalBool("is_live", c.Query("is_live"))
	if msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	filter := models.StreamerFilter{IsLive: isLive, Limit: limit, Offset: offset}
	if q := validation.NormalizeQuery(c.Query("query")); q != "" {
		filter.Query = &q
	}

	streamers, total, err := h.store.ListStreamers(c.Context(), filter)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch streamers")
	}

	return jsonPage(c, streamers, total, limit, offset)
}

// Get returns a single streamer by username.
func (h *StreamerHandler) Get(c fiber.Ctx) error {
	username := c.Params("username")
	if !validation.ValidateUsername(username) {
		return jsonError(c, fiber.StatusBadRequest, "invalid username")
	}

	streamer, err := h.store.GetStreamerByUsername(c.Context(), username)
	if err != nil {
		if errors.Is(err, db.ErrStreamerNotFound) {
			return jsonError(c, fiber.StatusNotFound, "streamer not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch streamer")
	}

	return jsonSuccess(c, streamer)
}

// Queries returns every distinct query with stored streamers.
func (h *StreamerHandler) Queries(c fiber.Ctx) error {
	queries, err := h.store.ListQueries(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch queries")
	}
	return jsonSuccess(c, queries)
}
