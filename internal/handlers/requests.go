package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/services"
	"github.com/crowdqueue/crowdqueue/internal/types"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// RequestsHandler handles song request and vote routes
type RequestsHandler struct {
	DB *gorm.DB
}

// SubmitRequest handles POST /api/requests
// @Summary Submit a song request
// @Description Creates a new request with one vote, or merges into the existing request for the same URL. A merged submission returns 200 with merged=true; a repeat submission by the same guest returns 409 with the current request state.
// @Tags Requests
// @Accept json
// @Produce json
// @Param body body object true "event_id, guest_id, title, artist?, source, source_url, thumbnail_url?, duration_seconds?"
// @Success 201 {object} services.RequestWithVoters
// @Success 200 {object} services.RequestWithVoters
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /requests [post]
func (h *RequestsHandler) SubmitRequest(c *fiber.Ctx) error {
	var body struct {
		EventID         string         `json:"event_id"`
		GuestID         string         `json:"guest_id"`
		Title           string         `json:"title"`
		Artist          *string        `json:"artist"`
		Source          string         `json:"source"`
		SourceURL       string         `json:"source_url"`
		ThumbnailURL    *string        `json:"thumbnail_url"`
		DurationSeconds *types.FlexInt `json:"duration_seconds"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid input")
	}

	title, ok := trimmed(body.Title)
	if !ok {
		return utils.BadRequestResponse(c, "Title is required")
	}
	if body.EventID == "" || body.GuestID == "" {
		return utils.BadRequestResponse(c, "Event ID and guest ID are required")
	}
	if body.SourceURL == "" {
		return utils.BadRequestResponse(c, "Source URL is required")
	}

	source := body.Source
	if source == "" {
		source = "youtube"
	}

	var duration *int
	if body.DurationSeconds != nil {
		d := body.DurationSeconds.Int()
		duration = &d
	}

	result, err := services.SubmitRequest(h.DB, services.SubmitInput{
		EventID:         body.EventID,
		GuestID:         body.GuestID,
		Title:           title,
		Artist:          body.Artist,
		Source:          source,
		SourceURL:       body.SourceURL,
		ThumbnailURL:    body.ThumbnailURL,
		DurationSeconds: duration,
	})
	if err != nil {
		return serviceError(c, err, "submitRequest")
	}

	status := fiber.StatusCreated
	if result.Merged {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{
		"request": result.Request,
		"merged":  result.Merged,
	})
}

// ListEventRequests handles GET /api/requests/event/:eventId
// @Summary List an event's requests
// @Description Ordered by vote count descending, then submission time ascending, each with its voter list
// @Tags Requests
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {array} services.RequestWithVoters
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /requests/event/{eventId} [get]
func (h *RequestsHandler) ListEventRequests(c *fiber.Ctx) error {
	requests, err := services.ListEventRequests(h.DB, c.Params("eventId"))
	if err != nil {
		return serviceError(c, err, "listEventRequests")
	}
	return c.JSON(requests)
}

// AddVote handles POST /api/requests/votes
// @Summary Vote for an existing request
// @Tags Requests
// @Accept json
// @Produce json
// @Param body body object true "request_id, guest_id"
// @Success 200 {object} models.Request
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /requests/votes [post]
func (h *RequestsHandler) AddVote(c *fiber.Ctx) error {
	var body struct {
		RequestID string `json:"request_id"`
		GuestID   string `json:"guest_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid input")
	}
	if body.RequestID == "" || body.GuestID == "" {
		return utils.BadRequestResponse(c, "Request ID and guest ID are required")
	}

	request, err := services.AddVote(h.DB, body.RequestID, body.GuestID)
	if err != nil {
		return serviceError(c, err, "addVote")
	}

	return c.JSON(request)
}

// RetractVote handles DELETE /api/requests/votes/:requestId/:guestId
// @Summary Retract a vote
// @Description The request survives even when its last vote is retracted
// @Tags Requests
// @Produce json
// @Param requestId path string true "Request ID"
// @Param guestId path string true "Guest ID"
// @Success 200 {object} models.Request
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /requests/votes/{requestId}/{guestId} [delete]
func (h *RequestsHandler) RetractVote(c *fiber.Ctx) error {
	request, err := services.RetractVote(h.DB, c.Params("requestId"), c.Params("guestId"))
	if err != nil {
		return serviceError(c, err, "retractVote")
	}
	return c.JSON(request)
}

// GuestDeleteRequest handles DELETE /api/requests/:id/guest/:guestId
// @Summary Delete own request
// @Description Allowed only while the guest is the request's sole voter
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Param guestId path string true "Guest ID"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /requests/{id}/guest/{guestId} [delete]
func (h *RequestsHandler) GuestDeleteRequest(c *fiber.Ctx) error {
	if err := services.GuestDeleteRequest(h.DB, c.Params("id"), c.Params("guestId")); err != nil {
		return serviceError(c, err, "guestDeleteRequest")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// DeleteRequest handles DELETE /api/requests/:id
// @Summary Delete a request (DJ console)
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /requests/{id} [delete]
func (h *RequestsHandler) DeleteRequest(c *fiber.Ctx) error {
	if err := services.DeleteRequest(h.DB, c.Params("id")); err != nil {
		return serviceError(c, err, "deleteRequest")
	}
	return c.JSON(fiber.Map{"ok": true})
}
