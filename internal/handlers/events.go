package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/services"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// EventsHandler handles event lifecycle routes
type EventsHandler struct {
	DB *gorm.DB
}

// CreateEvent handles POST /api/events
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Param body body object true "dj_id, name, event_date?, download_folder?"
// @Success 201 {object} models.Event
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /events [post]
func (h *EventsHandler) CreateEvent(c *fiber.Ctx) error {
	var body struct {
		DJID           string  `json:"dj_id"`
		Name           string  `json:"name"`
		EventDate      *string `json:"event_date"`
		DownloadFolder *string `json:"download_folder"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid input")
	}

	name, ok := trimmed(body.Name)
	if !ok {
		return utils.BadRequestResponse(c, "Event name is required")
	}
	if body.DJID == "" {
		return utils.BadRequestResponse(c, "DJ ID is required")
	}

	event, err := services.CreateEvent(h.DB, services.CreateEventInput{
		DJID:           body.DJID,
		Name:           name,
		EventDate:      body.EventDate,
		DownloadFolder: body.DownloadFolder,
	})
	if err != nil {
		return serviceError(c, err, "createEvent")
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

// ListDJEvents handles GET /api/events/dj/:djId
// @Summary List a DJ's events
// @Description Newest first, each with request_count and total_votes
// @Tags Events
// @Produce json
// @Param djId path string true "DJ ID"
// @Success 200 {array} services.EventWithStats
// @Router /events/dj/{djId} [get]
func (h *EventsHandler) ListDJEvents(c *fiber.Ctx) error {
	events, err := services.ListDJEvents(h.DB, c.Params("djId"))
	if err != nil {
		return serviceError(c, err, "listDJEvents")
	}
	return c.JSON(events)
}

// GetEvent handles GET /api/events/:id
// @Summary Get one event with aggregates
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} services.EventWithStats
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /events/{id} [get]
func (h *EventsHandler) GetEvent(c *fiber.Ctx) error {
	event, err := services.GetEvent(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getEvent")
	}
	return c.JSON(event)
}

// UpdateEvent handles PUT /api/events/:id
// @Summary Update event settings
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param body body object true "footer_text?, download_folder?"
// @Success 200 {object} models.Event
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /events/{id} [put]
func (h *EventsHandler) UpdateEvent(c *fiber.Ctx) error {
	var body struct {
		FooterText     *string `json:"footer_text"`
		DownloadFolder *string `json:"download_folder"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid input")
	}

	event, err := services.UpdateEvent(h.DB, c.Params("id"), services.UpdateEventInput{
		FooterText:     body.FooterText,
		DownloadFolder: body.DownloadFolder,
	})
	if err != nil {
		return serviceError(c, err, "updateEvent")
	}

	return c.JSON(event)
}

// CloseEvent handles PUT /api/events/:id/close
// @Summary Close an event
// @Description Terminal but idempotent; closed events reject new requests and votes
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} models.Event
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /events/{id}/close [put]
func (h *EventsHandler) CloseEvent(c *fiber.Ctx) error {
	event, err := services.CloseEvent(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "closeEvent")
	}
	return c.JSON(event)
}

// DeleteEvent handles DELETE /api/events/:id
// @Summary Delete an event and everything it owns
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /events/{id} [delete]
func (h *EventsHandler) DeleteEvent(c *fiber.Ctx) error {
	if err := services.DeleteEvent(h.DB, c.Params("id")); err != nil {
		return serviceError(c, err, "deleteEvent")
	}
	return c.JSON(fiber.Map{"ok": true})
}
