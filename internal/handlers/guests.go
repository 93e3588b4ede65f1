package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/services"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// GuestsHandler handles guest session routes
type GuestsHandler struct {
	DB *gorm.DB
}

// CreateGuest handles POST /api/guests
// @Summary Join an event as a guest
// @Description Creates a guest with a generated display name; the returned id identifies the guest in later calls
// @Tags Guests
// @Accept json
// @Produce json
// @Param body body object true "event_id"
// @Success 201 {object} models.Guest
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /guests [post]
func (h *GuestsHandler) CreateGuest(c *fiber.Ctx) error {
	var body struct {
		EventID string `json:"event_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid input")
	}
	if body.EventID == "" {
		return utils.BadRequestResponse(c, "Event ID is required")
	}

	guest, err := services.CreateGuest(h.DB, body.EventID)
	if err != nil {
		return serviceError(c, err, "createGuest")
	}

	return c.Status(fiber.StatusCreated).JSON(guest)
}

// GetGuest handles GET /api/guests/:id
// @Summary Get a guest
// @Tags Guests
// @Produce json
// @Param id path string true "Guest ID"
// @Success 200 {object} models.Guest
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /guests/{id} [get]
func (h *GuestsHandler) GetGuest(c *fiber.Ctx) error {
	guest, err := services.GetGuest(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getGuest")
	}
	return c.JSON(guest)
}

// RenameGuest handles PUT /api/guests/:id/name
// @Summary Rename a guest
// @Tags Guests
// @Accept json
// @Produce json
// @Param id path string true "Guest ID"
// @Param body body object true "display_name"
// @Success 200 {object} models.Guest
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /guests/{id}/name [put]
func (h *GuestsHandler) RenameGuest(c *fiber.Ctx) error {
	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid input")
	}

	name, ok := trimmed(body.DisplayName)
	if !ok {
		return utils.BadRequestResponse(c, "Display name is required")
	}

	guest, err := services.RenameGuest(h.DB, c.Params("id"), name)
	if err != nil {
		return serviceError(c, err, "renameGuest")
	}

	return c.JSON(guest)
}
