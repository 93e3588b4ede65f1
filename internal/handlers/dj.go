package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/services"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// DJHandler handles DJ profile routes
type DJHandler struct {
	DB *gorm.DB
}

// CreateDJ handles POST /api/dj/create
// @Summary Create DJ profile
// @Description Create a new DJ profile; the returned id is the login credential
// @Tags DJ
// @Accept json
// @Produce json
// @Param body body object true "name, contact_email?, contact_phone?"
// @Success 201 {object} models.DJ
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /dj/create [post]
func (h *DJHandler) CreateDJ(c *fiber.Ctx) error {
	var body struct {
		Name         string  `json:"name"`
		ContactEmail *string `json:"contact_email"`
		ContactPhone *string `json:"contact_phone"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid input")
	}

	name, ok := trimmed(body.Name)
	if !ok {
		return utils.BadRequestResponse(c, "DJ name is required")
	}

	dj, err := services.CreateDJ(h.DB, services.CreateDJInput{
		Name:         name,
		ContactEmail: body.ContactEmail,
		ContactPhone: body.ContactPhone,
	})
	if err != nil {
		return serviceError(c, err, "createDJ")
	}

	return c.Status(fiber.StatusCreated).JSON(dj)
}

// Login handles POST /api/dj/login
// @Summary Log in with a DJ ID
// @Tags DJ
// @Accept json
// @Produce json
// @Param body body object true "id"
// @Success 200 {object} models.DJ
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /dj/login [post]
func (h *DJHandler) Login(c *fiber.Ctx) error {
	var body struct {
		ID string `json:"id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid input")
	}
	if body.ID == "" {
		return utils.BadRequestResponse(c, "DJ ID is required")
	}

	dj, err := services.GetDJ(h.DB, body.ID)
	if err != nil {
		return serviceError(c, err, "djLogin")
	}

	return c.JSON(dj)
}

// GetDJ handles GET /api/dj/:id
// @Summary Get DJ profile
// @Tags DJ
// @Produce json
// @Param id path string true "DJ ID"
// @Success 200 {object} models.DJ
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /dj/{id} [get]
func (h *DJHandler) GetDJ(c *fiber.Ctx) error {
	dj, err := services.GetDJ(h.DB, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getDJ")
	}
	return c.JSON(dj)
}

// UpdateDJ handles PUT /api/dj/:id
// @Summary Update DJ profile
// @Description Partial update; omitted fields are left unchanged
// @Tags DJ
// @Accept json
// @Produce json
// @Param id path string true "DJ ID"
// @Param body body object true "name?, contact_email?, contact_phone?, library_paths?"
// @Success 200 {object} models.DJ
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /dj/{id} [put]
func (h *DJHandler) UpdateDJ(c *fiber.Ctx) error {
	var body struct {
		Name         *string  `json:"name"`
		ContactEmail *string  `json:"contact_email"`
		ContactPhone *string  `json:"contact_phone"`
		LibraryPaths []string `json:"library_paths"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid input")
	}

	dj, err := services.UpdateDJ(h.DB, c.Params("id"), services.UpdateDJInput{
		Name:         body.Name,
		ContactEmail: body.ContactEmail,
		ContactPhone: body.ContactPhone,
		LibraryPaths: body.LibraryPaths,
	})
	if err != nil {
		return serviceError(c, err, "updateDJ")
	}

	return c.JSON(dj)
}
