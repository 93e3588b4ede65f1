package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/services"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// ContactsHandler handles post-event contact messages
type ContactsHandler struct {
	DB *gorm.DB
}

// CreateContact handles POST /api/contacts
// @Summary Leave a contact message for the DJ
// @Tags Contacts
// @Accept json
// @Produce json
// @Param body body object true "event_id, guest_name, contact_info, message?"
// @Success 201 {object} models.Contact
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /contacts [post]
func (h *ContactsHandler) CreateContact(c *fiber.Ctx) error {
	var body struct {
		EventID     string  `json:"event_id"`
		GuestName   string  `json:"guest_name"`
		ContactInfo string  `json:"contact_info"`
		Message     *string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid input")
	}

	guestName, ok := trimmed(body.GuestName)
	if !ok {
		return utils.BadRequestResponse(c, "Guest name is required")
	}
	contactInfo, ok := trimmed(body.ContactInfo)
	if !ok {
		return utils.BadRequestResponse(c, "Contact info is required")
	}
	if body.EventID == "" {
		return utils.BadRequestResponse(c, "Event ID is required")
	}

	contact, err := services.CreateContact(h.DB, services.CreateContactInput{
		EventID:     body.EventID,
		GuestName:   guestName,
		ContactInfo: contactInfo,
		Message:     body.Message,
	})
	if err != nil {
		return serviceError(c, err, "createContact")
	}

	return c.Status(fiber.StatusCreated).JSON(contact)
}

// ListEventContacts handles GET /api/contacts/event/:eventId
// @Summary List an event's contact messages
// @Tags Contacts
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {array} models.Contact
// @Router /contacts/event/{eventId} [get]
func (h *ContactsHandler) ListEventContacts(c *fiber.Ctx) error {
	contacts, err := services.ListEventContacts(h.DB, c.Params("eventId"))
	if err != nil {
		return serviceError(c, err, "listEventContacts")
	}
	return c.JSON(contacts)
}
