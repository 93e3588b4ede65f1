package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/services"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// LibraryHandler handles music library routes
type LibraryHandler struct {
	DB      *gorm.DB
	Scanner *services.Scanner
}

// ScanFolder handles POST /api/library/scan
// @Summary Scan a music folder into the DJ's library
// @Description Walks the folder recursively, reading tags from supported audio files. Unreadable files are counted as errors and skipped.
// @Tags Library
// @Accept json
// @Produce json
// @Param body body object true "dj_id, folder_path"
// @Success 200 {object} services.ScanResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /library/scan [post]
func (h *LibraryHandler) ScanFolder(c *fiber.Ctx) error {
	var body struct {
		DJID       string `json:"dj_id"`
		FolderPath string `json:"folder_path"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid input")
	}
	if body.DJID == "" || body.FolderPath == "" {
		return utils.BadRequestResponse(c, "DJ ID and folder path are required")
	}

	result, err := h.Scanner.ScanFolder(body.DJID, body.FolderPath)
	if err != nil {
		return serviceError(c, err, "scanFolder")
	}

	return c.JSON(result)
}

// ListLibrary handles GET /api/library/dj/:djId
// @Summary List a DJ's library
// @Tags Library
// @Produce json
// @Param djId path string true "DJ ID"
// @Param search query string false "Substring filter over title, artist and filename"
// @Success 200 {array} models.LibraryTrack
// @Router /library/dj/{djId} [get]
func (h *LibraryHandler) ListLibrary(c *fiber.Ctx) error {
	tracks, err := services.ListLibrary(h.DB, c.Params("djId"), c.Query("search"))
	if err != nil {
		return serviceError(c, err, "listLibrary")
	}
	return c.JSON(tracks)
}

// ClearLibrary handles DELETE /api/library/dj/:djId
// @Summary Clear a DJ's library
// @Tags Library
// @Produce json
// @Param djId path string true "DJ ID"
// @Success 200 {object} map[string]int64
// @Router /library/dj/{djId} [delete]
func (h *LibraryHandler) ClearLibrary(c *fiber.Ctx) error {
	deleted, err := services.ClearLibrary(h.DB, c.Params("djId"))
	if err != nil {
		return serviceError(c, err, "clearLibrary")
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// MatchRequest handles GET /api/library/match/:requestId
// @Summary Match a request against the owning DJ's library
// @Description Returns up to three candidates in confidence order with a human-readable reason per match
// @Tags Library
// @Produce json
// @Param requestId path string true "Request ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /library/match/{requestId} [get]
func (h *LibraryHandler) MatchRequest(c *fiber.Ctx) error {
	request, matches, err := services.MatchForRequest(h.DB, c.Params("requestId"))
	if err != nil {
		return serviceError(c, err, "matchRequest")
	}
	return c.JSON(fiber.Map{
		"request": request,
		"matches": matches,
	})
}

// BrowseDirectory handles GET /api/library/browse
// @Summary Browse server directories
// @Description Folder picker for the DJ console; lists non-hidden subdirectories of the given path, defaulting to the home directory
// @Tags Library
// @Produce json
// @Param path query string false "Directory to list"
// @Success 200 {object} services.DirectoryListing
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /library/browse [get]
func (h *LibraryHandler) BrowseDirectory(c *fiber.Ctx) error {
	listing, err := services.BrowseDirectory(c.Query("path"))
	if err != nil {
		if errors.Is(err, services.ErrPermissionDenied) {
			return utils.ForbiddenResponse(c, "Permission denied")
		}
		return serviceError(c, err, "browseDirectory")
	}
	return c.JSON(listing)
}
