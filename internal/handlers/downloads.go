package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/models"
	"github.com/crowdqueue/crowdqueue/internal/services"
	"github.com/crowdqueue/crowdqueue/internal/types"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// DownloadsHandler handles download orchestration routes
type DownloadsHandler struct {
	DB         *gorm.DB
	Downloader *services.Downloader
}

// StartDownload handles POST /api/downloads/start/:requestId
// @Summary Start downloading a request's source
// @Description Launches the external downloader and returns immediately; poll the progress route for status. The output folder defaults from the event when not given.
// @Tags Downloads
// @Accept json
// @Produce json
// @Param requestId path string true "Request ID"
// @Param body body object false "output_dir?"
// @Success 202 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /downloads/start/{requestId} [post]
func (h *DownloadsHandler) StartDownload(c *fiber.Ctx) error {
	requestID := c.Params("requestId")

	var body struct {
		OutputDir string `json:"output_dir"`
	}
	// Body is optional; ignore parse failures on an empty body.
	_ = c.BodyParser(&body)

	outputDir := body.OutputDir
	if outputDir == "" {
		dir, err := h.defaultOutputDir(requestID)
		if err != nil {
			return serviceError(c, err, "startDownload")
		}
		outputDir = dir
	}

	if err := h.Downloader.Start(requestID, outputDir); err != nil {
		return serviceError(c, err, "startDownload")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"request_id": requestID,
		"status":     services.StatusDownloading,
		"output_dir": outputDir,
	})
}

// GetProgress handles GET /api/downloads/progress/:requestId
// @Summary Get download progress
// @Description Reports the in-flight state, or the persisted result for finished downloads, or not_started
// @Tags Downloads
// @Produce json
// @Param requestId path string true "Request ID"
// @Success 200 {object} services.Progress
// @Router /downloads/progress/{requestId} [get]
func (h *DownloadsHandler) GetProgress(c *fiber.Ctx) error {
	return c.JSON(h.Downloader.Progress(c.Params("requestId")))
}

// CancelDownload handles POST /api/downloads/cancel/:requestId
// @Summary Cancel an in-flight download
// @Tags Downloads
// @Produce json
// @Param requestId path string true "Request ID"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /downloads/cancel/{requestId} [post]
func (h *DownloadsHandler) CancelDownload(c *fiber.Ctx) error {
	if !h.Downloader.Cancel(c.Params("requestId")) {
		return utils.BadRequestResponse(c, "No active download to cancel")
	}
	return c.JSON(fiber.Map{"cancelled": true})
}

// BatchDownload handles POST /api/downloads/batch
// @Summary Start downloads for several requests
// @Description Accepts a single request id or a list; requests already downloading or unknown are reported per id, not as a batch failure
// @Tags Downloads
// @Accept json
// @Produce json
// @Param body body object true "request_ids (id or list), output_dir?"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /downloads/batch [post]
func (h *DownloadsHandler) BatchDownload(c *fiber.Ctx) error {
	var body struct {
		RequestIDs types.FlexList[string] `json:"request_ids"`
		OutputDir  string                 `json:"output_dir"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequestResponse(c, "Invalid input")
	}
	if len(body.RequestIDs) == 0 {
		return utils.BadRequestResponse(c, "At least one request ID is required")
	}

	started := make([]string, 0, len(body.RequestIDs))
	failed := make(map[string]string)

	for _, requestID := range body.RequestIDs.Slice() {
		outputDir := body.OutputDir
		if outputDir == "" {
			dir, err := h.defaultOutputDir(requestID)
			if err != nil {
				failed[requestID] = batchErrorDetail(err)
				continue
			}
			outputDir = dir
		}

		if err := h.Downloader.Start(requestID, outputDir); err != nil {
			failed[requestID] = batchErrorDetail(err)
			continue
		}
		started = append(started, requestID)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"started": started,
		"failed":  failed,
	})
}

// defaultOutputDir resolves the output folder from the request's event:
// the event's configured download_folder, else the derived default.
func (h *DownloadsHandler) defaultOutputDir(requestID string) (string, error) {
	var request models.Request
	if err := h.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", services.ErrRequestNotFound
		}
		return "", err
	}

	var event models.Event
	if err := h.DB.First(&event, "id = ?", request.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", services.ErrEventNotFound
		}
		return "", err
	}

	if event.DownloadFolder != nil && *event.DownloadFolder != "" {
		return *event.DownloadFolder, nil
	}
	return services.DefaultOutputDir(&event), nil
}

func batchErrorDetail(err error) string {
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		return "request not found"
	case errors.Is(err, services.ErrDownloadInProgress):
		return "already downloading"
	}
	return err.Error()
}
