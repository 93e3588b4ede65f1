package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/crowdqueue/crowdqueue/internal/services"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// SearchHandler proxies guest search queries to the video search provider
type SearchHandler struct {
	YouTube *services.YouTubeClient
}

// SearchYouTube handles GET /api/search/youtube
// @Summary Search YouTube for songs
// @Description Proxies the query to the YouTube Data API, music category only, with durations attached
// @Tags Search
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {array} services.SearchResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /search/youtube [get]
func (h *SearchHandler) SearchYouTube(c *fiber.Ctx) error {
	query, ok := trimmed(c.Query("q"))
	if !ok {
		return utils.BadRequestResponse(c, "Search query is required")
	}

	results, err := h.YouTube.Search(c.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSearchNotConfigured):
			return utils.ErrorResponse(c, "Search is not configured", fiber.StatusServiceUnavailable, "search")
		case errors.Is(err, services.ErrSearchQuota):
			return utils.ErrorResponse(c, "Search quota exceeded. Please try again later.", fiber.StatusTooManyRequests, "search")
		}
		return utils.ErrorResponse(c, "Search failed", fiber.StatusBadGateway, "search")
	}

	return c.JSON(results)
}
