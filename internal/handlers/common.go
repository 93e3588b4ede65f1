package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/crowdqueue/crowdqueue/internal/services"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// serviceError maps service-layer sentinel errors onto HTTP responses.
// Anything unrecognized is an internal fault and is reported without detail.
func serviceError(c *fiber.Ctx, err error, errorType string) error {
	var alreadyVoted *services.AlreadyVotedError
	switch {
	case errors.As(err, &alreadyVoted):
		return utils.ConflictResponse(c, "You already requested/voted for this song", alreadyVoted.Request)
	case errors.Is(err, services.ErrDJNotFound):
		return utils.NotFoundResponse(c, "DJ not found")
	case errors.Is(err, services.ErrEventNotFound):
		return utils.NotFoundResponse(c, "Event not found")
	case errors.Is(err, services.ErrGuestNotFound):
		return utils.NotFoundResponse(c, "Guest not found")
	case errors.Is(err, services.ErrRequestNotFound):
		return utils.NotFoundResponse(c, "Request not found")
	case errors.Is(err, services.ErrVoteNotFound):
		return utils.NotFoundResponse(c, "Vote not found")
	case errors.Is(err, services.ErrEventClosed):
		return utils.BadRequestResponse(c, "Event is closed")
	case errors.Is(err, services.ErrNotSoleVoter):
		return utils.ForbiddenResponse(c, "You can only delete requests where you are the sole voter")
	case errors.Is(err, services.ErrFolderNotFound):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, errorType)
	case errors.Is(err, services.ErrDownloadInProgress):
		return utils.ConflictResponse(c, "Download already in progress", nil)
	}
	return utils.ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, errorType)
}

// trimmed returns the trimmed string and whether it is non-empty.
func trimmed(s string) (string, bool) {
	t := strings.TrimSpace(s)
	return t, t != ""
}
