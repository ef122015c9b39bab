package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Buffden/Event-Management-System-sub005/internal/domain"
	"github.com/Buffden/Event-Management-System-sub005/pkg/response"
)

// handleError maps a domain error to its HTTP status and error code
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsConflictError(err):
		response.Conflict(c, "CONFLICT", err.Error())
	case domain.IsStateError(err):
		response.UnprocessableEntity(c, "INVALID_STATE", err.Error())
	case domain.IsExpiredError(err):
		response.Error(c, http.StatusGone, "EXPIRED", err.Error(), "")
	case domain.IsUnavailableError(err):
		response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", err.Error(), "")
	default:
		response.InternalError(c, err)
	}
}
