package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ArowuTest/luckyticket-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP status codes. Unknown errors are attached to
// the gin context for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrAlreadyRedeemed):
		status, message = http.StatusBadRequest, "This ticket has already been redeemed"
	case errors.Is(err, services.ErrCodeNotFound):
		status, message = http.StatusNotFound, "Invalid ticket code"
	case errors.Is(err, services.ErrCreditFailed):
		status, message = http.StatusInternalServerError, "Ticket was redeemed but your points could not be credited. Please contact support."
		_ = c.Error(err)
	case errors.Is(err, services.ErrEmailTaken):
		status, message = http.StatusConflict, "User already exists"
	case errors.Is(err, services.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, services.ErrUserNotFound):
		status, message = http.StatusNotFound, "User not found"
	default:
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"message": message})
}

// pagination reads ?page= and ?limit=; bad values fall back to the service defaults.
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageLimit)))
	return services.NormalizePage(page, limit)
}
