package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"venuedash/internal/app/commands"
	"venuedash/internal/app/middleware"
	"venuedash/internal/app/queries"
	"venuedash/internal/app/uow"
	domainavailability "venuedash/internal/domain/availability"
	domainbooking "venuedash/internal/domain/booking"
	"venuedash/internal/domain/shared/daterange"
	domainvenues "venuedash/internal/domain/venues"
)

// statusFor maps application errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, middleware.ErrOperatorRequired):
		return http.StatusUnauthorized
	case errors.Is(err, domainvenues.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, domainvenues.ErrVenueNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainavailability.ErrSessionExpired),
		errors.Is(err, mongo.ErrNoDocuments):
		return http.StatusNotFound
	case errors.Is(err, domainavailability.ErrCommitInFlight),
		errors.Is(err, domainavailability.ErrSelectionConflict),
		errors.Is(err, domainbooking.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domainavailability.ErrPersistFailed),
		errors.Is(err, domainvenues.ErrUpdateFailed),
		errors.Is(err, uow.ErrCommitFailed):
		return http.StatusBadGateway
	case isValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, commands.ErrNilBus), errors.Is(err, queries.ErrNilBus):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, middleware.ErrValidation),
		errors.Is(err, domainavailability.ErrUnknownMode),
		errors.Is(err, domainavailability.ErrCalendarWindow),
		errors.Is(err, domainavailability.ErrEmptySelection),
		errors.Is(err, daterange.ErrInvalidDate),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrUnknownStatus):
		return true
	}
	return false
}

// handleError writes {"error": ...} with the mapped status. Server side
// failures are logged at error level, the rest at debug.
func handleError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	respondWithError(c, logger, status, err)
}

func respondWithError(c *gin.Context, logger *slog.Logger, status int, err error) {
	if logger != nil {
		fields := []any{"status", status, "error", err, "path", c.FullPath()}
		if operator, ok := currentOperator(c); ok {
			fields = append(fields, "operator_id", operator)
		}
		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed", fields...)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
