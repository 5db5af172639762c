package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"venuedash/internal/app/commands"
	"venuedash/internal/app/dto"
	availabilityapp "venuedash/internal/app/handlers/availability"
	"venuedash/internal/app/queries"
)

type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	operator, ok := requireOperator(c)
	if !ok {
		return
	}
	query := availabilityapp.GetCalendarQuery{
		VenueID:    strings.TrimSpace(c.Param("id")),
		OperatorID: operator,
		From:       c.Query("from"),
		To:         c.Query("to"),
		Mode:       c.Query("mode"),
		SessionID:  c.Query("session"),
	}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type commitRequest struct {
	Mode  string   `json:"mode"`
	Dates []string `json:"dates"`
}

// Commit blocks or unblocks the posted dates in one call. A repeated
// Idempotency-Key replays the first successful result.
func (h AvailabilityHandler) Commit(c *gin.Context) {
	operator, ok := requireOperator(c)
	if !ok {
		return
	}
	var req commitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, h.Logger, http.StatusBadRequest, err)
		return
	}
	cmd := availabilityapp.CommitBlockedDatesCommand{
		VenueID:    strings.TrimSpace(c.Param("id")),
		OperatorID: operator,
		Mode:       req.Mode,
		Dates:      req.Dates,
		RequestKey: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[availabilityapp.CommitBlockedDatesCommand, *dto.CommitResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
