package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"venuedash/internal/app/commands"
	"venuedash/internal/app/dto"
	bookingapp "venuedash/internal/app/handlers/booking"
	"venuedash/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h BookingHandler) List(c *gin.Context) {
	operator, ok := requireOperator(c)
	if !ok {
		return
	}
	query := bookingapp.ListVenueBookingsQuery{
		VenueID:    strings.TrimSpace(c.Param("id")),
		OperatorID: operator,
		Status:     c.Query("status"),
	}
	result, err := queries.Ask[bookingapp.ListVenueBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) UpdateStatus(c *gin.Context) {
	operator, ok := requireOperator(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, h.Logger, http.StatusBadRequest, err)
		return
	}
	cmd := bookingapp.UpdateBookingStatusCommand{
		BookingID:  strings.TrimSpace(c.Param("id")),
		OperatorID: operator,
		Status:     req.Status,
	}
	result, err := commands.Dispatch[bookingapp.UpdateBookingStatusCommand, *dto.BookingStatusResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
