package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"venuedash/internal/app/dto"
	venuesapp "venuedash/internal/app/handlers/venues"
	"venuedash/internal/app/queries"
)

type VenueHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h VenueHandler) List(c *gin.Context) {
	operator, ok := requireOperator(c)
	if !ok {
		return
	}
	query := venuesapp.ListVenuesQuery{OperatorID: operator}
	result, err := queries.Ask[venuesapp.ListVenuesQuery, dto.VenueCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h VenueHandler) Get(c *gin.Context) {
	operator, ok := requireOperator(c)
	if !ok {
		return
	}
	query := venuesapp.GetVenueQuery{VenueID: strings.TrimSpace(c.Param("id")), OperatorID: operator}
	result, err := queries.Ask[venuesapp.GetVenueQuery, dto.Venue](c.Request.Context(), h.Queries, query)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ VenueHTTP = VenueHandler{}
