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

// SessionHandler exposes the selection session: open, toggle days, switch
// mode, commit.
type SessionHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type openSessionRequest struct {
	Mode string `json:"mode"`
}

type toggleRequest struct {
	Date string `json:"date"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (h SessionHandler) Open(c *gin.Context) {
	operator, ok := requireOperator(c)
	if !ok {
		return
	}
	var req openSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, h.Logger, http.StatusBadRequest, err)
			return
		}
	}
	cmd := availabilityapp.OpenSessionCommand{
		VenueID:    strings.TrimSpace(c.Param("id")),
		OperatorID: operator,
		Mode:       req.Mode,
	}
	result, err := commands.Dispatch[availabilityapp.OpenSessionCommand, *dto.Session](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h SessionHandler) Get(c *gin.Context) {
	operator, ok := requireOperator(c)
	if !ok {
		return
	}
	query := availabilityapp.GetSessionQuery{SessionID: c.Param("sid"), OperatorID: operator}
	result, err := queries.Ask[availabilityapp.GetSessionQuery, dto.Session](c.Request.Context(), h.Queries, query)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SessionHandler) Toggle(c *gin.Context) {
	operator, ok := requireOperator(c)
	if !ok {
		return
	}
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, h.Logger, http.StatusBadRequest, err)
		return
	}
	cmd := availabilityapp.ToggleDateCommand{SessionID: c.Param("sid"), OperatorID: operator, Date: req.Date}
	result, err := commands.Dispatch[availabilityapp.ToggleDateCommand, *dto.Session](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SessionHandler) SetMode(c *gin.Context) {
	operator, ok := requireOperator(c)
	if !ok {
		return
	}
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, h.Logger, http.StatusBadRequest, err)
		return
	}
	cmd := availabilityapp.SetModeCommand{SessionID: c.Param("sid"), OperatorID: operator, Mode: req.Mode}
	result, err := commands.Dispatch[availabilityapp.SetModeCommand, *dto.Session](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SessionHandler) Commit(c *gin.Context) {
	operator, ok := requireOperator(c)
	if !ok {
		return
	}
	cmd := availabilityapp.CommitSessionCommand{SessionID: c.Param("sid"), OperatorID: operator}
	result, err := commands.Dispatch[availabilityapp.CommitSessionCommand, *dto.CommitResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		handleError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ SessionHTTP = SessionHandler{}
