package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"venuedash/internal/infra/obs"
)

// currentOperator returns the operator id attached by obs.Middleware.Operator.
func currentOperator(c *gin.Context) (string, bool) {
	id := obs.OperatorFromContext(c.Request.Context())
	return id, id != ""
}

func requireOperator(c *gin.Context) (string, bool) {
	id, ok := currentOperator(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "operator required"})
		return "", false
	}
	return id, true
}
