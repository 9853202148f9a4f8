package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/internal/common"
)

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// writeError maps a service error onto an HTTP status. Anything without a
// sentinel mapping is logged and surfaced opaquely as a 500.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": common.ErrorDuplicateEmail.Error()})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": common.ErrorNotFound.Error()})
	case errors.Is(err, common.ErrorInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": common.ErrorInvalidCredentials.Error()})
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, common.ErrorOwnerNotFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": common.ErrorOwnerNotFound.Error()})
	case errors.Is(err, common.ErrorOwnerWrongRole):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": common.ErrorOwnerWrongRole.Error()})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}
