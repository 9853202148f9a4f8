package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/internal/server/auth"
	"github.com/storerate/storerate/internal/server/authz"
)

const callerKey = "caller"

// authenticate parses an optional bearer token and stores the caller
// identity in the request context. Requests without a token stay
// anonymous; requests with a bad token are rejected outright.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortUnauthorized(c)
			return
		}

		userID, role, err := auth.ParseToken(tokenString, s.jwtSecret)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(callerKey, authz.Caller{ID: userID, Role: role})
		c.Next()
	}
}

// requirePermission rejects anonymous callers and callers whose role the
// permission table does not allow for the action. The denial is identical
// to the anonymous one, so callers cannot use it to probe for resources.
func (s *Server) requirePermission(action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerFrom(c)
		if !ok {
			abortUnauthorized(c)
			return
		}
		if !authz.Allowed(caller, action) {
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}

func callerFrom(c *gin.Context) (authz.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return authz.Caller{}, false
	}
	caller, ok := v.(authz.Caller)
	return caller, ok
}
