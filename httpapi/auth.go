package httpapi

import (
	"net/http"
	"strings"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/config"
	"github.com/gin-gonic/gin"
)

const userContextKey = "httpapi.user"

// authenticate resolves the bearer token to a configured user. Unknown or
// missing tokens stop the request with 401.
func (s *Server) authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "not authenticated"})
		return
	}

	user, ok := s.users[token]
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
		return
	}

	c.Set(userContextKey, user)
	c.Next()
}

// requireRole gates a route group on the caller holding one of the roles.
func (s *Server) requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if !authorize(user, roles...) {
			s.logger.Warn().
				Str("user", user.Name).
				Str("role", user.Role).
				Str("path", c.Request.URL.Path).
				Msg("rejected by role gate")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "insufficient privileges"})
			return
		}
		c.Next()
	}
}

func authorize(user config.User, required ...string) bool {
	for _, role := range required {
		if user.Role == role {
			return true
		}
	}
	return false
}

func currentUser(c *gin.Context) config.User {
	if v, ok := c.Get(userContextKey); ok {
		if u, ok := v.(config.User); ok {
			return u
		}
	}
	return config.User{}
}
