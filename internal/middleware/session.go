package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/watchlist/internal/service"
	appErrors "github.com/noah-isme/watchlist/pkg/errors"
	"github.com/noah-isme/watchlist/pkg/response"
)

// ContextSessionKey is the gin context key storing session claims.
const ContextSessionKey = "session"

type sessionValidator interface {
	ValidateToken(token string) (*service.SessionClaims, error)
}

// SessionToken extracts the session token from the cookie or a Bearer header.
func SessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequirePage gates HTML routes; visitors without a valid session are sent
// back to the password page.
func RequirePage(auth sessionValidator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := validate(c, auth, cookieName)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.Set(ContextSessionKey, claims)
		c.Next()
	}
}

// RequireAPI gates JSON routes with a 401 envelope.
func RequireAPI(auth sessionValidator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := validate(c, auth, cookieName)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextSessionKey, claims)
		c.Next()
	}
}

func validate(c *gin.Context, auth sessionValidator, cookieName string) (*service.SessionClaims, error) {
	token := SessionToken(c, cookieName)
	if token == "" {
		return nil, appErrors.ErrUnauthorized
	}
	return auth.ValidateToken(token)
}
