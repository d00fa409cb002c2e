package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/watchlist/internal/middleware"
	"github.com/noah-isme/watchlist/internal/service"
)

func sessionFromContext(c *gin.Context) *service.SessionClaims {
	value, exists := c.Get(middleware.ContextSessionKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*service.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
