package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ericziethen/ez-scrape/models"
)

// Auth gates requests behind an API key, read from the X-API-Key header
// or an Authorization bearer token. With no keys configured the gate is
// left open and every request passes.
func Auth(apiKeys []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			allowed[k] = true
		}
	}
	if len(allowed) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := requestKey(c)
		switch {
		case key == "":
			rejectUnauthorized(c, "API key required (X-API-Key or Authorization: Bearer)")
		case !allowed[key]:
			rejectUnauthorized(c, "API key not recognized")
		default:
			c.Next()
		}
	}
}

func requestKey(c *gin.Context) string {
	if k := c.GetHeader("X-API-Key"); k != "" {
		return k
	}
	const bearer = "Bearer "
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, bearer) {
		return auth[len(bearer):]
	}
	return ""
}

func rejectUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ScrapeResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeUnauthorized,
			Message: msg,
		},
	})
}
