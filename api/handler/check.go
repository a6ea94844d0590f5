package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ericziethen/ez-scrape/config"
	"github.com/ericziethen/ez-scrape/models"
	"github.com/ericziethen/ez-scrape/probe"
)

// Check returns the handler for GET /api/v1/check, a reachability probe.
//
// Query parameters: url (required) and local_only (optional bool). The
// server-side LocalOnly setting forces local-only mode regardless of the
// query.
func Check(cfg config.ScraperConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("url")
		if rawURL == "" {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "url query parameter is required",
				},
			})
			return
		}

		localOnly := cfg.LocalOnly
		if v, err := strconv.ParseBool(c.Query("local_only")); err == nil && v {
			localOnly = true
		}

		reachable, err := probe.CheckURL(c.Request.Context(), rawURL, localOnly)
		if err != nil {
			if errors.Is(err, probe.ErrNotLocal) {
				c.JSON(http.StatusBadRequest, models.ScrapeResponse{
					Success: false,
					Error: &models.ErrorDetail{
						Code:    models.ErrCodeNotLocal,
						Message: err.Error(),
					},
				})
				return
			}
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.CheckResponse{
			URL:       rawURL,
			Local:     probe.IsLocalAddress(rawURL),
			Reachable: reachable,
		})
	}
}
