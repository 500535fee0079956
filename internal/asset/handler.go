package asset

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/apperr"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/middleware"
)

// RegisterRoutes mounts POST /assets. Request bodies above maxBytes are rejected.
func RegisterRoutes(r gin.IRouter, svc *Service, maxBytes int64) {
	r.POST("/assets", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
				apperr.Respond(c, apperr.BadRequest("file too large"))
			case errors.Is(err, http.ErrMissingFile):
				apperr.Respond(c, apperr.BadRequest("no file uploaded"))
			default:
				apperr.Respond(c, apperr.BadRequest("invalid multipart form"))
			}
			return
		}
		url, err := svc.Upload(c.Request.Context(), middleware.UID(c), fh)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
	})
}
