package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/apperr"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/profile/service"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/middleware"
)

// RegisterProfileRoutes mounts the profile and verification endpoints. smsLimit, when not
// nil, runs in front of send-sms only.
func RegisterProfileRoutes(r gin.IRouter, svc *service.Service, smsLimit gin.HandlerFunc) {
	sendSMS := []gin.HandlerFunc{}
	if smsLimit != nil {
		sendSMS = append(sendSMS, smsLimit)
	}
	sendSMS = append(sendSMS, func(c *gin.Context) {
		var req struct {
			Mobile string `json:"mobile"`
		}
		if !bind(c, &req) {
			return
		}
		if err := svc.IssueMobileCode(c.Request.Context(), middleware.UID(c), req.Mobile); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
	})
	r.GET("/profile", func(c *gin.Context) {
		resp, err := svc.Profile(c.Request.Context(), middleware.UID(c))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	})
	r.POST("/profile/send-sms", sendSMS...)

	r.POST("/profile/mark-mobile-verified", func(c *gin.Context) {
		var req struct {
			Code string `json:"code"`
		}
		if !bind(c, &req) {
			return
		}
		resp, err := svc.ConfirmMobile(c.Request.Context(), middleware.UID(c), req.Code)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	})
}

func bind(c *gin.Context, v interface{}) bool {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		apperr.Respond(c, apperr.BadRequest("invalid request body"))
		return false
	}
	return true
}
