package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/apperr"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/site/service"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/middleware"
)

// RegisterSiteRoutes mounts the site and history endpoints on r. r must
// already run AuthMiddleware.
func RegisterSiteRoutes(r gin.IRouter, svc *service.Service) {
	h := &siteHandler{svc: svc}
	r.POST("/sites", h.create)
	r.GET("/sites", h.list)
	r.GET("/sites/:id", h.get)
	r.PATCH("/sites/:id", h.update)
	r.GET("/sites/:id/history", h.listHistory)
	r.POST("/sites/:id/history", h.saveHistory)
	r.GET("/sites/:id/version/:vid", h.getVersion)
}

type siteHandler struct {
	svc *service.Service
}

// decodeStrict rejects unknown fields and trailing garbage.
func decodeStrict(c *gin.Context, v interface{}) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if dec.More() {
		return apperr.BadRequest("invalid request body")
	}
	return nil
}

// bindForSite authorizes before reporting a malformed body so that
// non-owners always see 403.
func (h *siteHandler) bindForSite(c *gin.Context, v interface{}) bool {
	if err := decodeStrict(c, v); err != nil {
		if _, aerr := h.svc.Authorize(c.Request.Context(), middleware.UID(c), c.Param("id")); aerr != nil {
			apperr.Respond(c, aerr)
			return false
		}
		apperr.Respond(c, err)
		return false
	}
	return true
}

func (h *siteHandler) create(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeStrict(c, &req); err != nil {
		apperr.Respond(c, err)
		return
	}
	st, err := h.svc.Create(c.Request.Context(), middleware.UID(c), req.Title)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *siteHandler) list(c *gin.Context) {
	list, err := h.svc.ListOwned(c.Request.Context(), middleware.UID(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *siteHandler) get(c *gin.Context) {
	st, err := h.svc.Get(c.Request.Context(), middleware.UID(c), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *siteHandler) update(c *gin.Context) {
	var req service.UpdateRequest
	if !h.bindForSite(c, &req) {
		return
	}
	st, err := h.svc.Update(c.Request.Context(), middleware.UID(c), c.Param("id"), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *siteHandler) listHistory(c *gin.Context) {
	list, err := h.svc.ListVersions(c.Request.Context(), middleware.UID(c), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *siteHandler) saveHistory(c *gin.Context) {
	var req service.SaveVersionRequest
	if !h.bindForSite(c, &req) {
		return
	}
	id, err := h.svc.SaveVersion(c.Request.Context(), middleware.UID(c), c.Param("id"), req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *siteHandler) getVersion(c *gin.Context) {
	e, err := h.svc.GetVersion(c.Request.Context(), middleware.UID(c), c.Param("id"), c.Param("vid"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
