package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the site API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter, basePath string) {
	doc := strings.Replace(swaggerJSON, "{{BASE_PATH}}", basePath, 1)
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>sitecraft-api - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "sitecraft-api", "version": "v1.0.0" },
  "servers": [ { "url": "{{BASE_PATH}}" } ],
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Error": { "type": "object", "properties": { "message": { "type": "string" } } },
      "Site": { "type": "object", "properties": {
        "id": {"type":"string"}, "ownerId": {"type":"string"}, "title": {"type":"string"},
        "draftContent": {"type":"string"}, "publishedContent": {"type":"string"},
        "status": {"type":"string","enum":["draft","published"]},
        "createdAt": {"type":"string","format":"date-time"}, "updatedAt": {"type":"string","format":"date-time"} } },
      "HistoryEntry": { "type": "object", "properties": {
        "id": {"type":"string"}, "content": {"type":"string"}, "pageStyles": {"type":"string"},
        "versionName": {"type":"string"}, "uid": {"type":"string"}, "savedAt": {"type":"string","format":"date-time"} } }
    }
  },
  "security": [ { "bearer": [] } ],
  "paths": {
    "/sites": {
      "get": { "summary": "List the caller's sites", "responses": { "200": { "description": "sites, most recently updated first" } } },
      "post": { "summary": "Create a site", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"}},"required":["title"]}}}}, "responses": { "201": { "description": "created site" }, "400": { "description": "title missing" } } }
    },
    "/sites/{id}": {
      "get": { "summary": "Read a site", "responses": { "200": { "description": "site" }, "403": { "description": "not the owner" } } },
      "patch": { "summary": "Update title or draft, optionally publish", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"},"draftContent":{"type":"string"},"publish":{"type":"boolean"}}}}}}, "responses": { "200": { "description": "updated site" }, "400": { "description": "no content to update" }, "403": { "description": "not the owner" } } }
    },
    "/sites/{id}/history": {
      "get": { "summary": "List saved versions, newest first", "responses": { "200": { "description": "history entries" } } },
      "post": { "summary": "Save a version", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"content":{"type":"string"},"pageStyles":{"type":"string"},"versionName":{"type":"string"}},"required":["content","pageStyles","versionName"]}}}}, "responses": { "201": { "description": "id of the new entry" }, "400": { "description": "missing field" } } }
    },
    "/sites/{id}/version/{vid}": {
      "get": { "summary": "Fetch one saved version", "responses": { "200": { "description": "history entry" }, "404": { "description": "version not found" } } }
    },
    "/assets": {
      "post": { "summary": "Upload an image", "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"file":{"type":"string","format":"binary"}}}}}}, "responses": { "200": { "description": "url of the stored object" }, "400": { "description": "missing, too large or unsupported file" } } }
    },
    "/profile": {
      "get": { "summary": "Get the caller's profile", "responses": { "200": { "description": "profile" }, "404": { "description": "profile not found" } } }
    },
    "/profile/send-sms": {
      "post": { "summary": "Issue a mobile verification code", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"mobile":{"type":"string"}},"required":["mobile"]}}}}, "responses": { "200": { "description": "code sent" }, "429": { "description": "rate limited" } } }
    },
    "/profile/mark-mobile-verified": {
      "post": { "summary": "Confirm the mobile verification code", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"code":{"type":"string"}},"required":["code"]}}}}, "responses": { "200": { "description": "updated profile" }, "400": { "description": "invalid verification code" } } }
    },
    "/auth/revoke": {
      "post": { "summary": "Revoke the bearer token used for this call", "responses": { "200": { "description": "token revoked" } } }
    }
  }
}`
