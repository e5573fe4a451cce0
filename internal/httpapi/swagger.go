//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// apiDoc is a minimal OpenAPI document registered with swag. `swag init -g
// cmd/dispatchd/docs.go` regenerates a complete one from the handler
// annotations.
const apiDoc = `{
  "swagger": "2.0",
  "info": {"title": "{{.Title}}", "version": "{{.Version}}", "description": "{{escape .Description}}"},
  "basePath": "{{.BasePath}}",
  "paths": {
    "/channels": {"get": {"tags": ["channels"], "summary": "List channels", "responses": {"200": {"description": "OK"}}},
                  "post": {"tags": ["channels"], "summary": "Create a channel", "responses": {"201": {"description": "Created"}}}},
    "/channels/{name}/emit": {"post": {"tags": ["channels"], "summary": "Emit an event", "responses": {"200": {"description": "OK"}}}},
    "/sinks": {"get": {"tags": ["sinks"], "summary": "List sinks", "responses": {"200": {"description": "OK"}}}},
    "/status": {"get": {"tags": ["status"], "summary": "Service status", "responses": {"200": {"description": "OK"}}}}
  }
}`

var swaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "dispatchd API",
	Description:      "HTTP API for named event channels and sinks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  apiDoc,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(swaggerInfo.InstanceName(), swaggerInfo)
}

// MountSwagger serves the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
