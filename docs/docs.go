package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "prepdash API",
    "description": "Facility directory and preparedness dashboard backend",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {"get": {"tags": ["health"], "summary": "Database health", "responses": {"200": {"description": "ok"}, "503": {"description": "database unavailable"}}}},
    "/api/data/": {"get": {"tags": ["data"], "summary": "Directory data", "parameters": [
      {"name": "nationwide", "in": "query", "type": "string"},
      {"name": "states", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
      {"name": "zip_code", "in": "query", "type": "string"},
      {"name": "radius", "in": "query", "type": "number", "default": 50}
    ], "responses": {"200": {"description": "local and nearby people"}, "400": {"description": "invalid zip code"}}}},
    "/api/send-email/": {"post": {"tags": ["email"], "summary": "Send email", "consumes": ["application/json"], "parameters": [
      {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "required": ["subject", "message", "recipient"], "properties": {"subject": {"type": "string"}, "message": {"type": "string"}, "recipient": {"type": "string", "format": "email"}}}}
    ], "responses": {"200": {"description": "sent"}, "400": {"description": "missing or invalid fields"}, "500": {"description": "delivery failed"}}}},
    "/api/dashboard": {"get": {"tags": ["dashboard"], "summary": "Dashboard figures", "parameters": [
      {"name": "states", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
      {"name": "state", "in": "query", "type": "string"},
      {"name": "region", "in": "query", "type": "string"},
      {"name": "min_readiness", "in": "query", "type": "integer"},
      {"name": "max_readiness", "in": "query", "type": "integer"},
      {"name": "hazard", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
      {"name": "seed", "in": "query", "type": "string"}
    ], "responses": {"200": {"description": "facilities and summaries"}, "400": {"description": "invalid filter"}}}},
    "/api/regions": {"get": {"tags": ["dashboard"], "summary": "Regions and state names", "responses": {"200": {"description": "ok"}}}},
    "/api/layouts": {
      "get": {"tags": ["layouts"], "summary": "Dashboard layouts", "responses": {"200": {"description": "layouts by breakpoint"}}},
      "put": {"tags": ["layouts"], "summary": "Save dashboard layouts", "responses": {"200": {"description": "saved"}, "400": {"description": "invalid payload"}}},
      "delete": {"tags": ["layouts"], "summary": "Reset dashboard layouts", "responses": {"200": {"description": "defaults"}}}
    },
    "/api/import": {"post": {"tags": ["import"], "summary": "Import persons CSV", "consumes": ["multipart/form-data"], "parameters": [
      {"name": "X-Admin-Key", "in": "header", "type": "string"},
      {"name": "file", "in": "formData", "type": "file", "required": true},
      {"name": "geocode", "in": "query", "type": "boolean"},
      {"name": "force", "in": "query", "type": "boolean"},
      {"name": "append", "in": "query", "type": "boolean"}
    ], "responses": {"200": {"description": "import summary"}, "400": {"description": "csv validation errors"}, "401": {"description": "invalid admin key"}}}},
    "/api/imports/latest": {"get": {"tags": ["import"], "summary": "Latest import run", "responses": {"200": {"description": "run"}, "404": {"description": "no runs"}}}},
    "/metrics": {"get": {"tags": ["metrics"], "summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "metrics"}}}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
