// Package docs Shortly API documentation for swag / http-swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/http.HealthResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/links": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Links"],
                "summary": "List links",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.LinkResponse"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the existing link for an already shortened URL",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Links"],
                "summary": "Shorten a URL",
                "parameters": [
                    {
                        "description": "URL to shorten",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.CreateLinkRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Link already existed", "schema": {"$ref": "#/definitions/http.LinkResponse"}},
                    "201": {"description": "Link created", "schema": {"$ref": "#/definitions/http.LinkResponse"}},
                    "400": {"description": "Invalid URL", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "422": {"description": "Page title could not be fetched", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/links/{code}/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Links"],
                "summary": "Link statistics",
                "parameters": [
                    {"type": "string", "description": "Short code", "name": "code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.StatsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/{code}": {
            "get": {
                "description": "Unknown codes redirect to the index page",
                "tags": ["Redirect"],
                "summary": "Follow a short link",
                "parameters": [
                    {"type": "string", "description": "Short code", "name": "code", "in": "path", "required": true}
                ],
                "responses": {"302": {"description": "Found"}}
            }
        }
    },
    "definitions": {
        "http.CreateLinkRequest": {
            "type": "object",
            "properties": {"url": {"type": "string"}}
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "http.HealthResponse": {
            "type": "object",
            "properties": {
                "analytics": {"type": "object", "additionalProperties": true},
                "database_status": {"type": "string"},
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "http.LinkResponse": {
            "type": "object",
            "properties": {
                "base_url": {"type": "string"},
                "code": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "integer"},
                "short_url": {"type": "string"},
                "title": {"type": "string"},
                "updated_at": {"type": "string"},
                "url": {"type": "string"},
                "visits": {"type": "integer"}
            }
        },
        "http.StatsResponse": {
            "type": "object",
            "properties": {
                "clicks": {"type": "integer"},
                "clicks_by_device": {"type": "object", "additionalProperties": {"type": "integer"}},
                "link": {"$ref": "#/definitions/http.LinkResponse"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Authorization header. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Shortly API",
	Description:      "URL shortener: link registry and redirect resolver.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
