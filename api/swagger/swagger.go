package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Watchlist API",
        "description": "Personal movie watchlist: submit titles, track watch status and ratings, browse the archive",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Password gate and sessions"},
        {"name": "Movies", "description": "Watchlist entries"},
        {"name": "Export", "description": "Archive downloads"},
        {"name": "Observability", "description": "Health and counters"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Observability"],
                "summary": "Readiness check, pings the store",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Store unreachable"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange the password for a session token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid password", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Too many attempts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/session": {
            "get": {
                "tags": ["Auth"],
                "summary": "Describe the current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/movies": {
            "get": {
                "tags": ["Movies"],
                "summary": "List watchlist entries",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["newest", "oldest", "highest_rating", "lowest_rating"]},
                    {"name": "animated", "in": "query", "type": "string"},
                    {"name": "documentary", "in": "query", "type": "string"},
                    {"name": "movie", "in": "query", "type": "string"},
                    {"name": "reality", "in": "query", "type": "string"},
                    {"name": "series", "in": "query", "type": "string"},
                    {"name": "not_watched", "in": "query", "type": "string"},
                    {"name": "watching", "in": "query", "type": "string"},
                    {"name": "watched", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Movies"],
                "summary": "Add a title to the watchlist",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitMovieRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/movies/rating": {
            "patch": {
                "tags": ["Movies"],
                "summary": "Update watch status and rating by title",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RateMovieRequest"}}
                ],
                "responses": {
                    "204": {"description": "Updated"},
                    "400": {"description": "Validation error or unknown status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/stats": {
            "get": {
                "tags": ["Observability"],
                "summary": "Process counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/archive/export": {
            "get": {
                "tags": ["Export"],
                "summary": "Download the filtered archive",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string"}
            },
            "required": ["password"]
        },
        "SubmitMovieRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "maxLength": 300},
                "type": {"type": "string", "enum": ["animated", "documentary", "movie", "reality", "series"]},
                "description": {"type": "string", "maxLength": 5000},
                "name": {"type": "string", "maxLength": 120}
            },
            "required": ["title", "type"]
        },
        "RateMovieRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "rating": {"type": "string", "description": "0 to 5, only read when watched is watched"},
                "watched": {"type": "string", "enum": ["not_watched", "watching", "watched"]}
            },
            "required": ["title", "watched"]
        },
        "Movie": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "type": {"type": "string"},
                "description": {"type": "string"},
                "name": {"type": "string"},
                "submitted_on": {"type": "string", "format": "date-time"},
                "watched": {"type": "integer", "enum": [-1, 0, 1]},
                "rating": {"type": "number"},
                "watched_on": {"type": "string", "format": "date-time"},
                "updated_on": {"type": "string", "format": "date-time"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
