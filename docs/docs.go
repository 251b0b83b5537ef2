// Package docs holds the Swagger description served at /swagger/. Keep it in
// step with the @Router annotations on the handlers (swag init -g cmd/server/main.go).
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
        "/": {
            "get": {
                "produces": ["text/html"],
                "tags": ["posts"],
                "summary": "List posts",
                "responses": {
                    "200": {"description": "OK"},
                    "302": {"description": "store failure, redirect to /", "schema": {"type": "string"}}
                }
            }
        },
        "/compose": {
            "get": {
                "produces": ["text/html"],
                "tags": ["posts"],
                "summary": "Compose form",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "tags": ["posts"],
                "summary": "Create a post",
                "parameters": [
                    {"type": "string", "description": "Post title", "name": "title", "in": "formData"},
                    {"type": "string", "description": "Post body (markdown)", "name": "description", "in": "formData"},
                    {"type": "string", "description": "Cover image URL", "name": "imageUrl", "in": "formData"}
                ],
                "responses": {
                    "302": {"description": "redirect to /", "schema": {"type": "string"}}
                }
            }
        },
        "/post/{id}": {
            "get": {
                "produces": ["text/html"],
                "tags": ["posts"],
                "summary": "View a post",
                "parameters": [
                    {"type": "string", "description": "Post ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "302": {"description": "unknown id or store failure, redirect to /", "schema": {"type": "string"}}
                }
            }
        },
        "/post/delete/{id}": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["posts"],
                "summary": "Delete a post",
                "parameters": [
                    {"type": "string", "description": "Post ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "302": {"description": "redirect to /", "schema": {"type": "string"}},
                    "404": {"description": "Blog post not found", "schema": {"type": "string"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "string"}}
                }
            },
            "post": {
                "produces": ["text/plain"],
                "tags": ["posts"],
                "summary": "Delete a post",
                "parameters": [
                    {"type": "string", "description": "Post ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "302": {"description": "redirect to /", "schema": {"type": "string"}},
                    "404": {"description": "Blog post not found", "schema": {"type": "string"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "string"}}
                }
            }
        },
        "/signup": {
            "get": {
                "produces": ["text/html"],
                "tags": ["accounts"],
                "summary": "Signup form",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "tags": ["accounts"],
                "summary": "Create an account",
                "parameters": [
                    {"type": "string", "description": "Email", "name": "email", "in": "formData"},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData"}
                ],
                "responses": {
                    "302": {"description": "redirect to /login on success, /signup otherwise", "schema": {"type": "string"}}
                }
            }
        },
        "/login": {
            "get": {
                "produces": ["text/html"],
                "tags": ["accounts"],
                "summary": "Login form",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "tags": ["accounts"],
                "summary": "Log in",
                "parameters": [
                    {"type": "string", "description": "Email", "name": "email", "in": "formData"},
                    {"type": "string", "description": "Password", "name": "password", "in": "formData"}
                ],
                "responses": {
                    "302": {"description": "redirect to / on success, /login otherwise", "schema": {"type": "string"}}
                }
            }
        },
        "/about": {
            "get": {
                "produces": ["text/html"],
                "tags": ["pages"],
                "summary": "About page",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/contact": {
            "get": {
                "produces": ["text/html"],
                "tags": ["pages"],
                "summary": "Contact page",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "dependencies": {
                    "type": "object",
                    "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}
                },
                "status": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Daily Journal",
	Description:      "Server-rendered blog: post catalog, accounts and static pages.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
