// Package docs holds the Swagger 2.0 document served under /swagger/*. It is
// kept in step with the handler annotations by hand.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
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
        },
        "/v1/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Get own profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.UserView"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Delete own account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.successResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "description": "Shallow-merges the submitted fields. Security fields and skill sets are rejected.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Edit own profile",
                "parameters": [
                    {"description": "Fields to update (firstName, lastName, phone, email, accountType)", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.UserView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/users/me/phone/confirm": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Confirm phone verification code",
                "parameters": [
                    {"description": "Six digit code", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.confirmPhoneRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.UserView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/users/me/phone/verification": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Send phone verification code",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/users/me/regions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["skills"],
                "summary": "List available regions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.regionsResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/users/me/skills": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["skills"],
                "summary": "Add skills",
                "parameters": [
                    {"description": "Specialties and regions to add", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.addSkillsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.UserView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/users/me/skills/region": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["skills"],
                "summary": "Remove a region",
                "parameters": [
                    {"description": "Region to remove", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.removeRegionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.UserView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/users/me/skills/specialty": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["skills"],
                "summary": "Remove a specialty",
                "parameters": [
                    {"description": "Specialty to remove", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.removeSpecialtyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.UserView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/users/me/specialties": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["skills"],
                "summary": "List available specialties",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.specialtiesResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/users/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "The first word matches first names, the last word (if any) last names, case-insensitively.",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Search users by name",
                "parameters": [
                    {"type": "string", "description": "Name to search for", "name": "name", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.UserName"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/users/{id}/rating": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Rate an agronomist",
                "parameters": [
                    {"type": "string", "description": "Agronomist id", "name": "id", "in": "path", "required": true},
                    {"description": "Score from 1 to 5", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.rateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.successResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get a user by id",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.UserView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.UserName": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "id": {"type": "string"},
                "lastName": {"type": "string"}
            }
        },
        "domain.UserView": {
            "type": "object",
            "properties": {
                "accountType": {"type": "string"},
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "firstName": {"type": "string"},
                "id": {"type": "string"},
                "lastName": {"type": "string"},
                "phone": {"type": "string"},
                "phoneVerified": {"type": "boolean"},
                "regions": {"type": "array", "items": {"type": "string"}},
                "specialties": {"type": "array", "items": {"type": "string"}},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.addSkillsRequest": {
            "type": "object",
            "properties": {
                "regions": {"type": "array", "items": {"type": "string"}},
                "specialties": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.authResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.UserView"}
            }
        },
        "handler.confirmPhoneRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string"}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.messageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "handler.rateRequest": {
            "type": "object",
            "required": ["score"],
            "properties": {
                "score": {"type": "integer", "minimum": 1, "maximum": 5}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}},
                "status": {"type": "string"}
            }
        },
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handler.regionsResponse": {
            "type": "object",
            "properties": {
                "regions": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.removeRegionRequest": {
            "type": "object",
            "properties": {
                "region": {"type": "string"}
            }
        },
        "handler.removeSpecialtyRequest": {
            "type": "object",
            "properties": {
                "specialty": {"type": "string"}
            }
        },
        "handler.specialtiesResponse": {
            "type": "object",
            "properties": {
                "specialties": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.successResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Infield User Service",
	Description:      "Profile management, user directory and phone verification for the Infield app.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
