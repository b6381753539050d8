package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "DataViz API",
        "description": "Spreadsheet upload, review and chart generation service",
        "version": "0.1.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Registration, login and profile"},
        {"name": "Files", "description": "Spreadsheet upload and review"},
        {"name": "Charts", "description": "Chart configurations over approved files"},
        {"name": "Admin Requests", "description": "Role promotion workflow"},
        {"name": "Users", "description": "Account administration"},
        {"name": "Stats", "description": "Role-scoped dashboards"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange credentials for a JWT",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current account profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or invalid token"}
                }
            }
        },
        "/files/upload": {
            "post": {
                "tags": ["Files"],
                "summary": "Upload a spreadsheet (.csv, .xls, .xlsx)",
                "consumes": ["multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created, pending review"},
                    "400": {"description": "Unsupported type, too large or unparseable"}
                }
            }
        },
        "/files": {
            "get": {
                "tags": ["Files"],
                "summary": "List files visible to the caller",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/files/pending": {
            "get": {
                "tags": ["Files"],
                "summary": "List files awaiting review (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Admin role required"}
                }
            }
        },
        "/files/{id}": {
            "get": {
                "tags": ["Files"],
                "summary": "Fetch a file with its parsed rows",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not the owner"},
                    "404": {"description": "Unknown file"}
                }
            }
        },
        "/files/{id}/export": {
            "get": {
                "tags": ["Files"],
                "summary": "Download the parsed rows as CSV",
                "produces": ["text/csv"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "CSV attachment"},
                    "404": {"description": "Unknown file"}
                }
            }
        },
        "/files/{id}/approve": {
            "patch": {
                "tags": ["Files"],
                "summary": "Approve a pending file (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Approved"},
                    "404": {"description": "Unknown file"},
                    "409": {"description": "Already reviewed"}
                }
            }
        },
        "/files/{id}/reject": {
            "patch": {
                "tags": ["Files"],
                "summary": "Reject a pending file (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Rejected"},
                    "404": {"description": "Unknown file"},
                    "409": {"description": "Already reviewed"}
                }
            }
        },
        "/charts": {
            "post": {
                "tags": ["Charts"],
                "summary": "Create a chart over an approved file",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateChartRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid type, axis or unapproved file"},
                    "404": {"description": "Unknown file"}
                }
            },
            "get": {
                "tags": ["Charts"],
                "summary": "List the caller's charts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/charts/file/{fileId}": {
            "get": {
                "tags": ["Charts"],
                "summary": "List charts built on one file",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "fileId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not the owner"},
                    "404": {"description": "Unknown file"}
                }
            }
        },
        "/admin-requests": {
            "post": {
                "tags": ["Admin Requests"],
                "summary": "Request promotion to admin",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAdminRequestPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Caller is not a standard user"}
                }
            }
        },
        "/admin-requests/pending": {
            "get": {
                "tags": ["Admin Requests"],
                "summary": "List pending promotion requests (superadmin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Superadmin role required"}
                }
            }
        },
        "/admin-requests/{id}/approve": {
            "patch": {
                "tags": ["Admin Requests"],
                "summary": "Approve a promotion request (superadmin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Approved, requester promoted"},
                    "404": {"description": "Unknown request"},
                    "409": {"description": "Already reviewed"}
                }
            }
        },
        "/admin-requests/{id}/deny": {
            "patch": {
                "tags": ["Admin Requests"],
                "summary": "Deny a promotion request (superadmin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Denied"},
                    "404": {"description": "Unknown request"},
                    "409": {"description": "Already reviewed"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List accounts (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Admin role required"}
                }
            }
        },
        "/users/{id}/role": {
            "patch": {
                "tags": ["Users"],
                "summary": "Change an account role (superadmin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateRoleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Role must be user or admin"},
                    "404": {"description": "Unknown account"}
                }
            }
        },
        "/stats/dashboard": {
            "get": {
                "tags": ["Stats"],
                "summary": "Per-user dashboard counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/stats/admin": {
            "get": {
                "tags": ["Stats"],
                "summary": "Platform counters (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Admin role required"}
                }
            }
        },
        "/stats/superadmin": {
            "get": {
                "tags": ["Stats"],
                "summary": "Governance counters (superadmin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Superadmin role required"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "name"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "name": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateChartRequest": {
            "type": "object",
            "required": ["fileId", "title", "type", "xAxis", "yAxis"],
            "properties": {
                "fileId": {"type": "string"},
                "title": {"type": "string"},
                "type": {"type": "string", "enum": ["bar", "line", "pie", "3d"]},
                "xAxis": {"type": "string"},
                "yAxis": {"type": "string"},
                "config": {"type": "object"}
            }
        },
        "CreateAdminRequestPayload": {
            "type": "object",
            "required": ["message"],
            "properties": {
                "message": {"type": "string"}
            }
        },
        "UpdateRoleRequest": {
            "type": "object",
            "required": ["role"],
            "properties": {
                "role": {"type": "string", "enum": ["user", "admin"]}
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
