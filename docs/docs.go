// Package docs registers the OpenAPI document served under /swagger.
// Keep it in step with the handler annotations.
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
                "summary": "Log in an operator",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an operator (admin role needs operators:manage)",
                "parameters": [
                    {"description": "Operator", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
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
        "/v1/normalize": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["trackings"],
                "summary": "Summarize a raw provider record without storing it",
                "parameters": [
                    {"description": "Raw provider record", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}},
                    {"enum": ["any", "import_filtered"], "type": "string", "description": "Leg filter", "name": "mode", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.previewResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/operators": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create an operator of any role (operators:manage)",
                "parameters": [
                    {"description": "Operator", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/test/webhook": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["webhooks"],
                "summary": "Inject a signed sample webhook",
                "parameters": [
                    {"description": "Tracking number", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.sampleWebhookRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.webhookAck"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/trackings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["trackings"],
                "summary": "List stored customs summaries",
                "parameters": [
                    {"enum": ["UNKNOWN", "PRE_CUSTOMS", "IN_PROGRESS", "CLEARED"], "type": "string", "name": "status", "in": "query"},
                    {"type": "string", "description": "Tracking number prefix", "name": "search", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.listTrackingsResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["trackings"],
                "summary": "Register tracking numbers with the provider",
                "parameters": [
                    {"description": "Tracking numbers", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.trackingNumbersRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.registerResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/trackings/push": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["trackings"],
                "summary": "Ask the provider to re-push tracking numbers",
                "parameters": [
                    {"description": "Tracking numbers", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.trackingNumbersRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handler.acceptedResponse"}}
                }
            }
        },
        "/v1/trackings/{number}/customs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["trackings"],
                "summary": "Customs summary and timeline of a tracking number",
                "parameters": [
                    {"type": "string", "name": "number", "in": "path", "required": true},
                    {"enum": ["any", "import_filtered"], "type": "string", "name": "mode", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.customsRecordResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/trackings/{number}/provider": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["trackings"],
                "summary": "Fetch and summarize the live provider record",
                "parameters": [
                    {"type": "string", "name": "number", "in": "path", "required": true},
                    {"enum": ["any", "import_filtered"], "type": "string", "name": "mode", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.previewResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/trackings/{number}/refresh": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["trackings"],
                "summary": "Pull the provider record and merge it now",
                "parameters": [
                    {"type": "string", "name": "number", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.refreshResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/webhooks/17track": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["webhooks"],
                "summary": "Receive a provider webhook",
                "parameters": [
                    {"type": "string", "description": "Webhook signature", "name": "sign", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "event skipped", "schema": {"$ref": "#/definitions/handler.webhookAck"}},
                    "202": {"description": "event queued", "schema": {"$ref": "#/definitions/handler.webhookAck"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.acceptedResponse": {"type": "object", "properties": {"message": {"type": "string"}, "count": {"type": "integer"}}},
        "handler.authResponse": {"type": "object", "properties": {"token": {"type": "string"}, "operator": {"type": "object"}}},
        "handler.customsRecordResponse": {"type": "object"},
        "handler.errorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "handler.listTrackingsResponse": {"type": "object"},
        "handler.loginRequest": {"type": "object", "required": ["username", "password"], "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "handler.previewResponse": {"type": "object"},
        "handler.readinessResponse": {"type": "object"},
        "handler.refreshResponse": {"type": "object"},
        "handler.registerRequest": {"type": "object", "required": ["username", "password"], "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string", "enum": ["admin", "operator"]}}},
        "handler.registerResponse": {"type": "object"},
        "handler.sampleWebhookRequest": {"type": "object", "required": ["number"], "properties": {"number": {"type": "string"}, "event": {"type": "string", "enum": ["TRACKING_UPDATED", "TRACKING_STOPPED"]}}},
        "handler.trackingNumbersRequest": {"type": "object", "required": ["numbers"], "properties": {"numbers": {"type": "array", "items": {"type": "string"}}}},
        "handler.webhookAck": {"type": "object", "properties": {"ok": {"type": "boolean"}, "skipped": {"type": "string"}, "number": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Customs Tracking API",
	Description:      "Customs-clearance tracking built on provider webhooks and polling.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
