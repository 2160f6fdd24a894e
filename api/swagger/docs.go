// Package swagger registers the OpenAPI document served at /swagger. It is maintained by hand
// alongside the handler annotations.
package swagger

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
        "/api/adjustments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["adjustments"],
                "summary": "Get adjustments",
                "parameters": [
                    {"type": "string", "description": "Business id", "name": "business_id", "in": "query", "required": true},
                    {"type": "string", "description": "Tax year (YYYY-YY)", "name": "tax_year", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["adjustments"],
                "summary": "Create adjustment",
                "parameters": [
                    {"description": "Adjustment Payload", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.CreateAdjustmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/audit-logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "Get audit logs",
                "parameters": [
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Number of items per page (default 20)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/businesses": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["obligations"],
                "summary": "Get businesses",
                "parameters": [
                    {"type": "string", "description": "HMRC OAuth access token", "name": "X-Hmrc-Token", "in": "header", "required": true},
                    {"type": "string", "description": "Registered device id", "name": "X-Device-Id", "in": "header", "required": true},
                    {"type": "string", "description": "National Insurance number", "name": "nino", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/calendar/{taxYear}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["calendar"],
                "summary": "Tax year calendar",
                "parameters": [
                    {"type": "string", "description": "Tax year (YYYY-YY)", "name": "taxYear", "in": "path", "required": true},
                    {"type": "string", "description": "standard or calendar", "name": "kind", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/devices": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Register device",
                "parameters": [
                    {"description": "Device Payload", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.RegisterDeviceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/filings/cumulative": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["filings"],
                "summary": "Retrieve cumulative summary",
                "parameters": [
                    {"type": "string", "description": "HMRC OAuth access token", "name": "X-Hmrc-Token", "in": "header", "required": true},
                    {"type": "string", "description": "Registered device id", "name": "X-Device-Id", "in": "header", "required": true},
                    {"type": "string", "description": "National Insurance number", "name": "nino", "in": "query", "required": true},
                    {"type": "string", "description": "Business id", "name": "business_id", "in": "query", "required": true},
                    {"type": "string", "description": "self-employment, uk-property or foreign-property", "name": "business_type", "in": "query", "required": true},
                    {"type": "string", "description": "Tax year (YYYY-YY)", "name": "tax_year", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/filings/history": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["filings"],
                "summary": "Submission history",
                "parameters": [
                    {"type": "string", "description": "Filter by business id", "name": "business_id", "in": "query"},
                    {"type": "string", "description": "Filter by tax year (YYYY-YY)", "name": "tax_year", "in": "query"},
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Number of items per page (default 20)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/filings/preview": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["filings"],
                "summary": "Preview a quarterly filing",
                "parameters": [
                    {"description": "Filing Payload", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.FilingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/filings/submit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["filings"],
                "summary": "Submit a quarterly filing",
                "parameters": [
                    {"type": "string", "description": "HMRC OAuth access token", "name": "X-Hmrc-Token", "in": "header", "required": true},
                    {"type": "string", "description": "Registered device id", "name": "X-Device-Id", "in": "header", "required": true},
                    {"description": "Filing Payload", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.FilingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.Response"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/response.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/obligations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["obligations"],
                "summary": "Get obligations",
                "parameters": [
                    {"type": "string", "description": "HMRC OAuth access token", "name": "X-Hmrc-Token", "in": "header", "required": true},
                    {"type": "string", "description": "Registered device id", "name": "X-Device-Id", "in": "header", "required": true},
                    {"type": "string", "description": "National Insurance number", "name": "nino", "in": "query", "required": true},
                    {"type": "string", "description": "From date (YYYY-MM-DD)", "name": "from", "in": "query"},
                    {"type": "string", "description": "To date (YYYY-MM-DD)", "name": "to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/tax/estimate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tax"],
                "summary": "Estimate tax",
                "parameters": [
                    {"description": "Estimate Payload", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.TaxEstimateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/tax/years": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tax"],
                "summary": "Supported tax years",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "response.Response": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "status_code": {"type": "integer"},
                "data": {},
                "error": {"type": "string"}
            }
        },
        "service.CreateAdjustmentRequest": {"type": "object"},
        "service.FilingRequest": {"type": "object"},
        "service.RegisterDeviceRequest": {"type": "object"},
        "service.TaxEstimateRequest": {"type": "object"}
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	Title:            "MTD Income Tax API",
	Description:      "Quarterly Making Tax Digital filing for self-employment and property income.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
