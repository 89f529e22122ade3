// Package docs registers the swagger description of the local API.
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
        "/status": {
            "get": {
                "tags": ["network"],
                "summary": "Network status",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StatusResponse"}},
                    "503": {"description": "Offline", "schema": {"$ref": "#/definitions/api.StatusResponse"}}
                }
            }
        },
        "/wallet": {
            "get": {
                "tags": ["wallet"],
                "summary": "Open wallet",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.WalletInfo"}},
                    "404": {"description": "No wallet open", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/wallet/create": {
            "post": {
                "tags": ["wallet"],
                "summary": "Create wallet",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.CreateRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/app.Created"}},
                    "400": {"description": "Bad password", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/wallet/import": {
            "post": {
                "tags": ["wallet"],
                "summary": "Import wallet",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.ImportRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/app.WalletInfo"}},
                    "400": {"description": "Bad phrase", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/wallet/unlock": {
            "post": {
                "tags": ["wallet"],
                "summary": "Open the stored wallet",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "schema": {"$ref": "#/definitions/api.PasswordRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.WalletInfo"}},
                    "401": {"description": "Wrong password", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "No wallet stored", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/wallet/logout": {
            "post": {"tags": ["wallet"], "summary": "Close the session", "responses": {"204": {"description": "No Content"}}}
        },
        "/wallet/forget": {
            "post": {"tags": ["wallet"], "summary": "Delete the stored wallet", "responses": {"204": {"description": "No Content"}}}
        },
        "/wallet/rename": {
            "post": {
                "tags": ["wallet"],
                "summary": "Rename wallet",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/api.RenameRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/app.WalletInfo"}}}
            }
        },
        "/wallet/backup": {
            "post": {
                "tags": ["wallet"],
                "summary": "Reveal the recovery phrase",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "schema": {"$ref": "#/definitions/api.PasswordRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Backup"}},
                    "401": {"description": "Wrong password", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/balance": {
            "get": {
                "tags": ["balance"],
                "summary": "Balance of the open wallet",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.BalanceResponse"}},
                    "502": {"description": "Upstream failure", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/price": {
            "get": {
                "tags": ["balance"],
                "summary": "Fiat rate",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.PriceResponse"}}}
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["balance"],
                "summary": "Balance, price and status in one call",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/receive": {
            "get": {
                "tags": ["wallet"],
                "summary": "Receive address",
                "produces": ["image/png", "application/json"],
                "parameters": [
                    {"type": "string", "description": "png (default) or json", "name": "format", "in": "query"},
                    {"type": "integer", "description": "PNG edge length in pixels", "name": "size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/send/max": {
            "get": {
                "tags": ["send"],
                "summary": "Largest sendable amount at the default fee",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.MaxResponse"}}}
            }
        },
        "/send/preview": {
            "post": {
                "tags": ["send"],
                "summary": "Validate a transfer",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/transfer.Request"}}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid transfer", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/send": {
            "post": {
                "tags": ["send"],
                "summary": "Send SEI",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/transfer.Request"}}],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid transfer", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "409": {"description": "Another send in progress", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "502": {"description": "Rejected or failed", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "code": {"type": "string"}, "txhash": {"type": "string"}}
        },
        "api.CreateRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "password": {"type": "string"}, "confirm": {"type": "string"}}
        },
        "api.ImportRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "phrase": {"type": "string"}, "password": {"type": "string"}}
        },
        "api.PasswordRequest": {
            "type": "object",
            "properties": {"password": {"type": "string"}}
        },
        "api.RenameRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}}
        },
        "api.StatusResponse": {
            "type": "object",
            "properties": {"chain_id": {"type": "string"}, "status": {"type": "object"}}
        },
        "api.BalanceResponse": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "balance": {"type": "string"},
                "denom": {"type": "string"},
                "native": {"type": "string"},
                "fiat_value": {"type": "number"},
                "currency": {"type": "string"}
            }
        },
        "api.PriceResponse": {
            "type": "object",
            "properties": {"rate": {"type": "number"}, "currency": {"type": "string"}}
        },
        "api.MaxResponse": {
            "type": "object",
            "properties": {"amount": {"type": "string"}, "denom": {"type": "string"}}
        },
        "app.WalletInfo": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "address": {"type": "string"},
                "chain_id": {"type": "string"},
                "encrypted": {"type": "boolean"},
                "created_at": {"type": "string"},
                "imported_at": {"type": "string"},
                "address_mismatch": {"type": "boolean"}
            }
        },
        "app.Created": {
            "type": "object",
            "properties": {"wallet": {"$ref": "#/definitions/app.WalletInfo"}, "phrase": {"type": "string"}}
        },
        "app.Backup": {
            "type": "object",
            "properties": {"address": {"type": "string"}, "phrase": {"type": "string"}, "words": {"type": "array", "items": {"type": "string"}}}
        },
        "transfer.Request": {
            "type": "object",
            "properties": {
                "recipient": {"type": "string"},
                "amount": {"type": "string"},
                "tier": {"type": "string", "enum": ["low", "medium", "high"]},
                "memo": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Sei Wallet API",
	Description:      "Local API of the Sei wallet daemon.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
