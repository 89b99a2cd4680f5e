// Package docs registra el documento OpenAPI que sirve /swagger/.
// Sigue las anotaciones de internal/infrastructure/web/handlers; se regenera con
// `swag init -g cmd/api/main.go`.
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
                "tags": ["health"],
                "summary": "Basic health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "description": "Runs every registered dependency check.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/api/v1/coins": {
            "get": {
                "produces": ["application/json"],
                "tags": ["coins"],
                "summary": "Market page",
                "parameters": [
                    {"type": "string", "default": "usd", "description": "Quote currency", "name": "currency", "in": "query"},
                    {"type": "integer", "default": 50, "description": "Page size", "name": "per_page", "in": "query"},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "boolean", "description": "Bypass the cache", "name": "force", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CoinsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/coins/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["coins"],
                "summary": "Acquisition status of a market page",
                "parameters": [
                    {"type": "string", "default": "usd", "description": "Quote currency", "name": "currency", "in": "query"},
                    {"type": "integer", "default": 50, "description": "Page size", "name": "per_page", "in": "query"},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CoinStatusResponse"}}
                }
            }
        },
        "/api/v1/coins/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["coins"],
                "summary": "Coin detail",
                "parameters": [
                    {"type": "string", "description": "Coin id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "default": "usd", "description": "Quote currency", "name": "currency", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CoinDetailResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/coins/{id}/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["coins"],
                "summary": "Coin price history",
                "parameters": [
                    {"type": "string", "description": "Coin id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "default": "usd", "description": "Quote currency", "name": "currency", "in": "query"},
                    {"type": "integer", "default": 30, "description": "Days back", "name": "days", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CoinHistoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/global": {
            "get": {
                "produces": ["application/json"],
                "tags": ["coins"],
                "summary": "Global market stats",
                "parameters": [
                    {"type": "string", "default": "usd", "description": "Quote currency", "name": "currency", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.GlobalStatsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/favorites": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "Favorites of the session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.FavoritesResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "Remove every favorite",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.FavoriteMutationResponse"}}
                }
            }
        },
        "/api/v1/favorites/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["favorites"],
                "summary": "Favorite change events over WebSocket",
                "parameters": [
                    {"type": "string", "description": "Bearer token for clients that cannot set headers", "name": "access_token", "in": "query"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"}
                }
            }
        },
        "/api/v1/favorites/{coinId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "Whether a coin is a favorite",
                "parameters": [
                    {"type": "string", "description": "Coin id", "name": "coinId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.FavoriteStatusResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "Add a favorite",
                "parameters": [
                    {"type": "string", "description": "Coin id", "name": "coinId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.FavoriteMutationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "Remove a favorite",
                "parameters": [
                    {"type": "string", "description": "Coin id", "name": "coinId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.FavoriteMutationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/favorites/{coinId}/toggle": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["favorites"],
                "summary": "Toggle a favorite",
                "parameters": [
                    {"type": "string", "description": "Coin id", "name": "coinId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.FavoriteMutationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.CoinData": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "symbol": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "string"},
                "change24h": {"type": "string"},
                "marketCap": {"type": "string"},
                "volume24h": {"type": "string"},
                "image": {"type": "string"},
                "high24h": {"type": "string"},
                "low24h": {"type": "string"},
                "circulatingSupply": {"type": "string"},
                "totalSupply": {"type": "string"}
            }
        },
        "dto.CoinsResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/dto.CoinData"}},
                "currency": {"type": "string"},
                "per_page": {"type": "integer"},
                "page": {"type": "integer"},
                "source": {"type": "string"},
                "cached": {"type": "boolean"},
                "fetched_at": {"type": "string"},
                "soft_error": {"type": "string"}
            }
        },
        "dto.CoinStatusResponse": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "fetching": {"type": "boolean"},
                "soft_error": {"type": "string"}
            }
        },
        "dto.CoinDetailResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "symbol": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "string"},
                "change24h": {"type": "string"},
                "marketCap": {"type": "string"},
                "volume24h": {"type": "string"},
                "image": {"type": "string"},
                "high24h": {"type": "string"},
                "low24h": {"type": "string"},
                "circulatingSupply": {"type": "string"},
                "totalSupply": {"type": "string"},
                "description": {"type": "string"},
                "homepage": {"type": "string"},
                "rank": {"type": "integer"},
                "categories": {"type": "array", "items": {"type": "string"}},
                "currency": {"type": "string"},
                "soft_error": {"type": "string"}
            }
        },
        "dto.PricePointData": {
            "type": "object",
            "properties": {
                "time": {"type": "integer"},
                "price": {"type": "string"}
            }
        },
        "dto.CoinHistoryResponse": {
            "type": "object",
            "properties": {
                "coin_id": {"type": "string"},
                "currency": {"type": "string"},
                "days": {"type": "integer"},
                "prices": {"type": "array", "items": {"$ref": "#/definitions/dto.PricePointData"}},
                "soft_error": {"type": "string"}
            }
        },
        "dto.GlobalStatsResponse": {
            "type": "object",
            "properties": {
                "currency": {"type": "string"},
                "totalMarketCap": {"type": "string"},
                "totalVolume": {"type": "string"},
                "btcDominance": {"type": "string"},
                "marketCapChange24h": {"type": "string"},
                "activeCryptocurrencies": {"type": "integer"},
                "soft_error": {"type": "string"}
            }
        },
        "dto.FavoritesResponse": {
            "type": "object",
            "properties": {
                "favorites": {"type": "array", "items": {"type": "string"}},
                "count": {"type": "integer"}
            }
        },
        "dto.FavoriteStatusResponse": {
            "type": "object",
            "properties": {
                "coin_id": {"type": "string"},
                "favorite": {"type": "boolean"}
            }
        },
        "dto.FavoriteMutationResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "coin_id": {"type": "string"},
                "favorite": {"type": "boolean"},
                "count": {"type": "integer"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "services": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
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
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Coin Market Service API",
	Description:      "Crypto market data with provider fallback and per-session favorites.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
