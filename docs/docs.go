// Package docs registers the OpenAPI document served at /docs.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Consumer Insights"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/analytics/consumer/{consumerID}": {
            "get": {
                "description": "Returns the RFM score, purchase pattern and reorder prediction for a consumer. Consumers without orders get default scores.",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Analyze one consumer",
                "parameters": [
                    {"type": "integer", "description": "Consumer ID", "name": "consumerID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/behavior.ConsumerBehaviorScore"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/analytics/predictions": {
            "get": {
                "description": "Returns the full behavior analysis of every consumer in listing order.",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Analyze all consumers",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/behavior.ConsumerBehaviorScore"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/analytics/summary": {
            "get": {
                "description": "Buckets consumers by reorder probability and lists the ten most likely to reorder.",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Prediction summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/behavior.PredictionSummary"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/analytics/churn-risk": {
            "get": {
                "description": "Returns consumers whose churn risk is high, most recently active first.",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Churn risk consumers",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/behavior.ConsumerBehaviorScore"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/analytics/high-value-candidates": {
            "get": {
                "description": "Returns consumers with reorder probability above 0.60 and a monetary score of at least 4, most likely first.",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "High-value reorder candidates",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/behavior.ConsumerBehaviorScore"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "behavior.RFMScore": {
            "type": "object",
            "properties": {
                "recency": {"type": "integer"},
                "frequency": {"type": "integer"},
                "monetary": {"type": "number"},
                "recency_score": {"type": "integer"},
                "frequency_score": {"type": "integer"},
                "monetary_score": {"type": "integer"},
                "total_score": {"type": "integer"}
            }
        },
        "behavior.PurchasePattern": {
            "type": "object",
            "properties": {
                "average_days_between_orders": {"type": "number"},
                "preferred_categories": {"type": "array", "items": {"type": "string"}},
                "average_order_value": {"type": "number"},
                "order_status_distribution": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "behavior.ReorderPrediction": {
            "type": "object",
            "properties": {
                "probability": {"type": "number"},
                "confidence": {"type": "string", "enum": ["low", "medium", "high"]},
                "expected_days_until_next_order": {"type": "integer"},
                "risk_of_churn": {"type": "string", "enum": ["low", "medium", "high"]}
            }
        },
        "behavior.ConsumerBehaviorScore": {
            "type": "object",
            "properties": {
                "consumer_id": {"type": "integer"},
                "consumer_name": {"type": "string"},
                "rfm_score": {"$ref": "#/definitions/behavior.RFMScore"},
                "purchase_pattern": {"$ref": "#/definitions/behavior.PurchasePattern"},
                "reorder_prediction": {"$ref": "#/definitions/behavior.ReorderPrediction"}
            }
        },
        "behavior.RankedConsumer": {
            "type": "object",
            "properties": {
                "consumer_id": {"type": "integer"},
                "name": {"type": "string"},
                "probability": {"type": "number"}
            }
        },
        "behavior.PredictionSummary": {
            "type": "object",
            "properties": {
                "total_consumers": {"type": "integer"},
                "high_probability_reorders": {"type": "integer"},
                "medium_probability_reorders": {"type": "integer"},
                "low_probability_reorders": {"type": "integer"},
                "average_reorder_probability": {"type": "number"},
                "top_predicted_consumers": {"type": "array", "items": {"$ref": "#/definitions/behavior.RankedConsumer"}}
            }
        },
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/respond.ErrorBody"}
            }
        },
        "respond.ErrorBody": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "detail": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Consumer Insights API",
	Description:      "Consumer behavior analytics: RFM scoring, purchase patterns, reorder prediction, churn risk and high-value candidates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
