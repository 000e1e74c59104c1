// Package docs holds the generated OpenAPI document served at /swagger/doc.json.
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
        "/voting-process": {
            "get": {
                "produces": ["application/json"],
                "tags": ["voting-process"],
                "summary": "List voting processes",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.ProcessListResponse"}
                    }
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["voting-process"],
                "summary": "Create a voting process",
                "parameters": [
                    {
                        "description": "process definition",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.CreateProcessRequest"}
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {"$ref": "#/definitions/http.CreateProcessResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        },
        "/voting-process/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["voting-process"],
                "summary": "Get voting process detail",
                "parameters": [
                    {
                        "type": "string",
                        "description": "voting process id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.ProcessResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        },
        "/voting-process/{id}/start": {
            "put": {
                "produces": ["application/json"],
                "tags": ["voting-process"],
                "summary": "Start a voting process",
                "parameters": [
                    {
                        "type": "string",
                        "description": "voting process id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.ProcessResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        },
        "/voting-process/{id}/close": {
            "put": {
                "produces": ["application/json"],
                "tags": ["voting-process"],
                "summary": "Close a voting process",
                "parameters": [
                    {
                        "type": "string",
                        "description": "voting process id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.ProcessResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        },
        "/submitResult": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["submissions"],
                "summary": "Submit a witness result",
                "parameters": [
                    {
                        "description": "witness submission",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.SubmitResultRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.SubmitResultResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        },
        "/getTally/{votingProcessId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tally"],
                "summary": "Get the live tally for a voting process",
                "parameters": [
                    {
                        "type": "string",
                        "description": "voting process id",
                        "name": "votingProcessId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/http.TallyResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/http.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "http.CandidatePayload": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "http.CreateProcessRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "position": {"type": "string"},
                "candidates": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/http.CandidatePayload"}
                },
                "pollingStations": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            }
        },
        "http.CreateProcessResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "voting_process": {"$ref": "#/definitions/http.ProcessResponse"},
                "message": {"type": "string"}
            }
        },
        "http.ProcessResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "position": {"type": "string"},
                "candidates": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/http.CandidatePayload"}
                },
                "pollingStations": {
                    "type": "array",
                    "items": {"type": "string"}
                },
                "status": {"type": "string"},
                "createdAt": {"type": "string"},
                "startedAt": {"type": "string"},
                "closedAt": {"type": "string"}
            }
        },
        "http.ProcessListResponse": {
            "type": "object",
            "properties": {
                "processes": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/http.ProcessResponse"}
                }
            }
        },
        "http.GPSPayload": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
            }
        },
        "http.SubmitResultRequest": {
            "type": "object",
            "properties": {
                "walletAddress": {"type": "string"},
                "pollingStationId": {"type": "string"},
                "gpsCoordinates": {"$ref": "#/definitions/http.GPSPayload"},
                "timestamp": {"type": "string"},
                "results": {
                    "type": "object",
                    "additionalProperties": {"type": "integer"}
                },
                "submissionType": {"type": "string"},
                "confidence": {"type": "number"}
            }
        },
        "http.ConsensusStatus": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "http.SubmitResultResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "submission_id": {"type": "string"},
                "message": {"type": "string"},
                "consensus": {"$ref": "#/definitions/http.ConsensusStatus"}
            }
        },
        "http.StationTallyPayload": {
            "type": "object",
            "properties": {
                "pollingStationId": {"type": "string"},
                "status": {"type": "string"},
                "results": {
                    "type": "object",
                    "additionalProperties": {"type": "integer"}
                },
                "confidenceLevel": {"type": "number"},
                "witnessCount": {"type": "integer"}
            }
        },
        "http.TallyResponse": {
            "type": "object",
            "properties": {
                "votingProcess": {"$ref": "#/definitions/http.ProcessResponse"},
                "aggregatedTally": {
                    "type": "object",
                    "additionalProperties": {"type": "integer"}
                },
                "pollingStations": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/http.StationTallyPayload"}
                },
                "verifiedCount": {"type": "integer"},
                "pendingCount": {"type": "integer"},
                "lastUpdated": {"type": "string"}
            }
        },
        "http.FieldDetail": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"},
                "details": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/http.FieldDetail"}
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "OYA Witness Consensus API",
	Description:      "Witness-consensus and live tally service for election observation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
