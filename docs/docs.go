package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Health check",
                "description": "Check if the server is running",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "Server is healthy"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["health"],
                "summary": "Readiness check",
                "description": "Check that the craft store can be read",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "Store is readable"
                    },
                    "503": {
                        "description": "Store is not readable"
                    }
                }
            }
        },
        "/crafts": {
            "get": {
                "tags": ["crafts"],
                "summary": "List crafts",
                "description": "Return every stored craft in insertion order",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/entities.Craft"
                            }
                        }
                    },
                    "500": {
                        "description": "Store could not be read",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            },
            "post": {
                "tags": ["crafts"],
                "summary": "Create a craft",
                "description": "Create a craft from a multipart form with an image file",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Craft name",
                        "name": "name",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Craft description",
                        "name": "description",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "array",
                        "items": {
                            "type": "string"
                        },
                        "collectionFormat": "multi",
                        "description": "Supplies",
                        "name": "supplies",
                        "in": "formData",
                        "required": true
                    },
                    {
                        "type": "file",
                        "description": "Craft image",
                        "name": "image",
                        "in": "formData",
                        "required": true
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/entities.Craft"
                        }
                    },
                    "400": {
                        "description": "Validation failed",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    },
                    "413": {
                        "description": "Image is too large",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Error adding craft",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/crafts/{id}": {
            "delete": {
                "tags": ["crafts"],
                "summary": "Delete a craft",
                "description": "Delete the first craft whose id matches",
                "produces": ["text/plain"],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Craft ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Craft deleted successfully",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "400": {
                        "description": "Invalid craft ID",
                        "schema": {
                            "$ref": "#/definitions/http.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Craft not found",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "entities.Craft": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string",
                    "example": "Origami Crane"
                },
                "image": {
                    "type": "string",
                    "example": "uploads/3f0c2a9e-crane.png"
                },
                "description": {
                    "type": "string"
                },
                "supplies": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string",
                    "example": "\"name\" is required"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Crafts API",
	Description:      "Craft gallery with image uploads",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
