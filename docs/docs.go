// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/quizmaker/main.go -o docs
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
        "/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "List quiz categories",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.QuizCategory"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/config.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Create a quiz category",
                "parameters": [
                    {"description": "Category", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/category.CreateCategoryDTO"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.QuizCategory"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/config.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/config.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/config.ErrorResponse"}}
                }
            }
        },
        "/published-content": {
            "get": {
                "produces": ["application/json"],
                "tags": ["quizzes"],
                "summary": "List published quizzes grouped by category",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.CategoryWithQuizzes"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/config.ErrorResponse"}}
                }
            }
        },
        "/quizzes": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quizzes"],
                "summary": "Publish a quiz",
                "parameters": [
                    {"description": "Quiz", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.PublishRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.PublishResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/config.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/config.ErrorResponse"}}
                }
            }
        },
        "/quizzes/generate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quizzes"],
                "summary": "Generate a quiz for a category and title",
                "parameters": [
                    {"description": "Topic", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.GenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Quiz"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/config.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/config.ErrorResponse"}}
                }
            }
        },
        "/quizzes/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["quizzes"],
                "summary": "Get a published quiz with its questions",
                "parameters": [
                    {"type": "integer", "description": "Quiz ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Quiz"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/config.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/config.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/config.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "category.CreateCategoryDTO": {
            "type": "object",
            "properties": {"title": {"type": "string"}}
        },
        "config.ErrorResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "models.Answer": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "answer": {"type": "string"},
                "correct": {"type": "boolean"}
            }
        },
        "models.Question": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "question": {"type": "string"},
                "explanation": {"type": "string"},
                "answers": {"type": "array", "items": {"$ref": "#/definitions/models.Answer"}}
            }
        },
        "models.Quiz": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/models.Question"}}
            }
        },
        "models.QuizCategory": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"}
            }
        },
        "models.PublishedQuiz": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "create_date": {"type": "string", "example": "2025-01-01 12:00:00"}
            }
        },
        "models.CategoryWithQuizzes": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "quizzes": {"type": "array", "items": {"$ref": "#/definitions/models.PublishedQuiz"}}
            }
        },
        "models.PublishRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "categoryName": {"type": "string"},
                "questions": {"type": "array", "items": {"$ref": "#/definitions/models.Question"}}
            }
        },
        "models.PublishResult": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "quizId": {"type": "integer"},
                "createDate": {"type": "string", "example": "2025-01-01 12:00:00"}
            }
        },
        "models.GenerateRequest": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "title": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "AI Quiz Maker API",
	Description:      "Generate, publish and take multiple-choice quizzes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
