// Package docs registers the OpenAPI document served under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/health": {"get": {"tags": ["health"], "summary": "Dependency health", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/healthz": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/session": {
            "post": {"tags": ["session"], "summary": "Log in or register",
                "parameters": [
                    {"name": "register", "in": "query", "type": "boolean"},
                    {"name": "credentials", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.Credentials"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/service.Session"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}}}},
            "get": {"tags": ["session"], "summary": "Current user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.User"}}, "401": {"description": "Unauthorized"}}},
            "delete": {"tags": ["session"], "summary": "Log out", "responses": {"204": {"description": "No Content"}}}
        },
        "/share/{token}": {"get": {"tags": ["share"], "summary": "Shared medical history",
            "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Snapshot"}}, "401": {"description": "Unauthorized"}}}},
        "/api/events": {
            "get": {"tags": ["events"], "summary": "Filter timeline events",
                "parameters": [{"name": "q", "in": "query", "type": "string"}, {"name": "type", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.TimelineEvent"}}}}},
            "post": {"tags": ["events"], "summary": "Add a timeline event", "consumes": ["application/json", "multipart/form-data"],
                "parameters": [{"name": "file", "in": "formData", "type": "file"}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/model.TimelineEvent"}}, "400": {"description": "Bad Request"}}}
        },
        "/api/events/{id}": {
            "put": {"tags": ["events"], "summary": "Update a timeline event", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["events"], "summary": "Delete a timeline event", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/documents": {"get": {"tags": ["documents"], "summary": "List documents", "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.MedicalDocument"}}}}}},
        "/api/documents/{id}": {
            "get": {"tags": ["documents"], "summary": "Get document metadata", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["documents"], "summary": "Delete a document", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/documents/{id}/content": {"get": {"tags": ["documents"], "summary": "Download a document", "produces": ["application/octet-stream"], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/api/documents/{id}/link": {"get": {"tags": ["documents"], "summary": "Presigned download link", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "expiry", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}, "501": {"description": "Not Implemented"}}}},
        "/api/documents/{id}/summary": {"post": {"tags": ["documents"], "summary": "Summarize a document", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}, "415": {"description": "Unsupported Media Type"}, "502": {"description": "Bad Gateway"}}}},
        "/api/appointments": {
            "get": {"tags": ["appointments"], "summary": "List appointments", "parameters": [{"name": "upcoming", "in": "query", "type": "boolean"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Appointment"}}}}},
            "post": {"tags": ["appointments"], "summary": "Add an appointment", "parameters": [{"name": "appointment", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.AppointmentDraft"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/api/appointments/upcoming": {"get": {"tags": ["appointments"], "summary": "Upcoming appointments", "responses": {"200": {"description": "OK"}}}},
        "/api/appointments/{id}": {
            "put": {"tags": ["appointments"], "summary": "Update an appointment", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "appointment", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.AppointmentDraft"}}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["appointments"], "summary": "Delete an appointment", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/stats": {"get": {"tags": ["dashboard"], "summary": "Dashboard counters", "responses": {"200": {"description": "OK"}}}},
        "/api/notifications": {
            "get": {"tags": ["notifications"], "summary": "Notification status", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["notifications"], "summary": "Enable or disable reminders", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/notifications/permission": {"put": {"tags": ["notifications"], "summary": "Report notification permission", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/share": {"post": {"tags": ["share"], "summary": "Create a share link", "responses": {"201": {"description": "Created"}}}}
    },
    "definitions": {
        "handler.errorPayload": {"type": "object", "properties": {"request_id": {"type": "string"}, "error": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}}}},
        "auth.Credentials": {"type": "object", "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}},
        "model.User": {"type": "object", "properties": {"name": {"type": "string"}}},
        "service.Session": {"type": "object", "properties": {"token": {"type": "string"}, "expires_at": {"type": "string"}, "user": {"$ref": "#/definitions/model.User"}}},
        "service.Snapshot": {"type": "object", "properties": {"owner": {"type": "string"}, "events": {"type": "array", "items": {"$ref": "#/definitions/model.TimelineEvent"}}, "documents": {"type": "array", "items": {"$ref": "#/definitions/model.MedicalDocument"}}, "appointments": {"type": "array", "items": {"$ref": "#/definitions/model.Appointment"}}, "expires_at": {"type": "string"}}},
        "model.TimelineEvent": {"type": "object", "properties": {"id": {"type": "string"}, "date": {"type": "string"}, "type": {"type": "string", "enum": ["Appointment", "Exam", "Prescription", "Note"]}, "title": {"type": "string"}, "description": {"type": "string"}, "document_id": {"type": "string"}}},
        "model.MedicalDocument": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "content_type": {"type": "string"}, "storage_key": {"type": "string"}, "size": {"type": "integer"}, "upload_date": {"type": "string"}}},
        "model.Appointment": {"type": "object", "properties": {"id": {"type": "string"}, "date": {"type": "string"}, "doctor": {"type": "string"}, "specialty": {"type": "string"}, "location": {"type": "string"}}},
        "model.AppointmentDraft": {"type": "object", "properties": {"date": {"type": "string"}, "doctor": {"type": "string"}, "specialty": {"type": "string"}, "location": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Health Dashboard API",
	Description:      "Medical timeline, documents, appointments and reminders.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
