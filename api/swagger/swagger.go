package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "QuillDesk Brokerage API",
        "description": "Assignment settlement and identity ledger for the writing brokerage",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Admin console authentication"},
        {"name": "Assignments", "description": "Assignment ledger and money flow"},
        {"name": "Writers", "description": "Writer roster and placeholder phone allocation"},
        {"name": "Students", "description": "Student profiles"},
        {"name": "Universities", "description": "Canonical university registry"},
        {"name": "Dashboard", "description": "Cached money-flow overview"},
        {"name": "Exports", "description": "CSV and PDF reports"},
        {"name": "Data", "description": "Backup import and wipe"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Admin login",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignments",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "writerId", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "archived", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Create assignment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Get assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Assignments"],
                "summary": "Update assignment details",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Assignments"],
                "summary": "Delete assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/assignments/{id}/reassign": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Reassign writer, moving paid writer amounts to sunk costs",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReassignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Concurrent modification"}
                }
            }
        },
        "/assignments/{id}/payments": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Record a student or writer payment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordPaymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}/status": {
            "patch": {
                "tags": ["Assignments"],
                "summary": "Change status, applying completion effects exactly once",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangeStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}/archive": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Archive assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Archived"}
                }
            }
        },
        "/assignments/{id}/unarchive": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Unarchive assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Unarchived"}
                }
            }
        },
        "/assignments/{id}/duplicate": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Duplicate assignment template fields",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}/activity": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Append an activity log entry",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ActivityRequest"}}
                ],
                "responses": {
                    "204": {"description": "Recorded"}
                }
            }
        },
        "/writers": {
            "get": {
                "tags": ["Writers"],
                "summary": "List writers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "availability", "in": "query", "type": "string"},
                    {"name": "flagged", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Writers"],
                "summary": "Create writer, allocating a placeholder phone when needed",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateWriterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Phone already registered"}
                }
            }
        },
        "/writers/{id}": {
            "get": {
                "tags": ["Writers"],
                "summary": "Get writer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Writers"],
                "summary": "Update writer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateWriterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Writers"],
                "summary": "Delete writer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/writers/{id}/achievements": {
            "get": {
                "tags": ["Writers"],
                "summary": "List writer achievements",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "universityId", "in": "query", "type": "integer"},
                    {"name": "flagged", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/universities": {
            "get": {
                "tags": ["Universities"],
                "summary": "List universities",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Universities"],
                "summary": "Create university",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UniversityRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Name already exists"}
                }
            }
        },
        "/universities/{id}": {
            "put": {
                "tags": ["Universities"],
                "summary": "Update university",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UniversityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Universities"],
                "summary": "Delete university",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/universities/backfill": {
            "post": {
                "tags": ["Universities"],
                "summary": "Canonicalize free-text university names on students",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Money-flow overview",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/assignments": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export assignment ledger as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "writerId", "in": "query", "type": "integer"},
                    {"name": "archived", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/data/import": {
            "post": {
                "tags": ["Data"],
                "summary": "Import a backup payload",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ImportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/data/clear": {
            "post": {
                "tags": ["Data"],
                "summary": "Wipe every dataset table",
                "responses": {
                    "204": {"description": "Cleared"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string"}
            },
            "required": ["password"]
        },
        "CreateAssignmentRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "writerId": {"type": "integer"},
                "title": {"type": "string"},
                "type": {"type": "string"},
                "subject": {"type": "string"},
                "level": {"type": "string"},
                "deadline": {"type": "string", "format": "date-time"},
                "priority": {"type": "string"},
                "description": {"type": "string"},
                "wordCount": {"type": "integer"},
                "costPerWord": {"type": "number"},
                "writerCostPerWord": {"type": "number"},
                "price": {"type": "number"},
                "writerPrice": {"type": "number"},
                "isDissertation": {"type": "boolean"},
                "totalChapters": {"type": "integer"}
            },
            "required": ["studentId", "title", "deadline"]
        },
        "UpdateAssignmentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "type": {"type": "string"},
                "subject": {"type": "string"},
                "level": {"type": "string"},
                "deadline": {"type": "string", "format": "date-time"},
                "priority": {"type": "string"},
                "description": {"type": "string"},
                "documentLink": {"type": "string"},
                "wordCount": {"type": "integer"},
                "costPerWord": {"type": "number"},
                "writerCostPerWord": {"type": "number"},
                "price": {"type": "number"},
                "writerPrice": {"type": "number"}
            }
        },
        "ReassignRequest": {
            "type": "object",
            "properties": {
                "writerId": {"type": "integer"},
                "note": {"type": "string"}
            },
            "required": ["writerId"]
        },
        "RecordPaymentRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "number"},
                "side": {"type": "string", "enum": ["student", "writer"]},
                "note": {"type": "string"}
            },
            "required": ["amount", "side"]
        },
        "ChangeStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "note": {"type": "string"}
            },
            "required": ["status"]
        },
        "ActivityRequest": {
            "type": "object",
            "properties": {
                "actor": {"type": "string"},
                "note": {"type": "string"}
            },
            "required": ["note"]
        },
        "CreateWriterRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "specialty": {"type": "string"},
                "availabilityStatus": {"type": "string"},
                "maxConcurrentTasks": {"type": "integer"}
            },
            "required": ["name"]
        },
        "UpdateWriterRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "specialty": {"type": "string"},
                "isFlagged": {"type": "boolean"},
                "availabilityStatus": {"type": "string"},
                "maxConcurrentTasks": {"type": "integer"}
            },
            "required": ["name"]
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "university": {"type": "string"},
                "remarks": {"type": "string"},
                "referredBy": {"type": "string"}
            },
            "required": ["name"]
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "university": {"type": "string"},
                "remarks": {"type": "string"},
                "isFlagged": {"type": "boolean"},
                "referredBy": {"type": "string"}
            },
            "required": ["name"]
        },
        "UniversityRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "location": {"type": "string"}
            },
            "required": ["name"]
        },
        "ImportRequest": {
            "type": "object",
            "properties": {
                "students": {"type": "array", "items": {"type": "object"}},
                "writers": {"type": "array", "items": {"type": "object"}},
                "assignments": {"type": "array", "items": {"type": "object"}}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
