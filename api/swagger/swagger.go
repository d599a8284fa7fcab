package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Timetable API",
        "description": "Semester timetable creation, conflict detection and weekly occupancy grids.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "in": "header",
            "name": "Authorization"
        }
    },
    "tags": [
        {
            "name": "Scheduling",
            "description": "Semester schedule creation"
        },
        {
            "name": "Sessions",
            "description": "Dated class sessions"
        },
        {
            "name": "Occupancy",
            "description": "Weekly grids and exports"
        }
    ],
    "paths": {
        "/semester-schedules": {
            "post": {
                "tags": [
                    "Scheduling"
                ],
                "summary": "Create a recurring course across a semester",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateSemesterScheduleRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "At least one session created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "200": {
                        "description": "Every date conflicted",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Storage unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/semester-schedules/preview": {
            "post": {
                "tags": [
                    "Scheduling"
                ],
                "summary": "Preview a semester schedule without writing",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateSemesterScheduleRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Preview",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": [
                    "Sessions"
                ],
                "summary": "List class sessions",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "First date (YYYY-MM-DD)"
                    },
                    {
                        "name": "to",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Last date (YYYY-MM-DD)"
                    },
                    {
                        "name": "roomId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Room"
                    },
                    {
                        "name": "teacherId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Teacher"
                    },
                    {
                        "name": "groupId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Student group"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "PLANNED, CANCELED, MAKEUP or COMPLETED"
                    },
                    {
                        "name": "recurrenceGroupId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Recurrence group"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page"
                    },
                    {
                        "name": "pageSize",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Sessions",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/makeup": {
            "post": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Schedule a single makeup session",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateMakeupRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "200": {
                        "description": "Blocked by conflicts",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Get a class session",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Session ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Session",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/cancel": {
            "post": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Cancel a planned or makeup session",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Session ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/CancelSessionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Canceled",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Session not cancelable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/sessions/{id}/complete": {
            "post": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Mark a session as held",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Session ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Completed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Session not completable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/recurrence-groups/{id}/sessions": {
            "get": {
                "tags": [
                    "Sessions"
                ],
                "summary": "List the sessions of a recurrence group",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Recurrence group ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Sessions",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/recurrence-groups/{id}/cancel": {
            "post": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Cancel the remaining sessions of a recurrence group",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Recurrence group ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/CancelRecurrenceGroupRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Canceled",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/occupancy": {
            "get": {
                "tags": [
                    "Occupancy"
                ],
                "summary": "Weekly occupancy grid",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "roomId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Room"
                    },
                    {
                        "name": "teacherId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Teacher"
                    },
                    {
                        "name": "groupId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Student group"
                    },
                    {
                        "name": "weekOffset",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Weeks relative to the current week"
                    },
                    {
                        "name": "catalog",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Time grid catalog"
                    },
                    {
                        "name": "building",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Building filter for all-rooms mode"
                    },
                    {
                        "name": "roomType",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "LECTURE, LAB, EXAM or OTHER"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Occupancy",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Unknown target",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/occupancy/export": {
            "get": {
                "tags": [
                    "Occupancy"
                ],
                "summary": "Download the weekly occupancy grid",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "roomId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Room"
                    },
                    {
                        "name": "teacherId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Teacher"
                    },
                    {
                        "name": "groupId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Student group"
                    },
                    {
                        "name": "weekOffset",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Weeks relative to the current week"
                    },
                    {
                        "name": "catalog",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Time grid catalog"
                    },
                    {
                        "name": "building",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Building filter for all-rooms mode"
                    },
                    {
                        "name": "roomType",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "LECTURE, LAB, EXAM or OTHER"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "csv (default) or pdf"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/time-grid": {
            "get": {
                "tags": [
                    "Occupancy"
                ],
                "summary": "List time grid catalogs",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Catalogs",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "CreateSemesterScheduleRequest": {
            "type": "object",
            "required": [
                "subjectId",
                "groupId",
                "teacherId",
                "roomId",
                "dayOfWeek",
                "startTime",
                "endTime",
                "recurrenceType",
                "semesterStart",
                "semesterEnd"
            ],
            "properties": {
                "subjectId": {
                    "type": "string"
                },
                "groupId": {
                    "type": "string"
                },
                "teacherId": {
                    "type": "string"
                },
                "roomId": {
                    "type": "string"
                },
                "dayOfWeek": {
                    "type": "string",
                    "example": "MONDAY"
                },
                "startTime": {
                    "type": "string",
                    "example": "10:10"
                },
                "endTime": {
                    "type": "string",
                    "example": "11:40"
                },
                "recurrenceType": {
                    "type": "string",
                    "enum": [
                        "WEEKLY",
                        "BIWEEKLY"
                    ]
                },
                "semesterStart": {
                    "type": "string",
                    "format": "date"
                },
                "semesterEnd": {
                    "type": "string",
                    "format": "date"
                },
                "catalog": {
                    "type": "string"
                }
            }
        },
        "CreateMakeupRequest": {
            "type": "object",
            "required": [
                "subjectId",
                "groupId",
                "teacherId",
                "roomId",
                "date",
                "startTime",
                "endTime"
            ],
            "properties": {
                "subjectId": {
                    "type": "string"
                },
                "groupId": {
                    "type": "string"
                },
                "teacherId": {
                    "type": "string"
                },
                "roomId": {
                    "type": "string"
                },
                "date": {
                    "type": "string",
                    "format": "date"
                },
                "startTime": {
                    "type": "string"
                },
                "endTime": {
                    "type": "string"
                },
                "recurrenceGroupId": {
                    "type": "string",
                    "format": "uuid"
                },
                "catalog": {
                    "type": "string"
                }
            }
        },
        "CancelSessionRequest": {
            "type": "object",
            "properties": {
                "reason": {
                    "type": "string"
                }
            }
        },
        "CancelRecurrenceGroupRequest": {
            "type": "object",
            "properties": {
                "fromDate": {
                    "type": "string",
                    "format": "date"
                },
                "reason": {
                    "type": "string"
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "details": {
                    "type": "object"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
