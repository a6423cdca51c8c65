package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SE Evidence API",
        "description": "Catalog of software-engineering research articles and the evidence extracted from them",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Registration, login and current identity"},
        {"name": "Articles", "description": "Submission, moderation and rating of articles"},
        {"name": "Evidence", "description": "Structured evidence linked one-to-one with articles"},
        {"name": "Search", "description": "Free-text, facet and advanced search"},
        {"name": "Users", "description": "Administrative user management"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a submitter account",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}, "409": {"description": "Email already registered"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Issue an access token",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/articles": {
            "get": {
                "tags": ["Articles"],
                "summary": "List articles",
                "parameters": [{"in": "query", "name": "status", "type": "string", "enum": ["pending_review", "approved", "rejected", "pending_analysis", "analyzed", "published"]}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Articles"],
                "summary": "Submit an article",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ArticleRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}, "409": {"description": "Duplicate DOI"}}
            }
        },
        "/articles/my-submissions": {
            "get": {"tags": ["Articles"], "summary": "Articles submitted by the caller", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/articles/pending-review": {
            "get": {"tags": ["Articles"], "summary": "Moderation queue", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/articles/pending-analysis": {
            "get": {"tags": ["Articles"], "summary": "Analysis queue", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/articles/{id}": {
            "get": {
                "tags": ["Articles"],
                "summary": "Get article",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "patch": {
                "tags": ["Articles"],
                "summary": "Update article",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ArticleRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Duplicate DOI"}}
            },
            "delete": {
                "tags": ["Articles"],
                "summary": "Delete article and its evidence",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/articles/{id}/approve": {
            "post": {
                "tags": ["Articles"],
                "summary": "Approve a pending article",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Wrong state"}}
            }
        },
        "/articles/{id}/reject": {
            "post": {
                "tags": ["Articles"],
                "summary": "Reject a pending article",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "schema": {"type": "object", "properties": {"reason": {"type": "string"}}}}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Wrong state"}}
            }
        },
        "/articles/{id}/rate": {
            "post": {
                "tags": ["Articles"],
                "summary": "Rate an article from 1 to 5",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"type": "object", "properties": {"value": {"type": "integer", "minimum": 1, "maximum": 5}}}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Validation error"}}
            }
        },
        "/evidence": {
            "get": {
                "tags": ["Evidence"],
                "summary": "List evidence",
                "parameters": [{"in": "query", "name": "sePractice", "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Evidence"],
                "summary": "Record evidence for an approved article",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/EvidenceRequest"}}],
                "responses": {"201": {"description": "Created"}, "404": {"description": "Article not found"}, "409": {"description": "Article not approved or evidence exists"}}
            }
        },
        "/evidence/article/{articleId}": {
            "get": {
                "tags": ["Evidence"],
                "summary": "Evidence for an article",
                "parameters": [{"in": "path", "name": "articleId", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/evidence/{id}": {
            "get": {
                "tags": ["Evidence"],
                "summary": "Get evidence",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "patch": {
                "tags": ["Evidence"],
                "summary": "Update evidence",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/EvidenceRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Evidence"],
                "summary": "Delete evidence",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/search/articles": {
            "get": {
                "tags": ["Search"],
                "summary": "Free-text search over title and abstract",
                "parameters": [{"in": "query", "name": "q", "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/search/se-practice": {
            "get": {
                "tags": ["Search"],
                "summary": "Evidence by exact practice",
                "parameters": [{"in": "query", "name": "practice", "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/search/claim": {
            "get": {
                "tags": ["Search"],
                "summary": "Evidence by claim substring",
                "parameters": [{"in": "query", "name": "claim", "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/search/advanced": {
            "get": {
                "tags": ["Search"],
                "summary": "Combined evidence and article search",
                "parameters": [
                    {"in": "query", "name": "q", "type": "string"},
                    {"in": "query", "name": "sePractice", "type": "string"},
                    {"in": "query", "name": "claim", "type": "string"},
                    {"in": "query", "name": "yearFrom", "type": "integer"},
                    {"in": "query", "name": "yearTo", "type": "integer"},
                    {"in": "query", "name": "evidenceResult", "type": "string", "enum": ["supports", "opposes", "neutral"]}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Validation error"}}
            }
        },
        "/search/advanced/export": {
            "get": {
                "tags": ["Search"],
                "summary": "Export advanced search results",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}],
                "responses": {"200": {"description": "File"}, "400": {"description": "Unknown format"}, "404": {"description": "Exports disabled"}}
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "role", "type": "string"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "page_size", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Email already registered"}}
            }
        },
        "/users/{id}": {
            "get": {"tags": ["Users"], "summary": "Get user", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["Users"], "summary": "Update roles or active flag", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Users"], "summary": "Deactivate user", "security": [{"BearerAuth": []}], "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}], "responses": {"204": {"description": "Deactivated"}, "403": {"description": "Cannot deactivate self"}}}
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "firstName", "lastName"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ArticleRequest": {
            "type": "object",
            "required": ["title", "authors", "publicationYear"],
            "properties": {
                "title": {"type": "string"},
                "authors": {"type": "array", "items": {"type": "string"}},
                "publicationYear": {"type": "integer"},
                "doi": {"type": "string"},
                "journalName": {"type": "string"},
                "volume": {"type": "string"},
                "pages": {"type": "string"},
                "abstract": {"type": "string"},
                "url": {"type": "string"},
                "bibtexData": {"type": "object"}
            }
        },
        "EvidenceRequest": {
            "type": "object",
            "required": ["articleId", "sePractice", "claim", "evidenceResult", "researchType", "participantType"],
            "properties": {
                "articleId": {"type": "string"},
                "sePractice": {"type": "string"},
                "claim": {"type": "string"},
                "evidenceResult": {"type": "string", "enum": ["supports", "opposes", "neutral"]},
                "researchType": {"type": "string", "enum": ["case_study", "experiment", "survey", "systematic_review", "meta_analysis", "other"]},
                "participantType": {"type": "string", "enum": ["students", "professionals", "mixed", "other"]},
                "participantCount": {"type": "integer", "minimum": 0},
                "summary": {"type": "string"},
                "notes": {"type": "string"}
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
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
