// Package docs регистрирует описание API для swagger UI.
// Пересобирается из godoc-аннотаций хендлеров: swag init -g cmd/api/main.go -o internal/docs
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
        "/api/healthz": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/api/readyz": {"get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/api/auth/signup": {"post": {"tags": ["auth"], "summary": "Register user", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}, "429": {"description": "Too Many Requests"}}}},
        "/api/auth/login": {"post": {"tags": ["auth"], "summary": "Authenticate user", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "429": {"description": "Too Many Requests"}}}},
        "/api/auth/reset-password": {"post": {"tags": ["auth"], "summary": "Request password reset", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "429": {"description": "Too Many Requests"}}}},
        "/api/auth/reset-password/confirm": {"post": {"tags": ["auth"], "summary": "Confirm password reset", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "429": {"description": "Too Many Requests"}}}},
        "/api/auth/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current user", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/api/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Logout (revoke token)", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/api/resumes": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "List resumes", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Create resume", "responses": {"201": {"description": "Created"}}}
        },
        "/api/resumes/my-resume": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Get my latest resume", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Update my latest resume", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/resumes/score": {"post": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Score resume", "responses": {"200": {"description": "OK"}}}},
        "/api/resumes/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Get resume", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Update resume", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Delete resume", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/resumes/{id}/set-default": {"post": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Make resume default", "responses": {"200": {"description": "OK"}}}},
        "/api/resumes/{id}/versions": {"get": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Resume versions", "responses": {"200": {"description": "OK"}}}},
        "/api/resumes/{id}/versions/{vid}/restore": {"post": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Restore resume version", "responses": {"200": {"description": "OK"}}}},
        "/api/resumes/{id}/source": {"get": {"security": [{"BearerAuth": []}], "tags": ["resumes"], "summary": "Download original upload", "responses": {"200": {"description": "OK"}, "206": {"description": "Partial Content"}, "304": {"description": "Not Modified"}}}},
        "/api/ai/parse-and-save-resume": {"post": {"security": [{"BearerAuth": []}], "tags": ["ai"], "summary": "Parse uploaded resume and save it", "consumes": ["multipart/form-data"], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/api/ai/optimize-resume": {"post": {"security": [{"BearerAuth": []}], "tags": ["ai"], "summary": "Optimize resume for a job", "responses": {"200": {"description": "OK"}}}},
        "/api/ai/generate-resume": {"post": {"security": [{"BearerAuth": []}], "tags": ["ai"], "summary": "Generate resume from a job description", "responses": {"200": {"description": "OK"}}}},
        "/api/ai/generate-cover-letter": {"post": {"security": [{"BearerAuth": []}], "tags": ["ai"], "summary": "Generate cover letter", "responses": {"200": {"description": "OK"}}}},
        "/api/templates": {"get": {"tags": ["templates"], "summary": "List templates", "responses": {"200": {"description": "OK"}}}},
        "/api/templates/search": {"get": {"tags": ["templates"], "summary": "Search templates", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/api/templates/categories/list": {"get": {"tags": ["templates"], "summary": "Template categories", "responses": {"200": {"description": "OK"}}}},
        "/api/templates/professions/list": {"get": {"tags": ["templates"], "summary": "Professions covered by templates", "responses": {"200": {"description": "OK"}}}},
        "/api/templates/category/{category}": {"get": {"tags": ["templates"], "summary": "Templates by category", "responses": {"200": {"description": "OK"}}}},
        "/api/templates/profession/{profession}": {"get": {"tags": ["templates"], "summary": "Templates recommended for a profession", "responses": {"200": {"description": "OK"}}}},
        "/api/templates/{id}": {"get": {"tags": ["templates"], "summary": "Template details", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/templates/clear-cache": {"post": {"security": [{"BearerAuth": []}], "tags": ["templates"], "summary": "Clear template cache", "responses": {"200": {"description": "OK"}}}}
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
	Title:            "Resume Builder API",
	Description:      "Резюме, загрузка и разбор документов, AI-оптимизация, шаблоны.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
