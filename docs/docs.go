// Package docs holds the OpenAPI description served at /swagger.
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
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/job-cards": {"post": {"summary": "Open a job card", "tags": ["job-cards"], "responses": {"201": {"description": "Created"}}}},
        "/job-cards/{id}": {
            "get": {"summary": "Get a job card", "tags": ["job-cards"], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"summary": "Edit registration or priority", "tags": ["job-cards"], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid input"}, "409": {"description": "Concurrent modification"}}}
        },
        "/job-cards/{id}/transition": {"post": {"summary": "Move a job card to a new status", "tags": ["job-cards"], "responses": {"200": {"description": "OK"}, "409": {"description": "Concurrent modification"}, "422": {"description": "Transition rejected"}}}},
        "/job-cards/{id}/notes": {"post": {"summary": "Append a note to the timeline", "tags": ["job-cards"], "responses": {"201": {"description": "Created"}}}},
        "/job-cards/{id}/approval": {"post": {"summary": "Record customer approval of the estimate", "tags": ["job-cards"], "responses": {"200": {"description": "OK"}}}},
        "/job-cards/{id}/timeline": {"get": {"summary": "List timeline entries", "tags": ["job-cards"], "responses": {"200": {"description": "OK"}}}},
        "/job-cards/{id}/invoices": {"get": {"summary": "List invoices raised for a job card", "tags": ["invoices"], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/invoices/generate": {"post": {"summary": "Generate a draft GST invoice", "tags": ["invoices"], "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid invoice"}}}},
        "/invoices/{id}": {"get": {"summary": "Get an invoice", "tags": ["invoices"], "responses": {"200": {"description": "OK"}}}},
        "/invoices/{id}/finalize": {"post": {"summary": "Finalize and archive an invoice", "tags": ["invoices"], "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid status"}}}},
        "/invoices/{id}/mark-paid": {"post": {"summary": "Mark a finalized invoice paid", "tags": ["invoices"], "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid status"}}}},
        "/mg-fleet/contracts": {
            "get": {"summary": "List the workshop's MG contracts", "tags": ["mg-fleet"], "responses": {"200": {"description": "OK"}}},
            "post": {"summary": "Create an MG contract", "tags": ["mg-fleet"], "responses": {"201": {"description": "Created"}}}
        },
        "/mg-fleet/contracts/{id}": {"get": {"summary": "Get an MG contract", "tags": ["mg-fleet"], "responses": {"200": {"description": "OK"}}}},
        "/mg-fleet/contracts/{id}/end": {"post": {"summary": "End an MG contract", "tags": ["mg-fleet"], "responses": {"200": {"description": "OK"}}}},
        "/mg-fleet/contracts/{id}/generate-bill": {"post": {"summary": "Generate the bill for a period", "tags": ["mg-fleet"], "responses": {"200": {"description": "OK"}, "409": {"description": "Billing in progress"}}}},
        "/mg-fleet/contracts/{id}/bills": {"get": {"summary": "List bills for a contract", "tags": ["mg-fleet"], "responses": {"200": {"description": "OK"}}}},
        "/mg-fleet/contracts/{id}/vehicles/{vehicle_id}/logs": {"get": {"summary": "List a vehicle's logs for a period (query period=YYYY-MM, default current month)", "tags": ["mg-fleet"], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid period"}, "404": {"description": "Not Found"}}}},
        "/mg-fleet/vehicle-logs": {"post": {"summary": "Record a daily odometer log", "tags": ["mg-fleet"], "responses": {"201": {"description": "Created"}}}},
        "/mg-fleet/vehicle-logs/{id}/correct": {"post": {"summary": "Correct a vehicle log with a reversal", "tags": ["mg-fleet"], "responses": {"201": {"description": "Created"}}}},
        "/mg-fleet/stats": {"get": {"summary": "Fleet statistics for the current month", "tags": ["mg-fleet"], "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "GarageFlow API",
	Description:      "Job cards, GST invoicing and MG fleet billing for service workshops.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
