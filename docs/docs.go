// Package docs registers one swagger spec per service mode with swag.
// The annotations live next to the handlers; the templates below mirror them.
package docs

import "github.com/swaggo/swag"

const (
	InstanceRide   = "ride"
	InstanceDriver = "driver"
	InstanceAuth   = "auth"
	InstanceAgent  = "agent"
)

const header = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
`

const health = `
        "/health": {
            "get": {"tags": ["Health"], "summary": "Health Check", "responses": {"200": {"description": "OK"}}}
        }`

const rideTemplate = header + `    "paths": {
        "/rides": {
            "post": {
                "tags": ["Rides"], "summary": "Book an ambulance",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "X-Session-ID", "in": "header"},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRideRequest"}}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Rejected by the store"}, "422": {"description": "Validation failed"}}
            }
        },
        "/rides/{ride_id}": {
            "get": {
                "tags": ["Rides"], "summary": "Ride status",
                "parameters": [{"type": "string", "name": "ride_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/rides/{ride_id}/cancel": {
            "post": {
                "tags": ["Rides"], "summary": "Cancel a ride",
                "parameters": [{"type": "string", "name": "ride_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}, "409": {"description": "Too late to cancel"}}
            }
        },
        "/session/location": {
            "put": {
                "tags": ["Rides"], "summary": "Store requester location",
                "parameters": [
                    {"type": "string", "name": "X-Session-ID", "in": "header"},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveLocationRequest"}}
                ],
                "responses": {"204": {"description": "Stored"}, "422": {"description": "Validation failed"}}
            }
        },` + health + `
    },
    "definitions": {
        "CreateRideRequest": {
            "type": "object",
            "required": ["name", "age", "address", "ambulance_type", "vehicle_type", "hospital"],
            "properties": {
                "name": {"type": "string"}, "age": {"type": "integer"}, "address": {"type": "string"},
                "phone": {"type": "string"}, "ambulance_type": {"type": "string"}, "vehicle_type": {"type": "string"},
                "hospital": {"type": "string"}, "notes": {"type": "string"}
            }
        },
        "SaveLocationRequest": {
            "type": "object",
            "properties": {"latitude": {"type": "number"}, "longitude": {"type": "number"}}
        }
    }
}`

const driverTemplate = header + `    "paths": {
        "/ws/drivers/{driver_id}": {
            "get": {
                "tags": ["Drivers"], "summary": "Driver push channel",
                "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "driver_id", "in": "path", "required": true}],
                "responses": {"101": {"description": "Switching protocols"}, "401": {"description": "Unauthorized"}, "403": {"description": "Not this driver"}}
            }
        },` + health + `
    }
}`

const authTemplate = header + `    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"], "summary": "Driver login",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "Access token"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"], "summary": "Current driver",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },` + health + `
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        }
    }
}`

const agentTemplate = header + `    "paths": {
        "/dashboard": {
            "get": {"tags": ["Dashboard"], "summary": "Dashboard state", "responses": {"200": {"description": "OK"}}}
        },
        "/dashboard/refresh": {
            "post": {"tags": ["Dashboard"], "summary": "Reload rides", "responses": {"200": {"description": "OK"}}}
        },
        "/dashboard/rides/{ride_id}/accept": {
            "post": {
                "tags": ["Dashboard"], "summary": "Accept a ride",
                "parameters": [{"type": "string", "name": "ride_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Accepted"}, "409": {"description": "Taken by another driver"}}
            }
        },
        "/dashboard/ride/status": {
            "post": {
                "tags": ["Dashboard"], "summary": "Advance the current ride",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {
                    "type": "object",
                    "properties": {"status": {"type": "string", "enum": ["en_route", "picked_up", "completed"]}}
                }}],
                "responses": {"200": {"description": "Updated"}, "409": {"description": "Transition rejected"}}
            }
        },
        "/dashboard/logout": {
            "post": {"tags": ["Dashboard"], "summary": "End the session", "responses": {"204": {"description": "Logged out"}}}
        },
        "/dashboard/device/location": {
            "put": {
                "tags": ["Dashboard"], "summary": "Publish a device position",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {
                    "type": "object",
                    "properties": {"latitude": {"type": "number"}, "longitude": {"type": "number"}, "accuracy": {"type": "number"}}
                }}],
                "responses": {"204": {"description": "Stored"}, "404": {"description": "Not in device mode"}, "422": {"description": "Invalid coordinates"}}
            }
        },
        "/dashboard/device/permission": {
            "put": {
                "tags": ["Dashboard"], "summary": "Answer the location prompt",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {
                    "type": "object",
                    "properties": {"granted": {"type": "boolean"}}
                }}],
                "responses": {"204": {"description": "Stored"}, "404": {"description": "Not in device mode"}}
            }
        },` + health + `
    }
}`

var specs = []*swag.Spec{
	{
		Version:          "1.0",
		Host:             "localhost:3000",
		BasePath:         "/",
		Title:            "Ride Service API",
		Description:      "Ambulance bookings and ride status for requesters.",
		InfoInstanceName: InstanceRide,
		SwaggerTemplate:  rideTemplate,
		LeftDelim:        "{{",
		RightDelim:       "}}",
	},
	{
		Version:          "1.0",
		Host:             "localhost:3001",
		BasePath:         "/",
		Title:            "Driver Service API",
		Description:      "Push channel for drivers.",
		InfoInstanceName: InstanceDriver,
		SwaggerTemplate:  driverTemplate,
		LeftDelim:        "{{",
		RightDelim:       "}}",
	},
	{
		Version:          "1.0",
		Host:             "localhost:3005",
		BasePath:         "/",
		Title:            "Auth Service API",
		Description:      "Driver login and token checks.",
		InfoInstanceName: InstanceAuth,
		SwaggerTemplate:  authTemplate,
		LeftDelim:        "{{",
		RightDelim:       "}}",
	},
	{
		Version:          "1.0",
		Host:             "localhost:3010",
		BasePath:         "/",
		Title:            "Driver Agent Dashboard",
		Description:      "Local API of one driver's session.",
		InfoInstanceName: InstanceAgent,
		SwaggerTemplate:  agentTemplate,
		LeftDelim:        "{{",
		RightDelim:       "}}",
	},
}

func init() {
	for _, s := range specs {
		swag.Register(s.InstanceName(), s)
	}
}
