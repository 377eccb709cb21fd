// Package docs registers the swagger spec for echo-swagger. Normally
// generated by `swag init`; hand-maintained here with the handler doc
// comments in internal/httpapi as the source of truth.
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
    "paths": {}
}`

// SwaggerInfo holds exported swagger metadata, mirroring what `swag init`
// would generate from the @title/@version/@BasePath annotations in
// cmd/server/main.go.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "WeatherOps API",
	Description:      "Operational core for a flight school's weather-aware scheduling.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
