package http

import (
	_ "embed"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// OpenAPISpec is the OpenAPI description of the HTTP surface.
//
//go:embed openapi.yaml
var OpenAPISpec []byte

var (
	openAPIOnce sync.Once
	openAPIDoc  *openapi3.T
	openAPIErr  error
)

// LoadOpenAPI parses the embedded document once.
func LoadOpenAPI() (*openapi3.T, error) {
	openAPIOnce.Do(func() {
		loader := &openapi3.Loader{IsExternalRefsAllowed: false}
		openAPIDoc, openAPIErr = loader.LoadFromData(OpenAPISpec)
	})
	return openAPIDoc, openAPIErr
}

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>GeoVocab API docs</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>SwaggerUIBundle({ url: '/docs/openapi.json', dom_id: '#swagger-ui' });</script>
</body>
</html>`

// SetupDocs serves Swagger UI at /docs and the document as YAML and JSON.
func SetupDocs(app *fiber.App) {
	docs := app.Group("/docs")

	docs.Get("/", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(swaggerUIHTML)
	})

	docs.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(OpenAPISpec)
	})

	docs.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := LoadOpenAPI()
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("openapi document invalid", "error", err)
			return newError(c, fiber.StatusInternalServerError, "internal_error", "API description unavailable")
		}
		return c.JSON(doc)
	})
}
