// Package docs serves the OpenAPI description of the service and a Swagger UI page for it.
package docs

import (
	_ "embed"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v3"
)

// Path is where the documentation UI is mounted.
const Path = "/docs"

//go:embed openapi.yaml
var specYAML []byte

// Spec returns the OpenAPI document decoded from the embedded YAML.
func Spec() (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(specYAML, &doc); err != nil {
		return nil, fmt.Errorf("decode openapi spec: %w", err)
	}
	return doc, nil
}

// Register mounts the UI at Path plus the raw spec at Path/json and Path/yaml.
func Register(app fiber.Router) error {
	doc, err := Spec()
	if err != nil {
		return err
	}

	app.Get(Path, func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(uiHTML)
	})
	app.Get(Path+"/json", func(c *fiber.Ctx) error {
		return c.JSON(doc)
	})
	app.Get(Path+"/yaml", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(specYAML)
	})
	return nil
}

const uiHTML = `<!DOCTYPE html>
<html lang="en"><head>
  <meta charset="utf-8">
  <title>url2pdf API</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head><body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({ url: "` + Path + `/json", dom_id: "#swagger-ui" });
  </script>
</body></html>`
