// Package api carries the embedded REST contract. The HTTP server parses and
// validates it at construction and serves the raw document at /openapi.yaml.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPISpec []byte
