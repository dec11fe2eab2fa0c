// Package api embeds the OpenAPI description of the send-dtmf HTTP server.
package api

import _ "embed"

// Spec is the OpenAPI 3 document served at /openapi.yaml and used to validate requests.
//
//go:embed openapi.yaml
var Spec []byte
