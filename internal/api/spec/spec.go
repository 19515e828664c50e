package spec

import (
	"embed"
	"net/http"
)

//go:embed openapi.yaml
var openapiFS embed.FS

// OpenAPIHandler serves the embedded API specification for the transfer
// endpoints.
func OpenAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := openapiFS.ReadFile("openapi.yaml")
		if err != nil {
			http.Error(w, "openapi spec not available", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(content)
	}
}
