package graph

import (
	"encoding/json"

	"github.com/repolens/backend/pkg/common"

	"github.com/invopop/jsonschema"
)

// ExportSchema returns the JSON schema of the graph export file format,
// for integrators building importers against it.
func ExportSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&common.Graph{})
	return json.MarshalIndent(schema, "", "  ")
}
