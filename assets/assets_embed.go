// Where: assets/assets_embed.go
// What: Embed the topology JSON schema and starter templates.
// Why: Keep validation and scaffolding assets inside the binary.
package assets

import "embed"

//go:embed schema/*.json templates/*.tmpl
var FS embed.FS

// SchemaPath is the embedded location of the topology manifest schema.
const SchemaPath = "schema/topology.schema.json"

// TopologyTemplatePath is the embedded starter manifest template.
const TopologyTemplatePath = "templates/topology.yaml.tmpl"
