// Where: internal/topology/loader.go
// What: Topology manifest loading and schema validation.
// Why: Reject malformed declarations before any resource is touched.
package topology

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	yamlv3 "gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/seedbox-dev/seedbox/assets"
)

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

// Load reads, validates, and decodes a topology manifest from path.
func Load(path string) (Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read topology manifest: %w", err)
	}
	return Parse(content)
}

// Parse validates manifest content against the embedded JSON schema and
// decodes it.
func Parse(content []byte) (Manifest, error) {
	if err := validateManifest(content); err != nil {
		return Manifest{}, fmt.Errorf("invalid topology manifest: %w", err)
	}

	var manifest Manifest
	decoder := yamlv3.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode topology manifest: %w", err)
	}
	return manifest, nil
}

func validateManifest(content []byte) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}

	jsonData, err := sigsyaml.YAMLToJSON(content)
	if err != nil {
		return fmt.Errorf("convert yaml to json: %w", err)
	}

	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return fmt.Errorf("unmarshal json: %w", err)
	}

	return sch.Validate(document)
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := assets.FS.ReadFile(assets.SchemaPath)
		if err != nil {
			schemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(assets.SchemaPath, bytes.NewReader(raw)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(assets.SchemaPath)
	})
	return compiledSchema, schemaErr
}
