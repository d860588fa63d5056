// Where: internal/app/init.go
// What: Init command: writes a starter topology manifest.
package app

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/seedbox-dev/seedbox/assets"
	"github.com/seedbox-dev/seedbox/internal/ui"
)

// manifestSeed is the data the starter template is rendered with. Zero ports
// fall back to the template defaults.
type manifestSeed struct {
	Project      string
	DatabasePort int
	StoragePort  int
	QueuePort    int
}

func runInit(cli CLI, deps Dependencies, out io.Writer) int {
	project := cli.Init.Project
	if project == "" && deps.Prompter != nil {
		answer, err := deps.Prompter.Input("Project name", []string{"seedbox"})
		if err != nil {
			return exitWithError(out, err)
		}
		project = strings.TrimSpace(answer)
	}
	if project == "" {
		project = "seedbox"
	}

	path := cli.Manifest
	if _, err := os.Stat(path); err == nil && !cli.Init.Force {
		fmt.Fprintf(out, "%s already exists (use --force to overwrite)\n", path)
		return 1
	}

	env, err := deps.LoadEnv()
	if err != nil {
		return exitWithError(out, err)
	}

	rendered, err := renderManifest(manifestSeed{
		Project:      project,
		DatabasePort: env.DatabasePort,
		StoragePort:  env.StoragePort,
		QueuePort:    env.QueuePort,
	})
	if err != nil {
		return exitWithError(out, err)
	}
	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		return exitWithError(out, err)
	}

	console := ui.New(out)
	console.Header("📦", "Topology manifest created")
	console.Item("Path", path)
	console.Item("Project", project)
	console.ItemPlain("Edit the manifest, then run: seedbox up")
	return 0
}

func renderManifest(seed manifestSeed) ([]byte, error) {
	raw, err := assets.FS.ReadFile(assets.TopologyTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("read manifest template: %w", err)
	}
	tmpl, err := template.New("topology").Funcs(sprig.FuncMap()).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse manifest template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, seed); err != nil {
		return nil, fmt.Errorf("render manifest template: %w", err)
	}
	return buf.Bytes(), nil
}
