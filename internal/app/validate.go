// Where: internal/app/validate.go
// What: Validate command: parses the manifest and reports what it declares.
package app

import (
	"fmt"
	"io"

	"github.com/seedbox-dev/seedbox/internal/topology"
	"github.com/seedbox-dev/seedbox/internal/ui"
)

func runValidate(cli CLI, _ Dependencies, out io.Writer) int {
	manifest, err := topology.Load(cli.Manifest)
	if err != nil {
		return exitWithError(out, err)
	}

	counts := map[topology.Kind]int{}
	emulated := 0
	resources := manifest.Descriptors()
	for _, res := range resources {
		counts[res.Kind]++
		if res.IsEmulator {
			emulated++
		}
	}

	console := ui.New(out)
	console.Header("✅", fmt.Sprintf("%s is valid", cli.Manifest))
	console.Item("Project", manifest.Project)
	console.Item("Document containers", counts[topology.KindDocumentContainer])
	console.Item("Blob containers", counts[topology.KindBlobContainer])
	console.Item("Queues", counts[topology.KindQueue])
	console.Item("Emulated", fmt.Sprintf("%d of %d", emulated, len(resources)))
	return 0
}
