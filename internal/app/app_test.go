// Where: internal/app/app_test.go
// What: Command-level tests running Run against fake backends.
package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/seedbox-dev/seedbox/internal/ensure"
	"github.com/seedbox-dev/seedbox/internal/record"
	"github.com/seedbox-dev/seedbox/internal/resolver"
	"github.com/seedbox-dev/seedbox/internal/seedenv"
	"github.com/seedbox-dev/seedbox/internal/topology"
)

const testManifest = `Project: appimport
Database:
  Name: appimport
  Emulator:
    Endpoint: http://localhost:8001
    Service: database
    ContainerPort: 8000
  Containers:
    - Name: cdbimport
      PartitionKeyPath: /filePath
Storage:
  Name: appimportstore
  BlobEmulator:
    Endpoint: http://localhost:9000
    Service: storage
    ContainerPort: 9000
  QueueEmulator:
    Endpoint: http://localhost:9324
    Service: queue
    ContainerPort: 9324
  Blobs:
    - Name: blobimport
  Queues:
    - Name: queueimport
`

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seedbox.yaml")
	if err := os.WriteFile(path, []byte(testManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type fakeResolver struct {
	mu       sync.Mutex
	resolved []string
	err      error
}

func (f *fakeResolver) Resolve(_ context.Context, res topology.ResourceDescriptor) (resolver.ConnectionTarget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return resolver.ConnectionTarget{}, f.err
	}
	f.resolved = append(f.resolved, res.Key())
	return resolver.ConnectionTarget{
		Endpoint:  res.Parent.Endpoint,
		Region:    "ap-northeast-1",
		Transport: resolver.TransportGateway,
	}, nil
}

// fakeDocumentBackend records the ensure call order and every written item.
type fakeDocumentBackend struct {
	mu       sync.Mutex
	calls    []string
	existing []string
	items    []record.DomainRecord
	writeErr error
}

func (f *fakeDocumentBackend) EnsureDatabase(_ context.Context, database string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "ensure-database:"+database)
	return nil
}

func (f *fakeDocumentBackend) ListContainers(_ context.Context, _ string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "list-containers")
	return f.existing, nil
}

func (f *fakeDocumentBackend) CreateContainer(_ context.Context, _, container, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create-container:"+container)
	return nil
}

func (f *fakeDocumentBackend) WriteItem(_ context.Context, _ ensure.NamespaceHandle, rec record.DomainRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.items = append(f.items, rec)
	return nil
}

type fakeFlatBackend struct {
	mu       sync.Mutex
	existing []string
	created  []string
	items    []record.DomainRecord
}

func (f *fakeFlatBackend) list() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing, nil
}

func (f *fakeFlatBackend) create(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, name)
	return nil
}

func (f *fakeFlatBackend) ListBuckets(_ context.Context) ([]string, error) { return f.list() }
func (f *fakeFlatBackend) ListQueues(_ context.Context) ([]string, error)  { return f.list() }

func (f *fakeFlatBackend) CreateBucket(_ context.Context, name string) error {
	return f.create(name)
}

func (f *fakeFlatBackend) CreateQueue(_ context.Context, name string) error {
	return f.create(name)
}

func (f *fakeFlatBackend) WriteItem(_ context.Context, _ ensure.NamespaceHandle, rec record.DomainRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, rec)
	return nil
}

type fakeBackends struct {
	document *fakeDocumentBackend
	blob     *fakeFlatBackend
	queue    *fakeFlatBackend

	mu               sync.Mutex
	partitionKeyPath string
}

func (f *fakeBackends) Document(_ resolver.ConnectionTarget, partitionKeyPath string) DocumentBackend {
	f.mu.Lock()
	f.partitionKeyPath = partitionKeyPath
	f.mu.Unlock()
	return f.document
}

func (f *fakeBackends) Blob(_ resolver.ConnectionTarget) BlobBackend   { return f.blob }
func (f *fakeBackends) Queue(_ resolver.ConnectionTarget) QueueBackend { return f.queue }

type fakeWaiter struct {
	mu     sync.Mutex
	waited []string
	err    error
}

func (f *fakeWaiter) Wait(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waited = append(f.waited, endpoint)
	return f.err
}

func testDeps(t *testing.T, out *bytes.Buffer) (Dependencies, *fakeBackends, *fakeResolver, *fakeWaiter) {
	t.Helper()
	gen, err := record.NewGenerator(record.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	backends := &fakeBackends{
		document: &fakeDocumentBackend{},
		blob:     &fakeFlatBackend{},
		queue:    &fakeFlatBackend{},
	}
	res := &fakeResolver{}
	waiter := &fakeWaiter{}
	root := t.TempDir()
	deps := Dependencies{
		Out:       out,
		Logger:    zerolog.Nop(),
		Resolver:  res,
		Backends:  backends,
		Generator: gen,
		Waiter:    waiter,
		LoadEnv: func() (seedenv.Config, error) {
			return seedenv.Config{
				Environment: "dev",
				ContentRoot: root,
				ImportedBy:  "seedbox",
				SeedCount:   10,
			}, nil
		},
	}
	return deps, backends, res, waiter
}

func TestRunUpSeedsEveryDeclaredResource(t *testing.T) {
	out := &bytes.Buffer{}
	deps, backends, res, waiter := testDeps(t, out)
	manifest := writeManifest(t)

	code := Run([]string{"--manifest", manifest, "up", "-n", "10"}, deps)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d\n%s", code, out.String())
	}

	if len(waiter.waited) != 3 {
		t.Fatalf("expected 3 readiness probes, got %v", waiter.waited)
	}
	if len(res.resolved) != 3 {
		t.Fatalf("expected 3 resolutions, got %v", res.resolved)
	}

	doc := backends.document
	if len(doc.items) != 10 {
		t.Fatalf("expected 10 document items, got %d", len(doc.items))
	}
	if len(backends.blob.items) != 10 || len(backends.queue.items) != 10 {
		t.Fatalf("expected 10 items per flat resource, got blob=%d queue=%d",
			len(backends.blob.items), len(backends.queue.items))
	}
	if backends.partitionKeyPath != "/filePath" {
		t.Fatalf("unexpected partition key path: %s", backends.partitionKeyPath)
	}

	importPath := doc.items[0].PartitionKey
	seen := map[string]bool{}
	for _, rec := range doc.items {
		if rec.ID == "" || seen[rec.ID] {
			t.Fatalf("expected unique non-empty ids, got %q", rec.ID)
		}
		seen[rec.ID] = true
		if rec.ImportedBy != "seedbox" {
			t.Fatalf("unexpected importedBy: %s", rec.ImportedBy)
		}
		if rec.ImportedOn.IsZero() {
			t.Fatal("expected a non-zero import timestamp")
		}
		if rec.PartitionKey != importPath {
			t.Fatalf("expected shared partition key %s, got %s", importPath, rec.PartitionKey)
		}
	}
	if !strings.HasSuffix(importPath, filepath.Join("dev", "import")) {
		t.Fatalf("unexpected import source path: %s", importPath)
	}
}

func TestRunUpEnsuresDatabaseBeforeContainer(t *testing.T) {
	out := &bytes.Buffer{}
	deps, backends, _, _ := testDeps(t, out)
	manifest := writeManifest(t)

	if code := Run([]string{"--manifest", manifest, "up", "--no-wait"}, deps); code != 0 {
		t.Fatalf("expected exit 0, got %d\n%s", code, out.String())
	}

	calls := backends.document.calls
	if len(calls) < 3 {
		t.Fatalf("unexpected call sequence: %v", calls)
	}
	if calls[0] != "ensure-database:appimport" {
		t.Fatalf("expected database ensure first, got %v", calls)
	}
	if calls[1] != "list-containers" || calls[2] != "create-container:cdbimport" {
		t.Fatalf("expected list-then-create after database ensure, got %v", calls)
	}
}

func TestRunUpIsolatesFailedResource(t *testing.T) {
	out := &bytes.Buffer{}
	deps, backends, _, _ := testDeps(t, out)
	backends.document.writeErr = errors.New("document store down")
	manifest := writeManifest(t)

	code := Run([]string{"--manifest", manifest, "up", "--no-wait"}, deps)
	// Per-item write failures do not fail the resource; only routine-level
	// errors do. The run still reports success for every healthy sibling.
	if code != 0 {
		t.Fatalf("expected exit 0 for per-item failures, got %d\n%s", code, out.String())
	}
	if len(backends.blob.items) != 10 || len(backends.queue.items) != 10 {
		t.Fatal("sibling resources must still be seeded")
	}
	if len(backends.document.items) != 0 {
		t.Fatal("expected no document items to land")
	}
}

func TestRunUpFailsResourceWhenResolutionFails(t *testing.T) {
	out := &bytes.Buffer{}
	deps, _, res, _ := testDeps(t, out)
	res.err = &resolver.ConnectionResolutionError{Resource: "all", Reason: "no endpoint"}
	manifest := writeManifest(t)

	code := Run([]string{"--manifest", manifest, "up", "--no-wait"}, deps)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d\n%s", code, out.String())
	}
	if !strings.Contains(out.String(), "failed") {
		t.Fatalf("expected failure report, got:\n%s", out.String())
	}
}

func TestRunUpSkipsSeedingWhenResourceNeverReady(t *testing.T) {
	out := &bytes.Buffer{}
	deps, backends, _, waiter := testDeps(t, out)
	waiter.err = errors.New("probe timed out")
	manifest := writeManifest(t)

	code := Run([]string{"--manifest", manifest, "up"}, deps)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d\n%s", code, out.String())
	}
	if len(backends.document.items) != 0 || len(backends.blob.items) != 0 {
		t.Fatal("expected no seeding without a readiness signal")
	}
	if !strings.Contains(out.String(), "stuck in") {
		t.Fatalf("expected stuck-resource report, got:\n%s", out.String())
	}
}

func TestRunSeedSkipsReadinessProbes(t *testing.T) {
	out := &bytes.Buffer{}
	deps, backends, _, waiter := testDeps(t, out)
	manifest := writeManifest(t)

	if code := Run([]string{"--manifest", manifest, "seed", "-n", "4"}, deps); code != 0 {
		t.Fatalf("expected exit 0, got:\n%s", out.String())
	}
	if len(waiter.waited) != 0 {
		t.Fatalf("seed must not probe endpoints, probed %v", waiter.waited)
	}
	if len(backends.document.items) != 4 {
		t.Fatalf("expected 4 document items, got %d", len(backends.document.items))
	}
}

func TestRunValidateReportsDeclaredResources(t *testing.T) {
	out := &bytes.Buffer{}
	deps, _, _, _ := testDeps(t, out)
	manifest := writeManifest(t)

	if code := Run([]string{"--manifest", manifest, "validate"}, deps); code != 0 {
		t.Fatalf("expected exit 0, got %d\n%s", code, out.String())
	}
	report := out.String()
	for _, want := range []string{"appimport", "Document containers", "Queues"} {
		if !strings.Contains(report, want) {
			t.Fatalf("expected %q in report:\n%s", want, report)
		}
	}
}

func TestRunValidateRejectsMalformedManifest(t *testing.T) {
	out := &bytes.Buffer{}
	deps, _, _, _ := testDeps(t, out)
	path := filepath.Join(t.TempDir(), "seedbox.yaml")
	if err := os.WriteFile(path, []byte("Project: x\nReplicas: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if code := Run([]string{"--manifest", path, "validate"}, deps); code != 1 {
		t.Fatal("expected exit 1 for malformed manifest")
	}
}

func TestRunInitWritesLoadableManifest(t *testing.T) {
	out := &bytes.Buffer{}
	deps, _, _, _ := testDeps(t, out)
	path := filepath.Join(t.TempDir(), "seedbox.yaml")

	if code := Run([]string{"--manifest", path, "init", "demo"}, deps); code != 0 {
		t.Fatalf("expected exit 0, got:\n%s", out.String())
	}

	manifest, err := topology.Load(path)
	if err != nil {
		t.Fatalf("generated manifest does not load: %v", err)
	}
	if manifest.Project != "demo" {
		t.Fatalf("unexpected project: %s", manifest.Project)
	}
	if got := len(manifest.Descriptors()); got != 3 {
		t.Fatalf("expected 3 starter resources, got %d", got)
	}
}

type fakePrompter struct {
	answer string
	asked  []string
}

func (f *fakePrompter) Input(title string, _ []string) (string, error) {
	f.asked = append(f.asked, title)
	return f.answer, nil
}

func TestRunInitPromptsWhenProjectOmitted(t *testing.T) {
	out := &bytes.Buffer{}
	deps, _, _, _ := testDeps(t, out)
	prompter := &fakePrompter{answer: "prompted"}
	deps.Prompter = prompter
	path := filepath.Join(t.TempDir(), "seedbox.yaml")

	if code := Run([]string{"--manifest", path, "init"}, deps); code != 0 {
		t.Fatalf("expected exit 0, got:\n%s", out.String())
	}
	if len(prompter.asked) != 1 {
		t.Fatalf("expected one prompt, got %v", prompter.asked)
	}
	manifest, err := topology.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if manifest.Project != "prompted" {
		t.Fatalf("unexpected project: %s", manifest.Project)
	}
}

func TestRunInitRefusesOverwriteWithoutForce(t *testing.T) {
	out := &bytes.Buffer{}
	deps, _, _, _ := testDeps(t, out)
	path := filepath.Join(t.TempDir(), "seedbox.yaml")
	if err := os.WriteFile(path, []byte("Project: keepme\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if code := Run([]string{"--manifest", path, "init"}, deps); code != 1 {
		t.Fatal("expected refusal without --force")
	}
	if code := Run([]string{"--manifest", path, "init", "--force"}, deps); code != 0 {
		t.Fatalf("expected overwrite with --force, got:\n%s", out.String())
	}
}

func TestRunVersion(t *testing.T) {
	out := &bytes.Buffer{}
	deps, _, _, _ := testDeps(t, out)

	if code := Run([]string{"version"}, deps); code != 0 {
		t.Fatal("expected exit 0")
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Fatal("expected version output")
	}
}
