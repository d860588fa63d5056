// Where: internal/topology/topology.go
// What: Topology manifest structs and resource descriptors.
// Why: One static declaration of what exists; consumed at startup, never re-evaluated.
//
// NOTE: Keep this package free of SDK dependencies. The resolver and store
// layers are responsible for mapping descriptors to live clients.
package topology

import "strings"

// Kind identifies the category of a declared resource.
type Kind string

const (
	KindDocumentContainer Kind = "document-container"
	KindBlobContainer     Kind = "blob-container"
	KindQueue             Kind = "queue"
)

// Manifest is the root of the topology declaration.
type Manifest struct {
	Project  string        `json:"Project" yaml:"Project"`
	Database *DatabaseSpec `json:"Database,omitempty" yaml:"Database,omitempty"`
	Storage  *StorageSpec  `json:"Storage,omitempty" yaml:"Storage,omitempty"`
}

// DatabaseSpec declares the document database and its containers.
type DatabaseSpec struct {
	Name       string          `json:"Name" yaml:"Name"`
	Emulator   *EmulatorSpec   `json:"Emulator,omitempty" yaml:"Emulator,omitempty"`
	Containers []ContainerSpec `json:"Containers,omitempty" yaml:"Containers,omitempty"`
}

// StorageSpec declares the object-storage account, its blob containers, and queues.
type StorageSpec struct {
	Name          string        `json:"Name" yaml:"Name"`
	BlobEmulator  *EmulatorSpec `json:"BlobEmulator,omitempty" yaml:"BlobEmulator,omitempty"`
	QueueEmulator *EmulatorSpec `json:"QueueEmulator,omitempty" yaml:"QueueEmulator,omitempty"`
	Blobs         []BlobSpec    `json:"Blobs,omitempty" yaml:"Blobs,omitempty"`
	Queues        []QueueSpec   `json:"Queues,omitempty" yaml:"Queues,omitempty"`
}

// EmulatorSpec declares how a locally hosted substitute is reached.
// Endpoint is the declared local endpoint; Service and ContainerPort allow
// published-port discovery when Docker Compose assigns an ephemeral port.
type EmulatorSpec struct {
	Endpoint      string `json:"Endpoint,omitempty" yaml:"Endpoint,omitempty"`
	Service       string `json:"Service,omitempty" yaml:"Service,omitempty"`
	ContainerPort int    `json:"ContainerPort,omitempty" yaml:"ContainerPort,omitempty"`
}

// ContainerSpec declares a document container and its partition-key path.
type ContainerSpec struct {
	Name             string `json:"Name" yaml:"Name"`
	PartitionKeyPath string `json:"PartitionKeyPath,omitempty" yaml:"PartitionKeyPath,omitempty"`
}

// BlobSpec declares a blob container.
type BlobSpec struct {
	Name string `json:"Name" yaml:"Name"`
}

// QueueSpec declares a queue.
type QueueSpec struct {
	Name string `json:"Name" yaml:"Name"`
}

// ParentRef identifies the account or database a resource belongs to.
// For emulated parents the connection endpoint and port-discovery hints live
// here; for live parents the endpoint stays empty and the default credential
// chain applies.
type ParentRef struct {
	Name          string
	Endpoint      string
	Service       string
	ContainerPort int
}

// ResourceDescriptor is an immutable handle on one declared resource.
// Built once at topology-build time and owned by the orchestration layer;
// the seeding core only ever references it.
type ResourceDescriptor struct {
	Name             string
	Kind             Kind
	Parent           *ParentRef
	IsEmulator       bool
	PartitionKeyPath string
}

// Key returns a process-unique identity for the resource instance.
func (r ResourceDescriptor) Key() string {
	return string(r.Kind) + "/" + r.Name
}

// Descriptors expands the manifest into resource handles, one per declared
// document container, blob container, and queue.
func (m Manifest) Descriptors() []ResourceDescriptor {
	var out []ResourceDescriptor

	if db := m.Database; db != nil {
		parent := parentFrom(db.Name, db.Emulator)
		for _, c := range db.Containers {
			out = append(out, ResourceDescriptor{
				Name:             c.Name,
				Kind:             KindDocumentContainer,
				Parent:           parent,
				IsEmulator:       db.Emulator != nil,
				PartitionKeyPath: c.PartitionKeyPath,
			})
		}
	}

	if st := m.Storage; st != nil {
		blobParent := parentFrom(st.Name, st.BlobEmulator)
		for _, b := range st.Blobs {
			out = append(out, ResourceDescriptor{
				Name:       b.Name,
				Kind:       KindBlobContainer,
				Parent:     blobParent,
				IsEmulator: st.BlobEmulator != nil,
			})
		}
		queueParent := parentFrom(st.Name, st.QueueEmulator)
		for _, q := range st.Queues {
			out = append(out, ResourceDescriptor{
				Name:       q.Name,
				Kind:       KindQueue,
				Parent:     queueParent,
				IsEmulator: st.QueueEmulator != nil,
			})
		}
	}

	return out
}

func parentFrom(name string, emulator *EmulatorSpec) *ParentRef {
	ref := &ParentRef{Name: strings.TrimSpace(name)}
	if emulator != nil {
		ref.Endpoint = strings.TrimSpace(emulator.Endpoint)
		ref.Service = strings.TrimSpace(emulator.Service)
		ref.ContainerPort = emulator.ContainerPort
	}
	return ref
}
