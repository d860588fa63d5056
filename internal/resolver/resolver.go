// Where: internal/resolver/resolver.go
// What: Connection target resolution for declared resources.
// Why: Emulated and live deployments need different transport, credential, and TLS semantics.
package resolver

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/zerolog"

	"github.com/seedbox-dev/seedbox/internal/telemetry"
	"github.com/seedbox-dev/seedbox/internal/topology"
)

// TransportMode selects how clients reach the resource.
type TransportMode string

const (
	// TransportGateway is the local/emulator mode: declared endpoint,
	// self-signed certificates accepted.
	TransportGateway TransportMode = "gateway"
	// TransportDirect is the live mode: regional endpoints, standard
	// certificate validation.
	TransportDirect TransportMode = "direct"
)

// ConnectionTarget is everything a store adapter needs to build a client.
// Consistency stays at the SDK default (eventually consistent reads) in both
// modes; a dev seed workload never asks for more.
type ConnectionTarget struct {
	Endpoint           string
	Region             string
	Transport          TransportMode
	InsecureSkipVerify bool
	Config             aws.Config
}

// Redacted returns a loggable identifier for the target. The full endpoint
// may embed credentials and never appears in logs.
func (t ConnectionTarget) Redacted() string {
	if t.Endpoint == "" {
		return "direct:" + t.Region
	}
	return telemetry.Redact(t.Endpoint)
}

// ConnectionResolutionError reports a failed resolution. It is fatal to the
// single import routine that raised it and to nothing else.
type ConnectionResolutionError struct {
	Resource string
	Reason   string
	Err      error
}

func (e *ConnectionResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve connection for %s: %s: %v", e.Resource, e.Reason, e.Err)
	}
	return fmt.Sprintf("resolve connection for %s: %s", e.Resource, e.Reason)
}

func (e *ConnectionResolutionError) Unwrap() error { return e.Err }

// Settings carries the resolver's environment-derived inputs, parsed once by
// the caller. The resolver itself never reads the process environment.
type Settings struct {
	Region         string
	ComposeProject string
	Ports          PortOverrides
	Credentials    EmulatorCredentials
}

// PortOverrides pins emulator host ports. Zero means discover the published
// port via Docker or fall back to the declared endpoint.
type PortOverrides struct {
	Document int
	Blob     int
	Queue    int
}

func (p PortOverrides) forKind(kind topology.Kind) int {
	switch kind {
	case topology.KindDocumentContainer:
		return p.Document
	case topology.KindBlobContainer:
		return p.Blob
	case topology.KindQueue:
		return p.Queue
	}
	return 0
}

// EmulatorCredentials are the static dev credentials handed to emulated
// services. Empty fields fall back to "dummy".
type EmulatorCredentials struct {
	DatabaseAccessKey string
	DatabaseSecretKey string
	StorageAccessKey  string
	StorageSecretKey  string
}

func (c EmulatorCredentials) forKind(kind topology.Kind) (string, string) {
	access, secret := c.StorageAccessKey, c.StorageSecretKey
	if kind == topology.KindDocumentContainer {
		access, secret = c.DatabaseAccessKey, c.DatabaseSecretKey
	}
	if access == "" {
		access = "dummy"
	}
	if secret == "" {
		secret = "dummy"
	}
	return access, secret
}

// Resolver maps resource descriptors to connection targets.
type Resolver struct {
	Settings Settings
	Ports    PortResolver
	Logger   zerolog.Logger

	// loadLive is the seam for live-mode SDK config loading.
	loadLive func(ctx context.Context, region string) (aws.Config, error)
}

// New creates a Resolver. ports may be nil when no Docker discovery is
// available; declared endpoints and configured overrides still work.
func New(settings Settings, ports PortResolver, logger zerolog.Logger) *Resolver {
	return &Resolver{
		Settings: settings,
		Ports:    ports,
		Logger:   telemetry.Component(logger, "resolver"),
		loadLive: func(ctx context.Context, region string) (aws.Config, error) {
			return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		},
	}
}

// Resolve yields the connection target for one declared resource.
// The emulator branch pins the declared local endpoint (with published-port
// discovery), accepts self-signed certificates, and uses static dev
// credentials. The live branch uses the default credential chain and
// standard certificate validation.
func (r *Resolver) Resolve(ctx context.Context, resource topology.ResourceDescriptor) (ConnectionTarget, error) {
	if err := ctx.Err(); err != nil {
		return ConnectionTarget{}, &ConnectionResolutionError{
			Resource: resource.Key(), Reason: "cancelled before resolution", Err: err,
		}
	}
	if resource.Parent == nil || resource.Parent.Name == "" {
		return ConnectionTarget{}, &ConnectionResolutionError{
			Resource: resource.Key(), Reason: "parent chain incomplete",
		}
	}

	if !resource.IsEmulator {
		cfg, err := r.loadLive(ctx, r.Settings.Region)
		if err != nil {
			return ConnectionTarget{}, &ConnectionResolutionError{
				Resource: resource.Key(), Reason: "load live configuration", Err: err,
			}
		}
		target := ConnectionTarget{
			Region:    r.Settings.Region,
			Transport: TransportDirect,
			Config:    cfg,
		}
		r.Logger.Debug().
			Str("resource", resource.Key()).
			Str("target", target.Redacted()).
			Msg("resolved live connection")
		return target, nil
	}

	endpoint, err := r.emulatorEndpoint(ctx, resource)
	if err != nil {
		return ConnectionTarget{}, err
	}

	access, secret := r.Settings.Credentials.forKind(resource.Kind)
	target := ConnectionTarget{
		Endpoint:           endpoint,
		Region:             r.Settings.Region,
		Transport:          TransportGateway,
		InsecureSkipVerify: true,
		Config: aws.Config{
			Region:      r.Settings.Region,
			Credentials: credentials.NewStaticCredentialsProvider(access, secret, ""),
			HTTPClient:  insecureHTTPClient(),
		},
	}
	r.Logger.Debug().
		Str("resource", resource.Key()).
		Str("target", target.Redacted()).
		Msg("resolved emulator connection")
	return target, nil
}

func (r *Resolver) emulatorEndpoint(ctx context.Context, resource topology.ResourceDescriptor) (string, error) {
	parent := resource.Parent
	declared, err := url.Parse(parent.Endpoint)
	if parent.Endpoint != "" && err != nil {
		return "", &ConnectionResolutionError{
			Resource: resource.Key(), Reason: "declared endpoint unparsable", Err: err,
		}
	}
	if parent.Endpoint == "" && parent.Service == "" {
		return "", &ConnectionResolutionError{
			Resource: resource.Key(), Reason: "emulator declares neither endpoint nor service",
		}
	}

	declaredPort := 0
	scheme := "http"
	host := "localhost"
	if parent.Endpoint != "" {
		if p := declared.Port(); p != "" {
			declaredPort, _ = strconv.Atoi(p)
		}
		if declared.Scheme != "" {
			scheme = declared.Scheme
		}
		if h := declared.Hostname(); h != "" {
			host = h
		}
	}

	request := PortRequest{
		Project:       r.Settings.ComposeProject,
		Service:       parent.Service,
		ContainerPort: parent.ContainerPort,
	}
	port, ok := resolvePort(ctx, r.Settings.Ports.forKind(resource.Kind), declaredPort, request, r.Ports)
	if !ok {
		return "", &ConnectionResolutionError{
			Resource: resource.Key(), Reason: "emulator port not resolved",
		}
	}

	return fmt.Sprintf("%s://%s:%d", scheme, host, port), nil
}

// insecureHTTPClient accepts self-signed endpoints. Emulators terminate TLS
// with certificates no system trust store knows.
func insecureHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
		Timeout: 30 * time.Second,
	}
}
