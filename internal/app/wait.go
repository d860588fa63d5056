// Where: internal/app/wait.go
// What: Emulator endpoint readiness probing.
// Why: Seeding must not race a container that is still booting.
package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

type endpointWaiter struct {
	client   *http.Client
	timeout  time.Duration
	interval time.Duration
}

// NewEndpointWaiter probes an endpoint until it answers or the timeout
// elapses. Any HTTP response counts as ready; local emulators routinely
// answer / with 400 while being perfectly usable. Self-signed certificates
// are accepted, matching the emulator connection semantics.
func NewEndpointWaiter(timeout time.Duration) EndpointWaiter {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	return endpointWaiter{
		client: &http.Client{
			Transport: transport,
			Timeout:   1 * time.Second,
		},
		timeout:  timeout,
		interval: 1 * time.Second,
	}
}

func (w endpointWaiter) Wait(ctx context.Context, endpoint string) error {
	if w.client == nil {
		return fmt.Errorf("endpoint waiter client not configured")
	}
	deadline := time.Now().Add(w.timeout)

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		resp, err := w.client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.interval):
		}
	}

	return fmt.Errorf("endpoint %s not ready after %s", endpoint, w.timeout)
}
