// Package util holds helpers shared by the end-to-end tests.
package util

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	ServerTimeout = 5 * time.Second
	MetricTimeout = 5 * time.Second

	pollInterval = 50 * time.Millisecond
)

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
`

// FreeAddr returns a loopback address with a port that was free a moment ago.
func FreeAddr() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	addr := ln.Addr().String()
	return addr, ln.Close()
}

// poll calls check until it reports done, returns an error, or ctx ends.
func poll(ctx context.Context, what string, check func() (bool, error)) error {
	for {
		ok, err := check()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", what, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

func get(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, body, err
}

// WaitForServer waits until the prediction service at addr() answers its
// ping route. addr is re-read on every attempt since the listener may not
// be bound yet.
func WaitForServer(ctx context.Context, addr func() string) error {
	return poll(ctx, "prediction service not ready", func() (bool, error) {
		a := addr()
		if a == "" {
			return false, nil
		}
		code, _, err := get(ctx, "http://"+a+"/ping")
		return err == nil && code == http.StatusOK, nil
	})
}

// WaitForMetric waits until the scrape output of metricsURL contains substr.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	return poll(ctx, fmt.Sprintf("metric %q not found", substr), func() (bool, error) {
		_, body, err := get(ctx, metricsURL)
		return err == nil && strings.Contains(string(body), substr), nil
	})
}

// StartMosquitto runs an anonymous Mosquitto broker in a container and
// returns its tcp:// URL together with a terminate func.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			Reader:            strings.NewReader(mosquittoConf),
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return "", nil, err
	}
	stop := func() { _ = cont.Terminate(context.Background()) }

	endpoint, err := cont.PortEndpoint(ctx, "1883/tcp", "tcp")
	if err != nil {
		stop()
		return "", nil, err
	}
	return endpoint, stop, nil
}
