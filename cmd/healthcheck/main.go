// Command healthcheck probes a running lovejar server from inside its
// container and exits non-zero unless the health endpoint reports "ok".
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultAddr = "127.0.0.1:8080"
	defaultPath = "/api/v1/health"
	timeout     = 2 * time.Second
)

// healthBody mirrors the fields of the API's health response we rely on.
type healthBody struct {
	Status string `json:"status"`
}

func main() {
	target := healthURL(os.Getenv("LOVEJAR_LISTEN_ADDR"), os.Getenv("LOVEJAR_HEALTHCHECK_PATH"))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := probe(ctx, &http.Client{Timeout: timeout}, target); err != nil {
		fmt.Fprintln(os.Stderr, "healthcheck:", err)
		os.Exit(1)
	}
}

// probe GETs target and requires a 200 response whose body has status "ok".
func probe(ctx context.Context, client *http.Client, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body healthBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("server reports status %q", body.Status)
	}

	return nil
}

// healthURL builds the probe URL. The bind-all address is rewritten to
// loopback since the probe runs inside the server's container.
func healthURL(addr, path string) string {
	host, port, err := net.SplitHostPort(addr)
	switch {
	case addr == "" || err != nil:
		addr = defaultAddr
	case host == "" || host == "0.0.0.0" || host == "::":
		addr = net.JoinHostPort("127.0.0.1", port)
	}

	if path == "" {
		path = defaultPath
	} else if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return "http://" + addr + path
}
