package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCtyDat = `Finland:                  15:  18:  EU:   61.38:   -24.82:    -2.0:  OH:
    OF,OG,OH,OI,OJ,=OH/RX3AMI/LH;
United States:            05:  08:  NA:   37.53:    91.67:     5.0:  K:
    AA,K,N,W,KH6(31)[61]<21.12/157.48>{OC}~10.0~;
`

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

// setupTestEnv points the application at a local country file and a temporary
// data directory. It returns the port the API will listen on.
func setupTestEnv(t *testing.T, ctyContent string) int {
	t.Helper()
	dir := t.TempDir()
	ctyPath := filepath.Join(dir, "cty.dat")
	require.NoError(t, os.WriteFile(ctyPath, []byte(ctyContent), 0644))

	port := freePort(t)
	t.Setenv("WEBPORT", strconv.Itoa(port))
	t.Setenv("WEBURL", "/api")
	t.Setenv("DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("CTY_FILE", ctyPath)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("REDIS_ENABLED", "false")
	return port
}

func waitForHealthy(t *testing.T, url string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server at %s never became healthy", url)
}

func TestRunApplication_ServesLookups(t *testing.T) {
	port := setupTestEnv(t, testCtyDat)
	base := fmt.Sprintf("http://127.0.0.1:%d/api", port)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() { done <- RunApplication(ctx, nil) }()

	waitForHealthy(t, base+"/healthz")

	resp, err := http.Get(base + "/lookup/KH6XYZ")
	require.NoError(t, err)
	var res map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "United States", res["country"])
	assert.Equal(t, "OC", res["cont"])

	resp, err = http.Get(base + "/lookup/ZZ9ZZ")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The health check subcommand probes the running instance.
	assert.Equal(t, 0, RunApplication(context.Background(), []string{"healthcheck"}))

	cancel()
	select {
	case status := <-done:
		assert.Equal(t, 0, status)
	case <-time.After(15 * time.Second):
		t.Fatal("RunApplication did not return after cancel")
	}
}

func TestRunApplication_HealthcheckWithoutServer(t *testing.T) {
	setupTestEnv(t, testCtyDat)
	assert.Equal(t, 1, RunApplication(context.Background(), []string{"HealthCheck"}))
}

func TestRunApplication_BadCountryFile(t *testing.T) {
	setupTestEnv(t, "Finland: 15: 18: EU\n")
	assert.Equal(t, 1, RunApplication(context.Background(), nil))
}

func TestRunApplication_BadConfig(t *testing.T) {
	setupTestEnv(t, testCtyDat)
	t.Setenv("WEBPORT", "70000")
	assert.Equal(t, 1, RunApplication(context.Background(), nil))
}
