package restyutil

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func enableDebugLogging(t *testing.T) {
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(
		io.Discard,
		&slog.HandlerOptions{Level: slog.LevelDebug},
	)))
	t.Cleanup(func() { slog.SetDefault(prev) })
}

type memoryOutput struct {
	mu       sync.Mutex
	messages map[string]string
}

func (o *memoryOutput) Write(id string, contents string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages[id] = contents
}

func TestInstrumentClientDumpsExchanges(t *testing.T) {
	enableDebugLogging(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "hello")
	}))
	defer server.Close()

	output := &memoryOutput{messages: map[string]string{}}
	client := resty.New()
	InstrumentClient(client, nil, output)

	_, err := client.R().Get(server.URL)
	require.NoError(t, err)

	require.Len(t, output.messages, 1)
	for _, message := range output.messages {
		require.Contains(t, message, "GET "+server.URL)
		require.Contains(t, message, "hello")
	}
}

func TestNewScraperClientWritesDumps(t *testing.T) {
	enableDebugLogging(t)
	dir := filepath.Join(t.TempDir(), "dumps")
	t.Setenv(HttpDumpEnvVar, dir)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "ok")
	}))
	defer server.Close()

	client := NewScraperClient()
	_, err := client.R().Get(server.URL)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
