package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelworks/auction-cli/internal/resilience"
)

func testOptions() Options {
	return Options{
		UserAgent:   "test-agent",
		MaxAttempts: 3,
		RatePerSec:  1000,
	}
}

func TestFetchPage(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte("<html>lot page</html>"))
	}))
	defer srv.Close()

	body, err := New(testOptions()).FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>lot page</html>", string(body))
	assert.Equal(t, "test-agent", gotUA)
	assert.Contains(t, gotAccept, "text/html")
}

func TestFetchPage_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	body, err := New(testOptions()).FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchPage_NoRetryOnPermanentStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(testOptions()).FetchPage(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, resilience.IsPermanent(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchPage_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	opts := testOptions()
	opts.MaxAttempts = 2
	_, err := New(opts).FetchPage(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchPage_MalformedURL(t *testing.T) {
	t.Parallel()

	_, err := New(testOptions()).FetchPage(context.Background(), "not a url")
	require.Error(t, err)
	assert.True(t, resilience.IsPermanent(err))
}

func TestDownloadToFile(t *testing.T) {
	t.Parallel()

	payload := []byte("fake jpeg bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "lot_1_main.jpg")
	n, err := New(testOptions()).DownloadToFile(context.Background(), srv.URL, path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, written)
}

func TestDownloadToFile_NoRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "asset.jpg")
	_, err := New(testOptions()).DownloadToFile(context.Background(), srv.URL, path)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "asset downloads must not retry")
	assert.NoFileExists(t, path)
}

func TestOptionsDefaults(t *testing.T) {
	t.Parallel()

	opts := Options{}.withDefaults()
	assert.NotEmpty(t, opts.UserAgent)
	assert.Equal(t, 3, opts.MaxAttempts)
	assert.Greater(t, opts.PageTimeout, opts.AssetTimeout)
}
