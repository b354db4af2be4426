package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientGetReturnsBodyAndStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/entries/hello", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[{"word":"hello"}]`))
	}))
	defer server.Close()

	client, err := NewClient(WithHTTPClient(server.Client()))
	require.NoError(t, err)

	result, err := client.Get(context.Background(), server.URL+"/entries/hello", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, result.StatusCode)
	require.JSONEq(t, `[{"word":"hello"}]`, string(result.Body))
}

func TestClientGetKeepsNon2xxResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"title":"No Definitions Found"}`))
	}))
	defer server.Close()

	client, err := NewClient(WithHTTPClient(server.Client()))
	require.NoError(t, err)

	result, err := client.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, result.StatusCode)
	require.Contains(t, string(result.Body), "No Definitions Found")
}

func TestClientGetSendsHeadersAndHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "data.usajobs.gov", r.Host)
		require.Equal(t, "someone@example.com", r.Header.Get("User-Agent"))
		require.Equal(t, "secret", r.Header.Get("Authorization-Key"))
		require.Empty(t, r.Header.Get("Host"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(WithHTTPClient(server.Client()))
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Host", "data.usajobs.gov")
	header.Set("User-Agent", "someone@example.com")
	header.Set("Authorization-Key", "secret")

	_, err = client.Get(context.Background(), server.URL, header)
	require.NoError(t, err)
}

func TestClientGetTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	client, err := NewClient(WithHTTPClient(&http.Client{Timeout: time.Second}))
	require.NoError(t, err)

	result, err := client.Get(context.Background(), target, nil)
	require.Error(t, err)
	require.Nil(t, result)
	require.Contains(t, err.Error(), "send request")
}

func TestClientGetHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(WithHTTPClient(server.Client()))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Get(ctx, server.URL, nil)
	require.Error(t, err)
}

func TestNewClientDefaultTimeout(t *testing.T) {
	client, err := NewClient(WithTimeout(5 * time.Second))
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, client.httpClient.Timeout)

	client, err = NewClient(WithTimeout(0))
	require.NoError(t, err)
	require.Zero(t, client.httpClient.Timeout)
}

func TestTruncateForLog(t *testing.T) {
	body := []byte(strings.Repeat("a", logBodyLimit+10))
	out, truncated := truncateForLog(body, logBodyLimit)
	require.True(t, truncated)
	require.Len(t, out, logBodyLimit)

	out, truncated = truncateForLog([]byte("short"), logBodyLimit)
	require.False(t, truncated)
	require.Equal(t, "short", out)
}
