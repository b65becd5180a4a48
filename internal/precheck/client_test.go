package precheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Check(t *testing.T) {
	var gotUsername string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotUsername = body["username"]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, time.Second)
	require.NoError(t, err)

	require.NoError(t, client.Check(context.Background(), "alice"))
	require.Equal(t, "alice", gotUsername)
}

func TestHTTPClient_CheckRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, time.Second)
	require.NoError(t, err)

	err = client.Check(context.Background(), "alice")
	require.ErrorContains(t, err, "status 502")
}

func TestHTTPClient_BoundedTimeout(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	client, err := NewHTTPClient(server.URL, 50*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	err = client.Check(context.Background(), "alice")
	require.Error(t, err)
	// A stalled dependency must not hold the caller past the hard timeout.
	require.Less(t, time.Since(start), time.Second)
}

func TestNewHTTPClient_RequiresURL(t *testing.T) {
	_, err := NewHTTPClient("   ", time.Second)
	require.Error(t, err)
}

func TestNoop(t *testing.T) {
	require.NoError(t, Noop{}.Check(context.Background(), "anyone"))
}
