package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ollamaServer(t *testing.T, models []string, pullStatus int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var pulls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		var resp struct {
			Models []map[string]string `json:"models"`
		}
		for _, m := range models {
			resp.Models = append(resp.Models, map[string]string{"name": m})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/pull", func(w http.ResponseWriter, r *http.Request) {
		pulls.Add(1)
		w.WriteHeader(pullStatus)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &pulls
}

func TestEnsureOllamaModel_Available(t *testing.T) {
	srv, pulls := ollamaServer(t, []string{"nomic-embed-text:latest"}, http.StatusOK)

	require.NoError(t, EnsureOllamaModel(context.Background(), srv.URL, "nomic-embed-text"))
	assert.Zero(t, pulls.Load())
}

func TestEnsureOllamaModel_Pulls(t *testing.T) {
	srv, pulls := ollamaServer(t, nil, http.StatusOK)

	require.NoError(t, EnsureOllamaModel(context.Background(), srv.URL+"/", "nomic-embed-text"))
	assert.Equal(t, int32(1), pulls.Load())
}

func TestEnsureOllamaModel_PullFails(t *testing.T) {
	srv, _ := ollamaServer(t, nil, http.StatusInternalServerError)

	err := EnsureOllamaModel(context.Background(), srv.URL, "nomic-embed-text")
	assert.Error(t, err)
}

func TestEnsureOllamaModel_Unreachable(t *testing.T) {
	srv, _ := ollamaServer(t, nil, http.StatusOK)
	srv.Close()

	err := EnsureOllamaModel(context.Background(), srv.URL, "nomic-embed-text")
	assert.Error(t, err)
}
