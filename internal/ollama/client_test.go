package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReachable(t *testing.T) {
	t.Run("up", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			w.Write([]byte(`{"models":[]}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "llama3.2")
		assert.True(t, c.Reachable(context.Background()))
	})

	t.Run("down", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		c := NewClient(url, "llama3.2")
		assert.False(t, c.Reachable(context.Background()))
	})
}

func TestGenerate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/generate", r.URL.Path)
			var req generateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "llama3.2", req.Model)
			assert.False(t, req.Stream)
			json.NewEncoder(w).Encode(generateResponse{Response: " The tower opened in 1889. "})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "llama3.2")
		got, err := c.Generate(context.Background(), "when did the tower open?")
		require.NoError(t, err)
		assert.Equal(t, "The tower opened in 1889.", got)
	})

	t.Run("empty response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(generateResponse{Response: "  "})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "llama3.2")
		_, err := c.Generate(context.Background(), "question")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "llama3.2")
		_, err := c.Generate(context.Background(), "question")
		assert.ErrorContains(t, err, "HTTP 500")
	})
}
