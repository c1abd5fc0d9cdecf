package storage

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContentsAPI emulates just enough of the GitHub contents API: one file
// per path, sha bumped on every write, stale-sha writes rejected.
type fakeContentsAPI struct {
	mu    sync.Mutex
	files map[string]fakeFile
}

type fakeFile struct {
	data []byte
	sha  string
}

func (f *fakeContentsAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		path := r.URL.Path

		switch r.Method {
		case http.MethodGet:
			file, ok := f.files[path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"content": base64.StdEncoding.EncodeToString(file.data),
				"sha":     file.sha,
			})
		case http.MethodPut:
			var body struct {
				Content string `json:"content"`
				SHA     string `json:"sha"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			file, exists := f.files[path]
			if exists && body.SHA != file.sha {
				w.WriteHeader(http.StatusConflict)
				return
			}
			if !exists && body.SHA != "" {
				w.WriteHeader(http.StatusUnprocessableEntity)
				return
			}
			data, err := base64.StdEncoding.DecodeString(body.Content)
			require.NoError(t, err)
			newSHA := file.sha + "x"
			if newSHA == "x" {
				newSHA = "sha-1"
			}
			f.files[path] = fakeFile{data: data, sha: newSHA}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"content": map[string]string{"sha": newSHA},
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func newTestGitHub(t *testing.T) (*GitHub, *fakeContentsAPI) {
	t.Helper()
	api := &fakeContentsAPI{files: make(map[string]fakeFile)}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	g := NewGitHub("tok", "owner", "repo", 5*time.Second)
	g.base = srv.URL
	return g, api
}

func TestGitHub_LoadMissing(t *testing.T) {
	g, _ := newTestGitHub(t)
	_, _, err := g.Load(context.Background(), "get_status.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGitHub_RoundTrip(t *testing.T) {
	g, _ := newTestGitHub(t)
	ctx := context.Background()

	token, err := g.Save(ctx, "get_status.json", []byte(`{"alice":{}}`), "")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	data, sha, err := g.Load(ctx, "get_status.json")
	require.NoError(t, err)
	assert.Equal(t, token, sha)
	assert.JSONEq(t, `{"alice":{}}`, string(data))

	token2, err := g.Save(ctx, "get_status.json", []byte(`{"alice":{"2024-06-10":"complete"}}`), token)
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
}

func TestGitHub_StaleShaConflicts(t *testing.T) {
	g, _ := newTestGitHub(t)
	ctx := context.Background()

	token, err := g.Save(ctx, "doc.json", []byte("v1"), "")
	require.NoError(t, err)
	_, err = g.Save(ctx, "doc.json", []byte("v2"), token)
	require.NoError(t, err)

	_, err = g.Save(ctx, "doc.json", []byte("v3"), token)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGitHub_WrappedBase64Body(t *testing.T) {
	// The real API wraps base64 bodies at 60 columns; Load must cope.
	raw := base64.StdEncoding.EncodeToString([]byte(`{"bob":{"2024-06-10":"incomplete"}}`))
	wrapped := raw[:20] + "\n" + raw[20:40] + "\n" + raw[40:] + "\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"content": wrapped, "sha": "sha-1"})
	}))
	t.Cleanup(srv.Close)

	g := NewGitHub("tok", "owner", "repo", 5*time.Second)
	g.base = srv.URL

	data, sha, err := g.Load(context.Background(), "doc.json")
	require.NoError(t, err)
	assert.Equal(t, "sha-1", sha)
	assert.JSONEq(t, `{"bob":{"2024-06-10":"incomplete"}}`, string(data))
}
