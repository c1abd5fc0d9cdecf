package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// GitHub stores documents as files in a repository through the contents API.
// The blob sha doubles as the version token, so a concurrent writer shows up
// as a 409/422 on save.
type GitHub struct {
	base  string // API root, overridable in tests
	token string
	owner string
	repo  string
	http  *http.Client
}

// NewGitHub builds a client for github.com/{owner}/{repo}.
func NewGitHub(token, owner, repo string, timeout time.Duration) *GitHub {
	return &GitHub{
		base:  "https://api.github.com",
		token: token,
		owner: owner,
		repo:  repo,
		http:  &http.Client{Timeout: timeout},
	}
}

type githubContent struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type githubPut struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

type githubPutResp struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

func (g *GitHub) url(key string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.base, g.owner, g.repo, key)
}

func (g *GitHub) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "token "+g.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	return g.http.Do(req)
}

func (g *GitHub) Load(ctx context.Context, key string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url(key), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := g.do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, "", ErrNotFound
	default:
		return nil, "", fmt.Errorf("github load %s: status %d", key, resp.StatusCode)
	}

	var c githubContent
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		return nil, "", err
	}
	data, err := base64.StdEncoding.DecodeString(stripNewlines(c.Content))
	if err != nil {
		return nil, "", fmt.Errorf("github load %s: decode: %w", key, err)
	}
	return data, c.SHA, nil
}

func (g *GitHub) Save(ctx context.Context, key string, data []byte, token string) (string, error) {
	body, err := json.Marshal(githubPut{
		Message: fmt.Sprintf("Update %s - %s", key, time.Now().UTC().Format(time.RFC3339)),
		Content: base64.StdEncoding.EncodeToString(data),
		SHA:     token,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.url(key), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// Stale sha, or create raced an existing file.
		io.Copy(io.Discard, resp.Body)
		return "", ErrConflict
	default:
		return "", fmt.Errorf("github save %s: status %d", key, resp.StatusCode)
	}

	var out githubPutResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Content.SHA, nil
}

// The contents API wraps base64 bodies at 60 columns.
func stripNewlines(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' && s[i] != '\r' {
			buf = append(buf, s[i])
		}
	}
	return string(buf)
}
