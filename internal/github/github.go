// Package github fetches repository files for evaluation via the GitHub REST
// API. Only textual files are returned; binaries and oversized blobs are
// skipped so prompt assembly never sees them.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
)

const (
	apiBase = "https://api.github.com"
	rawBase = "https://raw.githubusercontent.com"

	// maxBlobSize skips anything too large to be a source file worth reading.
	maxBlobSize = 512 * 1024
)

// File is one repository file prepared for prompt assembly.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type Client struct {
	HTTP  *http.Client
	Token string
}

func New(token string) *Client {
	return &Client{
		HTTP:  &http.Client{Timeout: 60 * time.Second},
		Token: strings.TrimSpace(token),
	}
}

// FetchRepositoryFiles lists the repository tree and downloads up to maxFiles
// textual files. Directory listing failures abort; individual file download
// failures just skip the file.
func (c *Client) FetchRepositoryFiles(ctx context.Context, repoURL string, maxFiles int) ([]File, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	branch, err := c.defaultBranch(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	entries, err := c.tree(ctx, owner, repo, branch)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, maxFiles)
	for _, e := range entries {
		if len(files) >= maxFiles {
			break
		}
		if e.Type != "blob" || e.Size > maxBlobSize || !IsTextPath(e.Path) {
			continue
		}
		content, err := c.rawFile(ctx, owner, repo, branch, e.Path)
		if err != nil {
			continue
		}
		files = append(files, File{Path: e.Path, Content: content})
	}
	return files, nil
}

// ParseRepoURL extracts owner and repository name from a GitHub URL.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	s := strings.TrimSpace(repoURL)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if !strings.HasPrefix(s, "github.com/") {
		return "", "", fmt.Errorf("not a github.com URL: %s", repoURL)
	}
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.TrimSuffix(s, "/")
	parts := strings.Split(s, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("cannot parse owner/repo from %s", repoURL)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

var textExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".java": true, ".c": true, ".h": true, ".cpp": true, ".hpp": true, ".cs": true,
	".rb": true, ".rs": true, ".php": true, ".swift": true, ".kt": true, ".scala": true,
	".html": true, ".css": true, ".scss": true, ".sql": true, ".sh": true, ".bat": true,
	".md": true, ".txt": true, ".json": true, ".yaml": true, ".yml": true, ".toml": true,
	".xml": true, ".ini": true, ".cfg": true, ".env": true, ".mod": true, ".sum": true,
	".gradle": true, ".properties": true, ".dockerfile": true,
}

var textBasenames = map[string]bool{
	"dockerfile": true, "makefile": true, "readme": true, "license": true,
	".gitignore": true, "requirements.txt": true,
}

// IsTextPath reports whether a path looks like a source/text file.
func IsTextPath(p string) bool {
	base := strings.ToLower(path.Base(p))
	if textBasenames[base] {
		return true
	}
	return textExtensions[strings.ToLower(path.Ext(p))]
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

func (c *Client) defaultBranch(ctx context.Context, owner, repo string) (string, error) {
	var out struct {
		DefaultBranch string `json:"default_branch"`
	}
	url := fmt.Sprintf("%s/repos/%s/%s", apiBase, owner, repo)
	if err := c.getJSON(ctx, url, &out); err != nil {
		return "", err
	}
	if out.DefaultBranch == "" {
		return "main", nil
	}
	return out.DefaultBranch, nil
}

func (c *Client) tree(ctx context.Context, owner, repo, branch string) ([]treeEntry, error) {
	var out struct {
		Tree []treeEntry `json:"tree"`
	}
	url := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", apiBase, owner, repo, branch)
	if err := c.getJSON(ctx, url, &out); err != nil {
		return nil, err
	}
	return out.Tree, nil
}

func (c *Client) rawFile(ctx context.Context, owner, repo, branch, p string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/%s/%s", rawBase, owner, repo, branch, p)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	c.auth(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("raw fetch %s: status %d", p, resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBlobSize+1))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	c.auth(req)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github api %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) auth(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}
