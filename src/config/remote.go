package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds the known-extensions request.
const DefaultFetchTimeout = 10 * time.Second

// CommunityExtensionsURL is the shared known-extensions document. It is not
// fetched unless rules.known_extensions_url points at it.
const CommunityExtensionsURL = "https://gist.githubusercontent.com/paulkorir/5b71f57f7a29391f130e53c24a2db3fb/raw/bandbox.json"

// remoteFormats is the known-extensions document. file_formats is either a
// "|" separated string or a list.
type remoteFormats struct {
	FileFormats json.RawMessage `json:"file_formats"`
}

// FetchKnownExtensions downloads the known-extensions document at url. A nil
// client means http.DefaultClient.
func FetchKnownExtensions(ctx context.Context, client *http.Client, url string) ([]string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("GET %s: %d %s", url, resp.StatusCode, truncateBody(body, 512))
	}

	var doc remoteFormats
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return parseFormats(doc.FileFormats)
}

func parseFormats(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing file_formats")
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return splitFormats(strings.Split(joined, "|")), nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("file_formats must be a string or a list of strings")
	}
	return splitFormats(list), nil
}

func splitFormats(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MergeKnownExtensions appends exts that cfg does not already list.
func (c *Config) MergeKnownExtensions(exts []string) {
	seen := make(map[string]bool, len(c.Rules.KnownExtensions))
	for _, e := range c.Rules.KnownExtensions {
		seen[Fold(e)] = true
	}
	for _, e := range exts {
		if !seen[Fold(e)] {
			seen[Fold(e)] = true
			c.Rules.KnownExtensions = append(c.Rules.KnownExtensions, e)
		}
	}
}

func truncateBody(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
