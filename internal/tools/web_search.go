package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agenthub/internal/catalog"
)

const maxSearchResults = 5

type searxngResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// newWebSearchTool queries a SearXNG instance and formats the top results
// for the model.
func newWebSearchTool(baseURL string) *Tool {
	baseURL = strings.TrimSuffix(baseURL, "/")
	client := &http.Client{Timeout: 15 * time.Second}

	return &Tool{
		Name:        catalog.ToolWebSearch,
		Description: "Search the web for current information. Returns the top results with title, URL and a snippet.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The search query",
				},
			},
			"required": []string{"query"},
		},
		Execute: func(ctx context.Context, args map[string]interface{}, _ *Invocation) (string, error) {
			query, err := stringArg(args, "query")
			if err != nil {
				return "", err
			}

			searchURL := fmt.Sprintf("%s/search?q=%s&format=json", baseURL, url.QueryEscape(query))
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
			if err != nil {
				return "", fmt.Errorf("failed to create search request: %w", err)
			}

			resp, err := client.Do(req)
			if err != nil {
				return "", fmt.Errorf("search request failed: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				return "", fmt.Errorf("search failed (status %d): %s", resp.StatusCode, string(body))
			}

			var parsed searxngResponse
			if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
				return "", fmt.Errorf("failed to decode search response: %w", err)
			}

			if len(parsed.Results) == 0 {
				return "No results found.", nil
			}

			var sb strings.Builder
			for i, result := range parsed.Results {
				if i >= maxSearchResults {
					break
				}
				fmt.Fprintf(&sb, "%d. %s\n%s\n%s\n\n", i+1, result.Title, result.URL, result.Content)
			}
			return strings.TrimSpace(sb.String()), nil
		},
	}
}
