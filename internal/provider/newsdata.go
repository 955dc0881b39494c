package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	payloadschema "nisee.app/newsflow/schema"
)

const (
	DefaultBaseURL        = "https://newsdata.io/api/1/latest"
	DefaultRequestTimeout = 30 * time.Second
)

// Query is one provider request for a (category, sub-category) pair.
type Query struct {
	Term            string
	Category        string
	Language        string
	Country         string
	FullContent     bool
	Image           bool
	RemoveDuplicate bool
}

type latestResponse struct {
	Status       string            `json:"status"`
	TotalResults int               `json:"totalResults"`
	Results      []json.RawMessage `json:"results"`
}

// Client calls the external news provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("news provider api key is required")
	}
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse provider base URL %q: %w", base, err)
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &Client{
		baseURL:    base,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// FetchLatest requests the latest articles for the query and returns the
// schema-valid ones. Invalid article objects are logged and dropped; a
// failed request or a non-success provider status is an error.
func (c *Client) FetchLatest(ctx context.Context, query Query) ([]*payloadschema.Article, error) {
	requestURL, err := c.buildURL(query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed latestResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	if !strings.EqualFold(parsed.Status, "success") {
		return nil, fmt.Errorf("provider returned status %q", parsed.Status)
	}

	articles := make([]*payloadschema.Article, 0, len(parsed.Results))
	for i, raw := range parsed.Results {
		article, err := payloadschema.ValidateArticle(raw)
		if err != nil {
			c.logger.Warn().Err(err).Int("index", i).Msg("dropping invalid provider article")
			continue
		}
		articles = append(articles, article)
	}

	c.logger.Info().
		Str("term", query.Term).
		Str("category", query.Category).
		Int("fetched", len(parsed.Results)).
		Int("valid", len(articles)).
		Msg("provider fetch completed")

	return articles, nil
}

func (c *Client) buildURL(query Query) (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse provider base URL: %w", err)
	}

	values := parsed.Query()
	values.Set("apikey", c.apiKey)
	if term := strings.TrimSpace(query.Term); term != "" {
		values.Set("q", term)
	}
	if category := strings.TrimSpace(query.Category); category != "" {
		values.Set("category", category)
	}
	if language := strings.TrimSpace(query.Language); language != "" {
		values.Set("language", language)
	}
	if country := strings.TrimSpace(query.Country); country != "" {
		values.Set("country", country)
	}
	if query.FullContent {
		values.Set("full_content", "1")
	}
	if query.Image {
		values.Set("image", "1")
	}
	if query.RemoveDuplicate {
		values.Set("removeduplicate", "1")
	}

	parsed.RawQuery = values.Encode()
	return parsed.String(), nil
}
