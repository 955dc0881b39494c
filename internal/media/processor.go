package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultProcessTimeout = 60 * time.Second

// VariantSpec describes one resized rendition the processor produces.
type VariantSpec struct {
	Name   string `json:"name"`
	MaxDim int    `json:"max_dim"`
	Blur   bool   `json:"blur"`
}

// VariantSpecs are the fixed renditions every post image gets.
var VariantSpecs = []VariantSpec{
	{Name: "lg", MaxDim: 1024},
	{Name: "md", MaxDim: 512},
	{Name: "sm", MaxDim: 256},
	{Name: "blur", MaxDim: 128, Blur: true},
}

// Asset is the stored result for one processed image.
type Asset struct {
	ID       uuid.UUID
	BaseURL  string
	Variants map[string]string
}

// Processor resizes a remote image into the fixed variant set and stores the
// results somewhere publicly resolvable. The implementation is an external
// collaborator; the pipeline only depends on this contract.
type Processor interface {
	Process(ctx context.Context, imageURL string, assetID uuid.UUID) (Asset, error)
}

type processRequest struct {
	ImageURL string        `json:"image_url"`
	AssetID  string        `json:"asset_id"`
	Variants []VariantSpec `json:"variants"`
}

type processResponse struct {
	BaseURL  string            `json:"base_url"`
	Variants map[string]string `json:"variants"`
}

// HTTPProcessor calls a media-processing service over HTTP.
type HTTPProcessor struct {
	endpoint   string
	httpClient *http.Client
}

func NewHTTPProcessor(endpoint string, timeout time.Duration) *HTTPProcessor {
	if timeout <= 0 {
		timeout = DefaultProcessTimeout
	}
	return &HTTPProcessor{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProcessor) Process(ctx context.Context, imageURL string, assetID uuid.UUID) (Asset, error) {
	if p.endpoint == "" {
		return Asset{}, fmt.Errorf("media processor endpoint is not configured")
	}
	if strings.TrimSpace(imageURL) == "" {
		return Asset{}, fmt.Errorf("image URL is empty")
	}

	body, err := json.Marshal(processRequest{
		ImageURL: imageURL,
		AssetID:  assetID.String(),
		Variants: VariantSpecs,
	})
	if err != nil {
		return Asset{}, fmt.Errorf("marshal media request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return Asset{}, fmt.Errorf("build media request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("media request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Asset{}, fmt.Errorf("read media response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Asset{}, fmt.Errorf("media service status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed processResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Asset{}, fmt.Errorf("decode media response: %w", err)
	}
	if len(parsed.Variants) == 0 {
		return Asset{}, fmt.Errorf("media service returned no variants")
	}

	return Asset{
		ID:       assetID,
		BaseURL:  parsed.BaseURL,
		Variants: parsed.Variants,
	}, nil
}
