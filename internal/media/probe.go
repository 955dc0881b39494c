package media

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const DefaultProbeTimeout = 5 * time.Second

// ImageProbe checks whether an image URL is worth downloading. The probe
// fails closed: any transport error, non-200 status or non-image content
// type counts as unreachable.
type ImageProbe struct {
	httpClient *http.Client
}

func NewImageProbe(timeout time.Duration) *ImageProbe {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &ImageProbe{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CheckImage issues a HEAD request and reports whether the URL serves an image.
func (p *ImageProbe) CheckImage(ctx context.Context, imageURL string) bool {
	if strings.TrimSpace(imageURL) == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	return strings.HasPrefix(resp.Header.Get("Content-Type"), "image/")
}
