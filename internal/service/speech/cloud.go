package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// CloudClient fetches MP3 audio from the translate text-to-speech endpoint.
// The regional host is derived from the profile's TLD; baseURL overrides it
// for tests and self-hosted mirrors.
type CloudClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCloudClient creates the cloud backend. An empty baseURL selects the
// public per-region hosts.
func NewCloudClient(baseURL string, timeout time.Duration) *CloudClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CloudClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Synthesize renders text with the given profile and returns MP3 bytes.
func (c *CloudClient) Synthesize(ctx context.Context, profile CloudProfile, text string) ([]byte, error) {
	endpoint := c.baseURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://translate.google.%s/translate_tts", profile.TLD)
	}

	query := url.Values{}
	query.Set("ie", "UTF-8")
	query.Set("client", "tw-ob")
	query.Set("tl", profile.Language)
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build TTS request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS endpoint returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read TTS response: %w", err)
	}
	return audio, nil
}
