package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jpetrucciani/epimetheus/internal/decode"
)

// Fetcher retrieves the raw bytes of one source together with the
// format they should be decoded as.
type Fetcher interface {
	Fetch(ctx context.Context, desc Descriptor) ([]byte, decode.Format, error)
}

// Client fetches from both local files and HTTP endpoints. The HTTP
// client is shared across sources and cycles.
type Client struct {
	http *http.Client
}

// NewClient creates a fetch client with the given HTTP timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// Fetch returns the source's bytes or a *FetchError.
func (c *Client) Fetch(ctx context.Context, desc Descriptor) ([]byte, decode.Format, error) {
	switch desc.Origin {
	case OriginHTTP:
		return c.fetchHTTP(ctx, desc)
	default:
		return c.fetchFile(desc)
	}
}

func (c *Client) fetchFile(desc Descriptor) ([]byte, decode.Format, error) {
	data, err := os.ReadFile(desc.URI)
	if err != nil {
		return nil, decode.FormatUnknown, &FetchError{Source: desc.URI, Err: err}
	}
	return data, desc.Format, nil
}

func (c *Client) fetchHTTP(ctx context.Context, desc Descriptor) ([]byte, decode.Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, desc.URI, nil)
	if err != nil {
		return nil, decode.FormatUnknown, &FetchError{Source: desc.URI, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, decode.FormatUnknown, &FetchError{Source: desc.URI, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decode.FormatUnknown, &FetchError{
			Source: desc.URI,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, decode.FormatUnknown, &FetchError{Source: desc.URI, Err: err}
	}

	format := desc.Format
	if format == decode.FormatUnknown {
		format = FormatFromContentType(resp.Header.Get("Content-Type"))
	}
	return data, format, nil
}
