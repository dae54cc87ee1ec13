/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package remote fetches JSON-LD context documents over HTTP.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
)

const (
	defaultTimeout = time.Minute
	// maxDocumentSize bounds a single response body.
	maxDocumentSize = 1 << 20
)

var logger = log.New("wrapdoc/ldcontext/remote")

// HTTPClient represents an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Provider fetches context documents by URL, or a bundle of them from a single endpoint.
type Provider struct {
	httpClient HTTPClient
}

// ProviderOpt configures the remote context provider.
type ProviderOpt func(*Provider)

// WithHTTPClient configures an HTTP client.
func WithHTTPClient(client HTTPClient) ProviderOpt {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// NewProvider returns a new instance of the remote provider.
func NewProvider(opts ...ProviderOpt) *Provider {
	provider := &Provider{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(provider)
	}

	return provider
}

// Document is one context document of a bundle.
type Document struct {
	URL     string          `json:"url"`
	Content json.RawMessage `json:"content"`
}

// Response represents a bundle of context documents served by one endpoint.
type Response struct {
	Documents []Document `json:"documents"`
}

// Fetch returns the raw context document served at url. Its signature matches ldcontext.Fetcher.
func (p *Provider) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := p.get(ctx, url)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("context '%s' is not valid JSON", url)
	}

	return body, nil
}

// Contexts fetches a bundle from endpoint and returns its documents keyed by URL, ready for
// ldcontext.WithContexts.
func (p *Provider) Contexts(ctx context.Context, endpoint string) (map[string][]byte, error) {
	body, err := p.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var response Response

	if err = json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	documents := make(map[string][]byte, len(response.Documents))

	for _, d := range response.Documents {
		if d.URL == "" {
			return nil, fmt.Errorf("bundle from '%s' has a document without url", endpoint)
		}

		documents[d.URL] = d.Content
	}

	return documents, nil
}

func (p *Provider) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Accept", "application/ld+json, application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpClient do: %w", err)
	}

	defer func() {
		e := resp.Body.Close()
		if e != nil {
			logger.Errorf("Failed to close response body: %s", e.Error())
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("response status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return body, nil
}
