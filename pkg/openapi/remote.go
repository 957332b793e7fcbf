package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultHTTPTimeout bounds remote document fetches.
const DefaultHTTPTimeout = 10 * time.Second

// WithHTTPClient sets the client used by LoadURL.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Importer) {
		if client != nil {
			i.client = client
		}
	}
}

// WithHTTPTimeout overrides DefaultHTTPTimeout. Zero disables the timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(i *Importer) {
		if timeout >= 0 {
			i.timeout = timeout
		}
	}
}

// IsURL reports whether location is an http or https URL.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// LoadURL fetches and parses the document at url.
func (i *Importer) LoadURL(ctx context.Context, url string) (*Spec, error) {
	raw, err := i.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("openapi: fetch %s: %w", url, err)
	}
	return i.Load(ctx, raw)
}

func (i *Importer) fetch(ctx context.Context, url string) ([]byte, error) {
	if !IsURL(url) {
		return nil, errors.New("url must use http or https")
	}

	reqCtx := ctx
	if i.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	i.logger.Debug("openapi: fetched document", zap.String("url", url), zap.Int64("bytes", resp.ContentLength))
	return io.ReadAll(resp.Body)
}
