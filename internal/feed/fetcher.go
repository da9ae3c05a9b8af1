package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "newsdigest/1.0 (+https://github.com/bilgisen/newsdigest)"

// Fetcher downloads raw feed documents
type Fetcher struct {
	client  *resty.Client
	timeout time.Duration
}

// NewFetcher returns a fetcher whose requests, retries included, never exceed timeout
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(1).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8"),
		timeout: timeout,
	}
}

// FetchFeed retrieves the feed document at url
func (f *Fetcher) FetchFeed(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed from %s: %w", url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), url)
	}

	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("empty feed body from %s", url)
	}

	return resp.Body(), nil
}
