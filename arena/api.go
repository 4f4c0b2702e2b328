// Package arena implements the content synchronization engine: listing a
// channel's blocks from the are.na API, planning download jobs, executing
// them under bounded concurrency, and reporting the outcome.
package arena

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	arenahttp "github.com/strangesongs/arena-dl/http"
	"github.com/strangesongs/arena-dl/retry"
)

const (
	// DefaultBaseURL is the public are.na v2 API.
	DefaultBaseURL = "https://api.are.na/v2"

	// PageSize is fixed by the listing endpoint contract.
	PageSize = 100

	// defaultPageDelay is the politeness pause between page fetches. Pages
	// are fetched strictly sequentially; the origin returns inconsistent
	// pagination under concurrent listing requests.
	defaultPageDelay = 500 * time.Millisecond
)

// ConnectivityError indicates the listing API could not be reached or
// answered with something other than not-found. It is fatal to the run.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot reach are.na: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// Client fetches channel metadata and paginated block listings.
type Client struct {
	http    *arenahttp.Client
	baseURL string

	// PageDelay is the pause inserted between sequential page fetches.
	PageDelay time.Duration
}

// NewClient creates a listing client against the public API.
func NewClient(hc *arenahttp.Client) *Client {
	return &Client{
		http:      hc,
		baseURL:   DefaultBaseURL,
		PageDelay: defaultPageDelay,
	}
}

// NewClientWithBaseURL creates a listing client against a custom API root.
func NewClientWithBaseURL(hc *arenahttp.Client, baseURL string) *Client {
	c := NewClient(hc)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// FetchChannel retrieves the channel summary (title and block count).
// A remote not-found wraps retry.ErrChannelNotFound; any other failure wraps
// a ConnectivityError. Both abort the run before any side effect.
func (c *Client) FetchChannel(ctx context.Context, slug string) (*Channel, error) {
	endpoint := fmt.Sprintf("%s/channels/%s/thumb", c.baseURL, url.PathEscape(slug))

	resp, err := c.http.Get(ctx, endpoint, arenahttp.APIHeaders())
	if err != nil {
		var httpErr *arenahttp.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == 404 {
			return nil, fmt.Errorf("channel %q: %w", slug, retry.ErrChannelNotFound)
		}
		return nil, &ConnectivityError{Err: err}
	}

	var ch Channel
	if err := json.Unmarshal(resp.Body, &ch); err != nil {
		return nil, &ConnectivityError{Err: fmt.Errorf("decode channel summary: %w", err)}
	}
	if ch.Slug == "" {
		ch.Slug = slug
	}
	return &ch, nil
}

// FetchPage retrieves one page of the channel's contents. Page numbers start
// at 1.
func (c *Client) FetchPage(ctx context.Context, slug string, page int) ([]Block, error) {
	endpoint := fmt.Sprintf("%s/channels/%s/contents?page=%d&per=%d",
		c.baseURL, url.PathEscape(slug), page, PageSize)

	resp, err := c.http.Get(ctx, endpoint, arenahttp.APIHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}

	var payload struct {
		Contents []Block `json:"contents"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("decode page %d: %w", page, err)
	}
	return payload.Contents, nil
}

// FetchAllBlocks retrieves every page of the channel strictly in sequence,
// pausing between pages, and concatenates the results in origin order.
// A failed page contributes zero blocks and a warning; it is never fatal and
// never retried within the run.
func (c *Client) FetchAllBlocks(ctx context.Context, slug string, total int) []Block {
	pageCount := (total + PageSize - 1) / PageSize

	blocks := make([]Block, 0, total)
	for page := 1; page <= pageCount; page++ {
		pageBlocks, err := c.FetchPage(ctx, slug, page)
		if err != nil {
			log.Printf("arena-dl: warning: page %d/%d of %s failed: %v", page, pageCount, slug, err)
		} else {
			blocks = append(blocks, pageBlocks...)
		}

		if page < pageCount {
			select {
			case <-time.After(c.PageDelay):
			case <-ctx.Done():
				return blocks
			}
		}
	}
	return blocks
}

// ExtractSlug reduces a channel argument to its slug. Full are.na URLs are
// reduced to their last path segment; anything else is treated as a bare slug.
func ExtractSlug(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", retry.ErrInvalidURL
	}

	if strings.Contains(arg, "://") || strings.HasPrefix(arg, "www.") {
		raw := arg
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", retry.ErrInvalidURL, err)
		}
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		slug := segments[len(segments)-1]
		if slug == "" {
			return "", retry.ErrInvalidURL
		}
		return slug, nil
	}

	return arg, nil
}
