package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/jask/pacfrag/internal/logger"
	"github.com/jask/pacfrag/internal/overlap"
)

var (
	// ErrStatus is returned for an HTTP status that retrying cannot fix.
	ErrStatus = errors.New("unexpected status")

	errBadJSON = errors.New("response is not valid JSON")
)

// Options configures a Client.
type Options struct {
	Endpoint    string
	Method      string
	APIKey      string
	PageSize    int
	Concurrency int
	Timeout     time.Duration
	Retry       RetryPolicy
}

// Client pages through the campaign-finance committees API.
type Client struct {
	http *resty.Client
	opts Options
	log  logger.Logger
}

func New(opts Options, log logger.Logger) *Client {
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if log == nil {
		log = logger.NewLogger(logger.TestConfig())
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.Endpoint, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetQueryParam("api-key", opts.APIKey)
	return &Client{http: client, opts: opts, log: log}
}

// FetchAll retrieves every committee in API order. Each page result is
// replaced by its detail records when the detail request succeeds.
func (c *Client) FetchAll(ctx context.Context) ([]overlap.Entity, error) {
	var items []overlap.Entity
	for offset := 0; ; offset += c.opts.PageSize {
		body, status, err := c.get(ctx, c.opts.Method, map[string]string{"offset": strconv.Itoa(offset)})
		if err != nil {
			return nil, fmt.Errorf("page at offset %d: %w", offset, err)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("page at offset %d: %w %d", offset, ErrStatus, status)
		}

		summaries := gjson.GetBytes(body, "results").Array()
		if len(summaries) == 0 {
			c.log.Debug("no more pages", "offset", offset)
			break
		}
		expanded, err := c.expand(ctx, summaries)
		if err != nil {
			return nil, err
		}
		items = append(items, expanded...)
		c.log.Info("page fetched", "offset", offset, "added", len(summaries), "total", len(items))
	}
	return items, nil
}

// expand fetches details for one page concurrently, preserving page order.
func (c *Client) expand(ctx context.Context, summaries []gjson.Result) ([]overlap.Entity, error) {
	slots := make([][]overlap.Entity, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i, summary := range summaries {
		g.Go(func() error {
			recs, err := c.detail(gctx, summary)
			if err != nil {
				return err
			}
			slots[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []overlap.Entity
	for _, recs := range slots {
		out = append(out, recs...)
	}
	return out, nil
}

func (c *Client) detail(ctx context.Context, summary gjson.Result) ([]overlap.Entity, error) {
	id := summary.Get("id").String()
	uri := summary.Get("relative_uri").String()
	if uri == "" {
		return decodeRecords([]gjson.Result{summary})
	}

	body, status, err := c.get(ctx, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("committee %s: %w", id, err)
	}
	if status != http.StatusOK {
		c.log.Warn("could not load committee detail, keeping summary", "id", id, "status", status)
		return decodeRecords([]gjson.Result{summary})
	}
	results := gjson.GetBytes(body, "results").Array()
	if len(results) == 0 {
		c.log.Warn("committee detail was empty, keeping summary", "id", id)
		return decodeRecords([]gjson.Result{summary})
	}
	return decodeRecords(results)
}

// get issues a GET with retries. Transport failures, 429, 5xx and bodies
// that are not JSON are retried; other statuses are returned to the caller.
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, int, error) {
	var (
		body   []byte
		status int
	)
	onRetry := func(attempt int, err error) {
		c.log.Warn("retrying", "path", path, "attempt", attempt, "err", err)
	}
	err := c.opts.Retry.Do(ctx, onRetry, func(ctx context.Context) error {
		resp, err := c.http.R().SetContext(ctx).SetQueryParams(params).Get(path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return transient(err)
		}
		status = resp.StatusCode()
		body = resp.Body()
		switch {
		case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
			return transient(fmt.Errorf("%w %d", ErrStatus, status))
		case status == http.StatusOK && !gjson.ValidBytes(body):
			c.log.Error("no JSON object could be decoded", "path", path, "body", truncate(body, 200))
			return transient(errBadJSON)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return body, status, nil
}

func decodeRecords(results []gjson.Result) ([]overlap.Entity, error) {
	out := make([]overlap.Entity, 0, len(results))
	for _, r := range results {
		var e overlap.Entity
		if err := json.Unmarshal([]byte(r.Raw), &e); err != nil {
			return nil, fmt.Errorf("decode committee: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
