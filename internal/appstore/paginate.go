package appstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/daniloc96/appstore-testflight-sync/internal/models"
	"github.com/sirupsen/logrus"
)

const maxMalformedBackoff = 30 * time.Second

// fetchAll requests endpoint and follows links.next verbatim until it is
// absent, returning the items of every page in page order. The collection
// is not snapshotted: upstream changes between pages are not corrected.
func fetchAll[T models.Resource](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	var items []T
	pages := 0
	for next := endpoint; next != ""; {
		page, err := fetchPage[T](ctx, c, next)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Data...)
		pages++
		next = page.Links.NextURL()
	}

	logrus.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"pages":    pages,
		"items":    len(items),
	}).Debug("fetched collection")
	return items, nil
}

// fetchPage requests a single page. A page that fails to decode or validate
// is requested again with exponential backoff until the retry budget runs
// out; transport errors are returned immediately.
func fetchPage[T models.Resource](ctx context.Context, c *Client, url string) (*models.Page[T], error) {
	attempts := 0
	var transportErr error

	page, err := backoff.Retry(ctx, func() (*models.Page[T], error) {
		attempts++
		status, body, err := c.do(ctx, http.MethodGet, url, nil)
		if err != nil {
			transportErr = err
			return nil, backoff.Permanent(err)
		}
		page, err := decodePage[T](status, body)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"url":         url,
				"attempt":     attempts,
				"status_code": status,
				"body":        truncate(string(body), 512),
			}).WithError(err).Warn("malformed App Store Connect response")
			return nil, err
		}
		return page, nil
	},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.maxMalformed)),
		backoff.WithMaxElapsedTime(0),
	)
	if err == nil {
		return page, nil
	}
	if transportErr != nil {
		return nil, transportErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return nil, &MalformedResponseError{URL: url, Attempts: attempts, Err: err}
}

func decodePage[T models.Resource](status int, body []byte) (*models.Page[T], error) {
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", status)
	}
	var page models.Page[T]
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decoding page: %w", err)
	}
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("validating page: %w", err)
	}
	return &page, nil
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.malformedBackoff
	b.MaxInterval = maxMalformedBackoff
	return b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
