package page_fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gitwebsync/internal/metrics"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
)

const (
	pageKey      = "page"
	statusKey    = "status"
	truncatedKey = "truncated"
)

// ErrBodyLimit is returned for responses that reached the collector's
// MaxBodySize. colly cuts such bodies off without an error.
var ErrBodyLimit = errors.New("response body reached the size limit")

type Page struct {
	Body        string
	ContentType string
}

// FetchError describes a request that did not produce a successful response.
// StatusCode is zero when no response was received at all.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s returned %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("GET %s failed: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PageFetcher retrieves gitweb pages through a colly collector. It is safe
// for concurrent use: responses travel in each request's own colly.Context.
type PageFetcher struct {
	collector *colly.Collector
	metrics   *metrics.Metrics
}

func NewPageFetcher(collector *colly.Collector, m *metrics.Metrics) *PageFetcher {
	collector.OnResponse(func(r *colly.Response) {
		if collector.MaxBodySize > 0 && len(r.Body) >= collector.MaxBodySize {
			r.Ctx.Put(truncatedKey, true)
			return
		}

		r.Ctx.Put(pageKey, &Page{
			Body:        string(r.Body),
			ContentType: r.Headers.Get("Content-Type"),
		})
	})

	collector.OnError(func(r *colly.Response, err error) {
		r.Ctx.Put(statusKey, r.StatusCode)
		log.Warn().Str("url", r.Request.URL.String()).Int("status", r.StatusCode).Err(err).Msg("Error returned from request")
	})

	return &PageFetcher{
		collector: collector,
		metrics:   m,
	}
}

func (pf *PageFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	reqCtx := colly.NewContext()
	metrics.PageFetched(pf.metrics)

	err := pf.collector.Request(http.MethodGet, url, nil, reqCtx, nil)
	if err != nil {
		metrics.PageFetchFailed(pf.metrics)
		status, _ := reqCtx.GetAny(statusKey).(int)
		return nil, &FetchError{URL: url, StatusCode: status, Err: err}
	}

	if truncated, _ := reqCtx.GetAny(truncatedKey).(bool); truncated {
		metrics.PageFetchFailed(pf.metrics)
		log.Warn().Str("url", url).Int("limit", pf.collector.MaxBodySize).Msg("Response body reached the size limit")
		return nil, &FetchError{URL: url, Err: fmt.Errorf("%w of %d bytes", ErrBodyLimit, pf.collector.MaxBodySize)}
	}

	page, ok := reqCtx.GetAny(pageKey).(*Page)
	if !ok {
		metrics.PageFetchFailed(pf.metrics)
		return nil, &FetchError{URL: url, Err: errors.New("no response received")}
	}

	return page, nil
}
