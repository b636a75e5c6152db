package gitweb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gitwebsync/internal/page_fetcher"
)

const (
	SourceHTML = "html"
	SourceAtom = "atom"
)

// Inventory maps a repository identifier to the age text shown in the
// project list ("3 hours ago").
type Inventory map[string]string

// ListingSource is everything the differ needs from a gitweb instance.
//
//counterfeiter:generate -o ./fakes/ . ListingSource
type ListingSource interface {
	// FetchInventory reads the project list at baseURL.
	FetchInventory(ctx context.Context, baseURL string) (Inventory, error)
	// FetchLastChange reads the last change timestamp of one repository.
	// When the page carries no last change field the current time is returned.
	FetchLastChange(ctx context.Context, baseURL string, repo string) (time.Time, error)
}

//counterfeiter:generate -o ./fakes/ . PageFetcherInterface
type PageFetcherInterface interface {
	Fetch(ctx context.Context, url string) (*page_fetcher.Page, error)
}

// NewSource returns the ListingSource registered under kind.
func NewSource(kind string, fetcher PageFetcherInterface) (ListingSource, error) {
	switch kind {
	case SourceHTML, "":
		return NewHTMLSource(fetcher), nil
	case SourceAtom:
		return NewFeedSource(fetcher), nil
	default:
		return nil, fmt.Errorf("unknown last change source %q", kind)
	}
}

// ProjectURL returns the summary page URL of repo on the gitweb at baseURL.
func ProjectURL(baseURL string, repo string) string {
	return strings.TrimRight(baseURL, "/") + "/?p=" + url.QueryEscape(repo)
}

// FeedURL returns the Atom feed URL of repo on the gitweb at baseURL.
func FeedURL(baseURL string, repo string) string {
	return ProjectURL(baseURL, repo) + ";a=atom"
}

func fetchPage(ctx context.Context, fetcher PageFetcherInterface, pageURL string) (*page_fetcher.Page, error) {
	page, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		netErr := &NetworkError{URL: pageURL, Err: err}

		var fetchErr *page_fetcher.FetchError
		if errors.As(err, &fetchErr) {
			netErr.StatusCode = fetchErr.StatusCode
		}
		return nil, netErr
	}

	return page, nil
}
