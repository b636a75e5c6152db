package gitweb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/rs/zerolog/log"
)

const feedUpdatedXPath = "/*[local-name()='feed']/*[local-name()='updated']"

// FeedSource reads the project list like HTMLSource, but takes last change
// timestamps from each project's Atom feed instead of its summary page.
type FeedSource struct {
	*HTMLSource
}

func NewFeedSource(fetcher PageFetcherInterface) *FeedSource {
	return &FeedSource{HTMLSource: NewHTMLSource(fetcher)}
}

func (s *FeedSource) FetchLastChange(ctx context.Context, baseURL string, repo string) (time.Time, error) {
	feedURL := FeedURL(baseURL, repo)

	page, err := fetchPage(ctx, s.fetcher, feedURL)
	if err != nil {
		return time.Time{}, err
	}

	return ParseFeedUpdated(feedURL, page.Body, s.now)
}

// ParseFeedUpdated reads the feed level <updated> element of an Atom feed.
// Feeds of empty repositories have none, which yields now().
func ParseFeedUpdated(feedURL string, body string, now func() time.Time) (time.Time, error) {
	doc, err := xmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return time.Time{}, &ParseError{URL: feedURL, Reason: "malformed Atom feed", Err: err}
	}

	if xmlquery.FindOne(doc, "/*[local-name()='feed']") == nil {
		return time.Time{}, &ParseError{URL: feedURL, Reason: "document is not an Atom feed"}
	}

	updated := xmlquery.FindOne(doc, feedUpdatedXPath)
	if updated == nil {
		log.Debug().Str("url", feedURL).Msg("Feed has no updated element, assuming it changed just now")
		return now(), nil
	}

	text := strings.TrimSpace(updated.InnerText())
	lastChange, err := time.Parse(time.RFC3339, text)
	if err != nil {
		return time.Time{}, &ParseError{URL: feedURL, Reason: fmt.Sprintf("unexpected updated value %q", text), Err: err}
	}

	return lastChange, nil
}
