package gitweb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// LastChangeLayout is the format gitweb uses for the "last change" field of
// a project summary page.
const LastChangeLayout = "Mon, 2 Jan 2006 15:04:05 -0700"

const (
	projectListSelector = "table.project_list"
	lastChangeLabel     = "last change"

	repoColumn = 0
	ageColumn  = 3
)

// HTMLSource scrapes the project list and project summary pages rendered by gitweb.
type HTMLSource struct {
	fetcher PageFetcherInterface
	now     func() time.Time
}

func NewHTMLSource(fetcher PageFetcherInterface) *HTMLSource {
	return &HTMLSource{
		fetcher: fetcher,
		now:     time.Now,
	}
}

func (s *HTMLSource) FetchInventory(ctx context.Context, baseURL string) (Inventory, error) {
	page, err := fetchPage(ctx, s.fetcher, baseURL)
	if err != nil {
		return nil, err
	}

	inventory, err := ParseProjectList(baseURL, page.Body)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("url", baseURL).Int("repos", len(inventory)).Msg("Fetched project list")
	return inventory, nil
}

func (s *HTMLSource) FetchLastChange(ctx context.Context, baseURL string, repo string) (time.Time, error) {
	pageURL := ProjectURL(baseURL, repo)

	page, err := fetchPage(ctx, s.fetcher, pageURL)
	if err != nil {
		return time.Time{}, err
	}

	return ParseLastChange(pageURL, page.Body, s.now)
}

// ParseProjectList extracts the inventory from a gitweb project list page.
//
// Column 0 of every row is the repository and column 3 its age. Header rows
// carry no <td> cells and are skipped. When two rows share an identifier the
// later one wins.
func ParseProjectList(pageURL string, body string) (Inventory, error) {
	doc, err := parseDocument(pageURL, body, true)
	if err != nil {
		return nil, err
	}

	table := doc.Find(projectListSelector).First()
	if table.Length() == 0 {
		return nil, &ParseError{URL: pageURL, Reason: "no project_list table", Listing: true}
	}

	inventory := Inventory{}
	var rowErr error

	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return true
		}

		if cells.Length() <= ageColumn {
			rowErr = &ParseError{
				URL:     pageURL,
				Listing: true,
				Reason:  fmt.Sprintf("row %d has %d cells, expected at least %d", i, cells.Length(), ageColumn+1),
			}
			return false
		}

		repo := strings.TrimSpace(cells.Eq(repoColumn).Text())
		inventory[repo] = strings.TrimSpace(cells.Eq(ageColumn).Text())
		return true
	})

	if rowErr != nil {
		return nil, rowErr
	}

	return inventory, nil
}

// ParseLastChange reads the "last change" field of a project summary page.
//
// A page without the field yields now(). A field whose value is not in
// LastChangeLayout is a ParseError.
func ParseLastChange(pageURL string, body string, now func() time.Time) (time.Time, error) {
	doc, err := parseDocument(pageURL, body, false)
	if err != nil {
		return time.Time{}, err
	}

	label := doc.Find("td").FilterFunction(func(_ int, td *goquery.Selection) bool {
		return strings.TrimSpace(td.Text()) == lastChangeLabel
	}).First()

	if label.Length() == 0 {
		log.Debug().Str("url", pageURL).Msg("No last change field, assuming it changed just now")
		return now(), nil
	}

	value := label.Next()
	if value.Length() == 0 {
		return time.Time{}, &ParseError{URL: pageURL, Reason: "last change label has no value"}
	}

	// newer gitweb versions append the committer's local time after a span.datetime
	if datetime := value.Find(".datetime").First(); datetime.Length() > 0 {
		value = datetime
	}

	text := strings.TrimSpace(value.Text())
	lastChange, err := time.Parse(LastChangeLayout, text)
	if err != nil {
		return time.Time{}, &ParseError{URL: pageURL, Reason: fmt.Sprintf("unexpected last change value %q", text), Err: err}
	}

	return lastChange, nil
}

func parseDocument(pageURL string, body string, listing bool) (*goquery.Document, error) {
	node, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Reason: "malformed HTML", Listing: listing, Err: err}
	}

	return goquery.NewDocumentFromNode(node), nil
}
