package client

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"gitwebsync/internal/config"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
)

const maxRedirects = 10

type DisallowedURLError struct {
	Url string
}

func (e *DisallowedURLError) Error() string {
	return fmt.Sprintf("Not following redirect to %s because its not allowed", e.Url)
}

// NewCollector builds the collector shared by every fetch of a run. Requests
// are restricted to the hosts of the compared gitweb instances.
func NewCollector(cfg *config.Config) (*colly.Collector, error) {
	domains, err := endpointHosts(cfg.MasterURL, cfg.SlaveURL)
	if err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.AllowedDomains(domains...),
		// 0 means no limit; colly's own default is 10 MiB
		colly.MaxBodySize(cfg.MaxBodySize),
	)

	c.OnRequest(func(r *colly.Request) {
		for header, value := range cfg.Headers {
			r.Headers.Set(header, value)
		}
		log.Debug().Str("url", r.URL.String()).Msg("Requesting page")
	})

	c.SetClient(NewClient(c, cfg.RequestTimeout))

	return c, nil
}

func NewClient(c *colly.Collector, timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil)

	client := &http.Client{
		Jar:     jar,
		Timeout: timeout,
	}

	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}

		if !isRequestAllowed(c, req.URL) {
			return &DisallowedURLError{Url: req.URL.String()}
		}

		return nil
	}

	return client
}

func isRequestAllowed(c *colly.Collector, parsedURL *url.URL) bool {
	u := []byte(parsedURL.String())

	for _, r := range c.URLFilters {
		if !r.Match(u) {
			return false
		}
	}

	for _, r := range c.DisallowedURLFilters {
		if r.Match(u) {
			return false
		}
	}

	if len(c.AllowedDomains) == 0 {
		return true
	}
	for _, d := range c.AllowedDomains {
		if d == parsedURL.Hostname() {
			return true
		}
	}
	return false
}

func endpointHosts(endpoints ...string) ([]string, error) {
	var hosts []string
	for _, endpoint := range endpoints {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint URL %s: %w", endpoint, err)
		}
		hosts = append(hosts, u.Hostname())
	}
	return hosts, nil
}
