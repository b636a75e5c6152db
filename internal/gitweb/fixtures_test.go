package gitweb

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gitwebsync/internal/page_fetcher"
)

type fakeFetcher struct {
	mu        sync.Mutex
	pages     map[string]string
	errs      map[string]error
	requested []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: map[string]string{},
		errs:  map[string]error{},
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*page_fetcher.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requested = append(f.requested, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, &page_fetcher.FetchError{URL: url, StatusCode: 404, Err: fmt.Errorf("Not Found")}
	}
	return &page_fetcher.Page{Body: body, ContentType: "text/html"}, nil
}

type row struct {
	repo string
	age  string
}

func projectListPage(rows ...row) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>git.example.com Git</title></head><body>
<div class="page_header"><a href="/">projects</a></div>
<table class="project_list">
<tr>
<th><a class="header" href="?o=project">Project</a></th>
<th><a class="header" href="?o=descr">Description</a></th>
<th><a class="header" href="?o=owner">Owner</a></th>
<th><a class="header" href="?o=age">Last Change</a></th>
<th></th>
</tr>
`)
	for i, r := range rows {
		class := "dark"
		if i%2 == 1 {
			class = "light"
		}
		fmt.Fprintf(&b, `<tr class="%s">
<td><a class="list" href="?p=%[2]s;a=summary">%[2]s</a></td>
<td><a class="list" title="Unnamed repository" href="?p=%[2]s;a=summary">Unnamed repository</a></td>
<td><i>Jane Doe</i></td>
<td class="age2">%[3]s</td>
<td class="link"><a href="?p=%[2]s;a=summary">summary</a> | <a href="?p=%[2]s;a=log">log</a></td>
</tr>
`, class, r.repo, r.age)
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}

func summaryPage(lastChangeCell string) string {
	return `<!DOCTYPE html><html><body>
<div class="title">&nbsp;</div>
<table class="projects_list">
<tr id="metadata_desc"><td>description</td><td>Unnamed repository</td></tr>
<tr id="metadata_owner"><td>owner</td><td>Jane Doe</td></tr>
` + lastChangeCell + `
<tr class="metadata_url"><td>URL</td><td>git://git.example.com/repo.git</td></tr>
</table></body></html>`
}

func lastChangeRow(value string) string {
	return `<tr id="metadata_lchange"><td>last change</td><td>` + value + `</td></tr>`
}

func atomFeed(updated string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>repo.git/log</title>
<subtitle>Unnamed repository</subtitle>
` + updated + `
<entry><title type="html">Fix build</title><updated>2024-01-02T12:00:00Z</updated></entry>
</feed>`
}
