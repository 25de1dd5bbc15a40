package source

import (
	"net/url"
	"strings"

	"github.com/pfrederiksen/concert-events/internal/logger"
)

// pageSet collects the text of a multi-page source. Failed pages are
// logged and skipped.
type pageSet struct {
	source string
	pages  []string
	failed int
	tried  int
	last   error
}

func (p *pageSet) fail(page string, err error) {
	p.tried++
	p.failed++
	p.last = err
	logger.Warn("Page fetch failed", logger.Fields{
		"source": p.source,
		"page":   page,
		"error":  err.Error(),
	})
}

func (p *pageSet) add(text string) {
	p.tried++
	if text != "" {
		p.pages = append(p.pages, text)
	}
}

// result joins the collected pages. It fails only when every page failed.
func (p *pageSet) result() (string, error) {
	if p.tried > 0 && p.failed == p.tried {
		return "", p.last
	}
	return truncate(strings.Join(p.pages, "\n\n"), MaxContentLength), nil
}

// absURL resolves href against the page it was found on
func absURL(page, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(page)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// lines joins the non-empty entries with newlines
func lines(entries ...string) string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e != "" {
			out = append(out, e)
		}
	}
	return strings.Join(out, "\n")
}

// field renders "label: value", or nothing when value is empty
func field(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}
