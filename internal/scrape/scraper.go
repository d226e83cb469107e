// Package scrape fetches the marketplace listing page and parses its item
// sections into raw records for the normalizer.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/html"

	internalErrors "github.com/tomocrafter/takya-notifier/internal/lib/errors"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

// RawRecord is one listing section as printed on the page, before any
// validation. All fields are raw strings; Sold marks the 売約済み variant,
// which carries no name.
type RawRecord struct {
	OrderID  string
	Name     string
	Kind     string
	Exterior string
	Price    string
	Sold     bool
}

type Scraper struct {
	log       logger.Logger
	client    *http.Client
	url       string
	userAgent string
}

func New(log logger.Logger, url, userAgent string) *Scraper {
	return &Scraper{
		log:       log,
		client:    &http.Client{Timeout: 30 * time.Second},
		url:       url,
		userAgent: userAgent,
	}
}

// Fetch downloads the listing page and returns its raw records. Any error
// means no snapshot was produced and the whole cycle must be skipped.
func (s *Scraper) Fetch(ctx context.Context) ([]RawRecord, error) {
	const op = "scrape.Scraper.Fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch site: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: fetch site: unexpected status %s", op, resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: parse html: %w", op, err)
	}

	section := findSection(doc)
	if section == nil {
		return nil, fmt.Errorf("%s: %w", op, internalErrors.ErrEmptyPage)
	}

	lines := textLines(section)

	s.log.Debug("fetched listing page",
		logger.String("status", resp.Status),
		logger.String("took", time.Since(start).String()),
		logger.Int("lines", len(lines)),
	)

	return s.parseSections(lines), nil
}

// findSection returns the first <section> element, which holds the listing body.
func findSection(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "section" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findSection(c); found != nil {
			return found
		}
	}
	return nil
}

// textLines collects the text nodes under n in document order, mirroring how
// the page renders one logical line per text node.
func textLines(n *html.Node) []string {
	var lines []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			lines = append(lines, node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return lines
}
