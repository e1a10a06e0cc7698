// Package search looks up players on futbin's server-rendered search and
// listing pages over plain HTTP, without a browser session.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/futmarket/config"
	"github.com/use-agent/futmarket/normalize"
	"github.com/use-agent/futmarket/registry"
)

const (
	searchURLFormat  = "https://www.futbin.com/players?page=1&search=%s"
	listingURLFormat = "https://www.futbin.com/players?page=%d"
)

// Candidate is one row from a search or listing page.
type Candidate struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	// Version is the card version shown in the row (e.g. "TOTW", "Gold Rare").
	Version string `json:"version,omitempty"`
	Rating  string `json:"rating,omitempty"`
}

// Client queries futbin search and listing pages.
type Client struct {
	fetcher *httpFetcher
	timeout time.Duration
	logger  *slog.Logger
}

func NewClient(cfg config.SearchConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		fetcher: newHTTPFetcher(cfg.Proxy),
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// SearchPlayers returns up to limit candidates matching name. A limit of
// zero or less means no cap.
func (c *Client) SearchPlayers(ctx context.Context, name string, limit int) ([]Candidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("search: empty query")
	}
	target := fmt.Sprintf(searchURLFormat, url.QueryEscape(name))
	candidates, err := c.fetchRows(ctx, target)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	c.logger.Info("player search completed", "query", name, "results", len(candidates))
	return candidates, nil
}

// FetchPlayersPage returns all candidates on one page of the global player
// listing. Pages are 1-based.
func (c *Client) FetchPlayersPage(ctx context.Context, page int) ([]Candidate, error) {
	if page < 1 {
		page = 1
	}
	target := fmt.Sprintf(listingURLFormat, page)
	candidates, err := c.fetchRows(ctx, target)
	if err != nil {
		return nil, err
	}
	c.logger.Info("listing page fetched", "page", page, "results", len(candidates))
	return candidates, nil
}

func (c *Client) fetchRows(ctx context.Context, target string) ([]Candidate, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	body, err := c.fetcher.fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	return parseListing(body)
}

// parseListing extracts player rows from a search or listing page. Each row
// carries a link to the player page; the link is normalized to the /market
// view so it can go straight into the registry.
func parseListing(body []byte) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("search: parse listing: %w", err)
	}

	var candidates []Candidate
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a[href*='/player/']").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		name := normalize.CleanText(link.Text())
		if name == "" {
			return
		}
		playerURL, err := registry.NormalizeURL(href)
		if err != nil {
			return
		}
		candidates = append(candidates, Candidate{
			Name:    name,
			URL:     playerURL,
			Version: normalize.CleanText(row.Find("span.players_club_nation, td.version, span.version").First().Text()),
			Rating:  normalize.CleanText(row.Find("span.rating, div.rating, td.rating").First().Text()),
		})
	})
	return candidates, nil
}
