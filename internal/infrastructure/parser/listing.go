package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsScanner/internal/domain"
)

const (
	defaultCardSelector     = "div.erblPH"
	defaultLoadMoreSelector = "a.SfOz_M"
	defaultTitleSelector    = "h4"
	defaultDateSelector     = "span"
	dateSeparator           = "•"
)

// listingSelectors locate article cards and their fields in a rendered listing.
type listingSelectors struct {
	Card  string
	Title string
	Date  string
}

// parseListing extracts stubs from a rendered listing page. Cards without a title are dropped.
func parseListing(html, pageURL, source string, sel listingSelectors) ([]domain.ArticleStub, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	base, _ := url.Parse(pageURL)

	var stubs []domain.ArticleStub
	doc.Find(sel.Card).Each(func(_ int, card *goquery.Selection) {
		title := normalizeText(card.Find(sel.Title).First().Text())
		if title == "" {
			return
		}

		href, _ := card.Find("a[href]").First().Attr("href")

		date := card.Find(sel.Date).First().Text()
		if idx := strings.Index(date, dateSeparator); idx >= 0 {
			date = date[:idx]
		}

		stubs = append(stubs, domain.ArticleStub{
			Title:          title,
			Link:           resolveLink(base, href),
			PublishedLabel: normalizeText(date),
			Source:         source,
		})
	})

	return stubs, nil
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
