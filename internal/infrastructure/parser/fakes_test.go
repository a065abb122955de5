package parser

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsScanner/internal/infrastructure/browser"
)

// fakePage serves fixed HTML and a load-more control that works clicksLeft times.
type fakePage struct {
	mu         sync.Mutex
	html       string
	url        string
	navErr     error
	clickErr   error
	clicksLeft int
	clicks     int
	idleCalls  int
	visited    []string
	closed     int
}

func (p *fakePage) Navigate(_ context.Context, url string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visited = append(p.visited, url)
	if p.url == "" {
		p.url = url
	}
	return p.navErr
}

func (p *fakePage) WaitIdle(context.Context, time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idleCalls++
	return nil
}

func (p *fakePage) WaitFor(_ context.Context, selector string, _ time.Duration) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.html))
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return browser.ErrNotFound
	}
	return nil
}

func (p *fakePage) Click(context.Context, string, time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clickErr != nil {
		return p.clickErr
	}
	if p.clicksLeft <= 0 {
		return browser.ErrNotFound
	}
	p.clicksLeft--
	p.clicks++
	return nil
}

func (p *fakePage) HTML(context.Context) (string, error) {
	return p.html, nil
}

func (p *fakePage) URL(context.Context) (string, error) {
	return p.url, nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

type fakeBrowser struct {
	page    *fakePage
	openErr error
}

func (b *fakeBrowser) NewPage(context.Context) (browser.Page, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.page, nil
}

var errTabCrashed = errors.New("tab crashed")
