package visir

import (
	"context"
	"time"
)

// Renderer is the browser-automation contract the walker and enricher
// depend on: navigate somewhere, wait for an element within a bound, click
// a control, hand back the rendered HTML. The chromedp implementation lives
// in scraper/browser; tests substitute a fake.
type Renderer interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	Click(ctx context.Context, selector string) error
	HTML(ctx context.Context) (string, error)
	Close() error
}
