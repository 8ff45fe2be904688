package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Renderer turns bill snapshots into PNG images using headless Chrome.
type Renderer struct {
	// ChromePath overrides browser auto-detection; required in most containers.
	ChromePath string
	Timeout    time.Duration
}

// PNG renders the printable page for the snapshot and screenshots it.
func (r *Renderer) PNG(ctx context.Context, snap Snapshot) ([]byte, error) {
	var buf []byte
	err := r.run(ctx, snap,
		chromedp.EmulateViewport(900, 1200),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return chromedp.FullScreenshot(&buf, 100).Do(ctx)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render bill png: %w", err)
	}
	return buf, nil
}

// PDF renders the printable page for the snapshot and prints it to PDF.
func (r *Renderer) PDF(ctx context.Context, snap Snapshot) ([]byte, error) {
	var buf []byte
	err := r.run(ctx, snap,
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			buf = data
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render bill pdf: %w", err)
	}
	return buf, nil
}

func (r *Renderer) run(ctx context.Context, snap Snapshot, capture ...chromedp.Action) error {
	doc, err := HTML(snap)
	if err != nil {
		return err
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
	)
	if r.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.ChromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString(doc)

	actions := []chromedp.Action{
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
	}
	actions = append(actions, capture...)
	return chromedp.Run(browserCtx, actions...)
}
