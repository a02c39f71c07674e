package chrome

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"url2pdf/internal/config"
	"url2pdf/internal/domain"
)

// Instance exclusively owns one headless browser for a single conversion.
// Close must be called on every exit path; it is safe to call more than once.
type Instance struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	profileDir  string
	opts        config.PDFConfig
	release     func()

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// RenderURL loads target, waits for the configured network-idle condition
// and prints the page. Navigation and printing are each bounded by the
// configured timeout.
func (i *Instance) RenderURL(ctx context.Context, target string) ([]byte, error) {
	if i.closed.Load() {
		return nil, domain.ErrRendererClosed
	}

	runCtx, cancel := context.WithCancel(i.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	watcher := newIdleWatcher(lifecycleEvent(i.opts.WaitUntil))
	chromedp.ListenTarget(runCtx, watcher.observe)

	navCtx, navCancel := context.WithTimeout(runCtx, i.opts.Timeout())
	err := chromedp.Run(navCtx,
		chromedp.EmulateViewport(i.opts.ViewportWidth, i.opts.ViewportHeight),
		emulation.SetEmulatedMedia().WithMedia(i.opts.Media),
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, loader, errorText, _, err := page.Navigate(target).Do(ctx)
			if err != nil {
				return err
			}
			if errorText != "" {
				return fmt.Errorf("navigate %s: %s", target, errorText)
			}
			return watcher.wait(ctx, loader)
		}),
	)
	navCancel()
	if err != nil {
		if ctx.Err() == nil && navCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("navigation timeout of %s exceeded: %w", i.opts.Timeout(), context.DeadlineExceeded)
		}
		return nil, err
	}

	printCtx, printCancel := context.WithTimeout(runCtx, i.opts.Timeout())
	defer printCancel()
	var pdf []byte
	err = chromedp.Run(printCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdf, err = printPage(ctx, i.opts)
		return err
	}))
	if err != nil {
		if ctx.Err() == nil && printCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("print timeout of %s exceeded: %w", i.opts.Timeout(), context.DeadlineExceeded)
		}
		return nil, err
	}
	return pdf, nil
}

// printPage is swapped out in tests to simulate a stuck print.
var printPage = func(ctx context.Context, opts config.PDFConfig) ([]byte, error) {
	margin := opts.MarginInches()
	pdf, _, err := page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(opts.Paper.Width).
		WithPaperHeight(opts.Paper.Height).
		WithMarginTop(margin).
		WithMarginBottom(margin).
		WithMarginLeft(margin).
		WithMarginRight(margin).
		Do(ctx)
	return pdf, err
}

// Close kills the browser process, waits for it to exit and removes the
// profile directory.
func (i *Instance) Close() error {
	i.closeOnce.Do(func() {
		i.closed.Store(true)

		// cancelTab kills the process and waits for it to exit.
		if i.cancelTab != nil {
			i.cancelTab()
		}
		if i.cancelAlloc != nil {
			i.cancelAlloc()
		}
		if i.profileDir != "" {
			i.closeErr = os.RemoveAll(i.profileDir)
		}
		if i.release != nil {
			i.release()
		}
	})
	return i.closeErr
}

// Closed reports whether Close has run.
func (i *Instance) Closed() bool { return i.closed.Load() }
