package chrome

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"

	"url2pdf/internal/config"
)

// lifecycleEvent maps a wait condition to the Chrome lifecycle event that
// signals it: networkIdle fires after 500ms with no connections,
// networkAlmostIdle after 500ms with at most two.
func lifecycleEvent(waitUntil string) string {
	if waitUntil == config.WaitNetworkIdle0 {
		return "networkIdle"
	}
	return "networkAlmostIdle"
}

// idleWatcher records which loaders reached the wanted lifecycle event.
// observe runs on the chromedp event goroutine and must not block.
type idleWatcher struct {
	event string

	mu      sync.Mutex
	reached map[cdp.LoaderID]bool
	notify  chan struct{}
}

func newIdleWatcher(event string) *idleWatcher {
	return &idleWatcher{
		event:   event,
		reached: make(map[cdp.LoaderID]bool),
		notify:  make(chan struct{}, 1),
	}
}

func (w *idleWatcher) observe(ev any) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok || e.Name != w.event {
		return
	}
	w.mu.Lock()
	w.reached[e.LoaderID] = true
	w.mu.Unlock()

	select {
	case w.notify <- struct{}{}:
	default:
	}
}

// wait blocks until loader reached the event or ctx ends. An empty loader
// means a same-document navigation, which has nothing to wait for.
func (w *idleWatcher) wait(ctx context.Context, loader cdp.LoaderID) error {
	if loader == "" {
		return nil
	}
	for {
		w.mu.Lock()
		done := w.reached[loader]
		w.mu.Unlock()
		if done {
			return nil
		}
		select {
		case <-w.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
