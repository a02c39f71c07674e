// Package chrome launches one isolated headless Chrome per conversion and
// tears it down when the conversion ends. Instances are never pooled or shared.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/chromedp/chromedp"

	"url2pdf/internal/config"
	"url2pdf/internal/domain"
	log "url2pdf/internal/infra/logging"
)

// Stats is a snapshot of renderer usage.
type Stats struct {
	Live          int64  `json:"live"`
	Launched      int64  `json:"launched"`
	MaxConcurrent int    `json:"max_concurrent"`
	WaitUntil     string `json:"wait_until"`
	TimeoutSecs   int    `json:"timeout_secs"`
}

// Launcher creates Instances. When pdf.max_concurrent is set it also caps how
// many are alive at once; otherwise launches are unbounded.
type Launcher struct {
	cfg config.Config

	slots    chan struct{}
	live     atomic.Int64
	launched atomic.Int64
}

// NewLauncher builds a Launcher from the immutable service config.
func NewLauncher(cfg config.Config) *Launcher {
	l := &Launcher{cfg: cfg}
	if cfg.PDF.MaxConcurrent > 0 {
		l.slots = make(chan struct{}, cfg.PDF.MaxConcurrent)
	}
	return l
}

func (l *Launcher) allocatorOptions(profileDir string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profileDir),
		chromedp.WindowSize(int(l.cfg.PDF.ViewportWidth), int(l.cfg.PDF.ViewportHeight)),
	)
	if l.cfg.PDF.DisableGPU {
		// Software rendering avoids Vulkan/ANGLE issues in minimal containers.
		opts = append(opts,
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-gpu-compositing", true),
			chromedp.Flag("use-gl", "swiftshader"),
		)
	}
	if l.cfg.PDF.NoSandbox {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}
	if l.cfg.PDF.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(l.cfg.PDF.ChromePath))
	}
	return opts
}

func (l *Launcher) acquire(ctx context.Context) error {
	if l.slots == nil {
		return nil
	}
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Launcher) releaseFunc() func() {
	return func() {
		l.live.Add(-1)
		if l.slots != nil {
			<-l.slots
		}
	}
}

// Launch starts a fresh browser. The caller owns the returned Instance and
// must Close it.
func (l *Launcher) Launch(ctx context.Context) (*Instance, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for renderer slot: %w", domain.ErrRender, err)
	}
	l.live.Add(1)
	l.launched.Add(1)

	inst := &Instance{opts: l.cfg.PDF, release: l.releaseFunc()}

	profileDir, err := createProfileDir(l.cfg)
	if err != nil {
		_ = inst.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}
	inst.profileDir = profileDir

	// The browser lifetime is tied to Close, not to the request context.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), l.allocatorOptions(profileDir)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	inst.ctx, inst.cancelTab, inst.cancelAlloc = tabCtx, cancelTab, cancelAlloc

	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()

	select {
	case err = <-started:
	case <-ctx.Done():
		cancelAlloc()
		<-started
		err = ctx.Err()
	}
	if err != nil {
		_ = inst.Close()
		return nil, fmt.Errorf("%w: launch browser: %w", domain.ErrRender, err)
	}
	return inst, nil
}

// Render runs one full conversion: launch, navigate, print, teardown.
// The instance is closed on every path before Render returns.
func (l *Launcher) Render(ctx context.Context, url string) (pdf []byte, err error) {
	inst, err := l.Launch(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := inst.Close(); cerr != nil {
			log.Warn("Renderer cleanup failed", "error", cerr)
		}
	}()

	pdf, err = inst.RenderURL(ctx, url)
	if err != nil {
		if !errors.Is(err, domain.ErrRender) {
			err = fmt.Errorf("%w: %w", domain.ErrRender, err)
		}
		return nil, err
	}
	return pdf, nil
}

// Stats reports live and total launched instances.
func (l *Launcher) Stats() Stats {
	return Stats{
		Live:          l.live.Load(),
		Launched:      l.launched.Load(),
		MaxConcurrent: l.cfg.PDF.MaxConcurrent,
		WaitUntil:     l.cfg.PDF.WaitUntil,
		TimeoutSecs:   l.cfg.PDF.TimeoutSecs,
	}
}

// IsSessionInterrupted reports errors caused by the browser going away or the
// context ending rather than by the page itself.
func IsSessionInterrupted(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrRendererClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "target closed") ||
		strings.Contains(msg, "websocket") ||
		strings.Contains(msg, "invalid context")
}
