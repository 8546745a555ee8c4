package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"
)

// browserConfig holds internal configuration for a ChromeRasterizer.
type browserConfig struct {
	chromePath   string
	timeout      time.Duration
	settle       time.Duration
	noSandbox    bool
	autoDownload bool
}

func defaultBrowserConfig() browserConfig {
	return browserConfig{
		timeout: 30 * time.Second,
		settle:  150 * time.Millisecond,
	}
}

// BrowserOption configures a [ChromeRasterizer].
type BrowserOption func(*browserConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the standard locations are searched.
func WithChromePath(path string) BrowserOption {
	return func(c *browserConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration for a single rasterization.
// Defaults to 30 seconds. A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) BrowserOption {
	return func(c *browserConfig) {
		c.timeout = d
	}
}

// WithSettleDelay sets the bounded wait after the document root becomes
// ready, giving asynchronous layout and image decoding one more frame.
// Defaults to 150ms.
func WithSettleDelay(d time.Duration) BrowserOption {
	return func(c *browserConfig) {
		c.settle = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() BrowserOption {
	return func(c *browserConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload downloads a compatible Chromium binary when no
// executable is found on the host.
func WithAutoDownload() BrowserOption {
	return func(c *browserConfig) {
		c.autoDownload = true
	}
}

// ChromeRasterizer rasterizes invoice documents with headless Chrome.
//
// It manages a browser instance that is reused across runs. Call
// [ChromeRasterizer.Close] when finished to release browser resources.
type ChromeRasterizer struct {
	cfg           browserConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewChromeRasterizer starts a headless browser with the given options.
func NewChromeRasterizer(opts ...BrowserOption) (*ChromeRasterizer, error) {
	cfg := defaultBrowserConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("no-first-run", true),
		// Cross-origin logo images must be allowed to rasterize.
		chromedp.Flag("disable-web-security", true),
		chromedp.Flag("headless", "new"),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	return &ChromeRasterizer{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Rasterize navigates a fresh tab to fileURL, waits for the invoice
// document root to settle, and captures it as a PNG at DeviceScale
// device pixels per logical pixel on an opaque white background.
func (r *ChromeRasterizer) Rasterize(ctx context.Context, fileURL string) ([]byte, error) {
	if err := r.checkClosed(); err != nil {
		return nil, err
	}

	if r.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.timeout)
		defer cancel()
	}

	tabCtx, tabCancel := chromedp.NewContext(r.browserCtx)
	defer tabCancel()

	sel := "#" + DocumentRootID

	var buf []byte
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(PageWidthPx, 1123),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDefaultBackgroundColorOverride().
				WithColor(&cdp.RGBA{R: 255, G: 255, B: 255, A: 1}).
				Do(ctx)
		}),
		chromedp.Navigate(fileURL),
		chromedp.WaitReady(sel, chromedp.ByQuery),
		chromedp.Sleep(r.cfg.settle),
		chromedp.ScreenshotScale(sel, DeviceScale, &buf, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		// The tab is torn down by the deferred cancel on every exit path.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("capturing document: %w", ctx.Err())
		}
		return nil, fmt.Errorf("capturing document: %w", err)
	}
	return buf, nil
}

// Close releases the browser process. Close is idempotent.
func (r *ChromeRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.browserCancel()
	r.allocCancel()
	return nil
}

func (r *ChromeRasterizer) checkClosed() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return nil
}

// resolveBrowser downloads a compatible Chromium binary if one is not
// already cached and returns the path to the executable.
func resolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("downloading browser: %w", err)
	}
	return path, nil
}
