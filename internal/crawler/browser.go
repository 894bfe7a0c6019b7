package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"regdocs/internal/config"
	"regdocs/internal/logger"
)

// Browser errors.
var (
	ErrSessionReleased = errors.New("browser session already released")
	ErrBrowserStart    = errors.New("failed to start browser")
)

// Anchor is a link as seen in the rendered DOM.
type Anchor struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Renderer loads a page in a real browser and returns the anchors matching
// selector once the document body is ready.
type Renderer interface {
	CollectLinks(ctx context.Context, pageURL, selector string) ([]Anchor, error)
}

// RenderSession is an acquired browser. Release is idempotent and must be
// called on every path once the session is no longer needed.
type RenderSession interface {
	Renderer
	Release()
}

// SessionProvider acquires browser sessions.
type SessionProvider interface {
	Acquire(ctx context.Context) (RenderSession, error)
}

// Browser launches headless Chrome instances through chromedp.
type Browser struct {
	cfg       config.BrowserConfig
	userAgent string
	log       *logger.Logger
}

// NewBrowser creates a provider that launches one Chrome process per session.
func NewBrowser(cfg config.BrowserConfig, userAgent string, log *logger.Logger) *Browser {
	return &Browser{cfg: cfg, userAgent: userAgent, log: log}
}

func (b *Browser) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("start-maximized", true),
		chromedp.WindowSize(b.cfg.WindowWidth, b.cfg.WindowHeight),
	)

	if b.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.userAgent))
	}

	if b.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	if b.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.cfg.ExecPath))
	}

	return opts
}

// Acquire starts a browser process. The process outlives ctx and is torn
// down only by Release.
func (b *Browser) Acquire(ctx context.Context) (RenderSession, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), b.allocatorOptions()...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(b.log.Printf))

	// The first Run on a fresh context launches the process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()

		return nil, fmt.Errorf("%w: %w", ErrBrowserStart, err)
	}

	b.log.Debug("🌐 Browser session started")

	return &Session{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		waitTimeout:   b.cfg.GetWaitTimeout(),
		loadTimeout:   b.cfg.GetPageLoadTimeout(),
		log:           b.log,
	}, nil
}

// Session is one running Chrome process. Calls are serialized.
type Session struct {
	mu            sync.Mutex
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	waitTimeout   time.Duration
	loadTimeout   time.Duration
	released      bool
	once          sync.Once
	log           *logger.Logger
}

// CollectLinks opens pageURL in a new tab, waits for the body and
// evaluates the selector in the page.
func (s *Session) CollectLinks(ctx context.Context, pageURL, selector string) ([]Anchor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil, ErrSessionReleased
	}

	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()

	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	loadCtx, cancelLoad := context.WithTimeout(tabCtx, s.loadTimeout)
	defer cancelLoad()

	if err := chromedp.Run(loadCtx, chromedp.Navigate(pageURL)); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", pageURL, err)
	}

	waitCtx, cancelWait := context.WithTimeout(tabCtx, s.waitTimeout)
	defer cancelWait()

	if err := chromedp.Run(waitCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("page body not ready: %w", err)
	}

	script, err := anchorScript(selector)
	if err != nil {
		return nil, err
	}

	var anchors []Anchor
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(script, &anchors)); err != nil {
		return nil, fmt.Errorf("failed to collect anchors: %w", err)
	}

	return anchors, nil
}

// Release shuts the browser down. Safe to call more than once.
func (s *Session) Release() {
	s.once.Do(func() {
		s.mu.Lock()
		s.released = true
		s.mu.Unlock()

		if err := chromedp.Cancel(s.browserCtx); err != nil {
			s.log.Debug("Browser cancel returned error", "error", err)
		}

		s.cancelBrowser()
		s.cancelAlloc()
		s.log.Debug("🌐 Browser session released")
	})
}

func anchorScript(selector string) (string, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return "", fmt.Errorf("failed to encode selector: %w", err)
	}

	return fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(a => ({
	href: a.href || a.getAttribute("href") || "",
	text: (a.textContent || "").trim()
}))`, quoted), nil
}
