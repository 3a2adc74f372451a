package caselink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/ternarybob/arbor"
	"github.com/tenantwatch/caselink/internal/common"
	"github.com/tenantwatch/caselink/internal/interfaces"
)

// Session drives one authenticated browser session against the CaseLink
// portal. One session serves a whole crawl batch; the portal requires a
// fresh login before each case search.
type Session struct {
	portal  common.PortalConfig
	crawler common.CrawlerConfig
	logger  arbor.ILogger

	browserCtx      context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc
}

// Compile-time interface assertion
var _ interfaces.PortalDriver = (*Session)(nil)

// NewSession launches a headless browser and returns a driver bound to it
func NewSession(ctx context.Context, portal common.PortalConfig, crawler common.CrawlerConfig, logger arbor.ILogger) (*Session, error) {
	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", crawler.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", crawler.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(crawler.UserAgent),
	)

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, allocatorOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	if err := chromedp.Run(browserCtx, network.Enable()); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	logger.Debug().
		Bool("headless", crawler.Headless).
		Str("portal", portal.BaseURL).
		Msg("Browser session started")

	return &Session{
		portal:          portal,
		crawler:         crawler,
		logger:          logger,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
		allocatorCancel: allocatorCancel,
	}, nil
}

// RunWithBrowser opens a browser session for the duration of fn and always
// tears it down afterwards, whatever fn returns.
func RunWithBrowser(ctx context.Context, cfg *common.Config, logger arbor.ILogger, fn func(driver interfaces.PortalDriver) error) error {
	session, err := NewSession(ctx, cfg.Portal, cfg.Crawler, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	return fn(session)
}

// Login authenticates against the portal's login form
func (s *Session) Login(ctx context.Context) error {
	navWait := common.Duration(s.crawler.NavigationWait, 2*time.Second)

	err := chromedp.Run(s.browserCtx,
		chromedp.Navigate(s.portal.BaseURL),
		chromedp.WaitVisible(nameSelector(usernameInput), chromedp.ByQuery),
		chromedp.SendKeys(nameSelector(usernameInput), s.portal.Username, chromedp.ByQuery),
		chromedp.SendKeys(nameSelector(passwordInput), s.portal.Password, chromedp.ByQuery),
		chromedp.Click(nameSelector(loginButton), chromedp.ByQuery),
		chromedp.Sleep(navWait),
	)
	if err != nil {
		return fmt.Errorf("portal login failed: %w", err)
	}

	s.logger.Debug().Str("portal", s.portal.BaseURL).Msg("Logged in to portal")
	return nil
}

// SearchCase fills the docket number field and submits the search form.
// The field sits in postback-refreshed markup, so it is sometimes present
// but not yet interactable; those attempts wait for the stale element to be
// replaced and the fresh one to be clickable before retrying.
func (s *Session) SearchCase(ctx context.Context, docketID string) error {
	retryDelay := common.Duration(s.crawler.RetryDelay, 500*time.Millisecond)
	elementWait := common.Duration(s.crawler.ElementWait, time.Second)
	navWait := common.Duration(s.crawler.NavigationWait, 2*time.Second)

	var lastErr error
	for attempt := 0; attempt < s.crawler.SearchAttempts; attempt++ {
		err := chromedp.Run(s.browserCtx,
			chromedp.Clear(nameSelector(docketNumberInput), chromedp.ByQuery),
			chromedp.SendKeys(nameSelector(docketNumberInput), docketID, chromedp.ByQuery),
		)
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err

		s.logger.Debug().
			Int("attempt", attempt+1).
			Str("docket_id", docketID).
			Err(err).
			Msg("Docket search field not interactable, waiting")

		// Wait for the field to become interactable again, then back off
		s.waitFor(ctx, interactableExpr(docketNumberInput), elementWait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	if lastErr != nil {
		return fmt.Errorf("docket search field never became interactable for %s: %w", docketID, lastErr)
	}

	err := chromedp.Run(s.browserCtx,
		chromedp.SendKeys(nameSelector(docketNumberInput), kb.Enter, chromedp.ByQuery),
		chromedp.Sleep(navWait),
	)
	if err != nil {
		return fmt.Errorf("docket search submit failed for %s: %w", docketID, err)
	}
	return nil
}

// PostbackHTML reads the full outer markup of the postback frame's document
// root. The frame is same-origin, so its content is reachable by script.
func (s *Session) PostbackHTML(ctx context.Context) (string, error) {
	var html string
	err := chromedp.Run(s.browserCtx,
		chromedp.Evaluate(frameHTMLExpr(postbackFrame), &html),
	)
	if err != nil {
		return "", fmt.Errorf("failed to read %s frame: %w", postbackFrame, err)
	}
	return html, nil
}

// GridRows waits for the hearing grid's date and description inputs to be
// visible in the update frame, then returns them zipped row by row. The grid
// populates asynchronously after frame load, so the visibility wait is a
// required suspension point, bounded by crawler.grid_wait.
func (s *Session) GridRows(ctx context.Context) ([]interfaces.GridRow, error) {
	gridWait := common.Duration(s.crawler.GridWait, 2*time.Second)

	if err := s.waitFor(ctx, gridVisibleExpr(), gridWait); err != nil {
		return nil, fmt.Errorf("hearing grid never became visible: %w", err)
	}

	var html string
	err := chromedp.Run(s.browserCtx,
		chromedp.Evaluate(frameHTMLExpr(updateFrame), &html),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s frame: %w", updateFrame, err)
	}

	return parseGridRows(html)
}

// Close tears down the browser session
func (s *Session) Close() error {
	s.browserCancel()
	s.allocatorCancel()
	return nil
}

// waitFor polls a boolean page expression until it is true or the bound
// elapses. Returns the last evaluation error, or a timeout error.
func (s *Session) waitFor(ctx context.Context, expr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		var ok bool
		err := chromedp.Run(s.browserCtx, chromedp.Evaluate(expr, &ok))
		if err == nil && ok {
			return nil
		}
		if time.Now().After(deadline) {
			if err != nil {
				return err
			}
			return fmt.Errorf("condition not met within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// parseGridRows zips date input values with description input values from
// the update frame's markup.
func parseGridRows(html string) ([]interfaces.GridRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse grid markup: %w", err)
	}

	var rows []interfaces.GridRow
	doc.Find(gridRowSelector).Each(func(_ int, tr *goquery.Selection) {
		date := tr.Find("td:nth-child(2) input").AttrOr("value", "")
		desc := tr.Find("td:nth-child(3) input").AttrOr("value", "")
		if date == "" && desc == "" {
			return
		}
		rows = append(rows, interfaces.GridRow{Date: date, Description: desc})
	})
	return rows, nil
}

func nameSelector(name string) string {
	return fmt.Sprintf(`[name=%q]`, name)
}

// interactableExpr checks that a named element exists, is displayed and is
// not disabled, which is as close as script gets to "clickable".
func interactableExpr(name string) string {
	return fmt.Sprintf(
		`(function(){var e=document.getElementsByName(%q)[0];return !!e && !e.disabled && e.offsetParent !== null;})()`,
		name)
}

func frameHTMLExpr(frame string) string {
	return fmt.Sprintf(
		`(function(){var f=window.frames[%q];return f ? f.document.documentElement.outerHTML : "";})()`,
		frame)
}

func gridVisibleExpr() string {
	return fmt.Sprintf(
		`(function(){var f=window.frames[%q];if(!f){return false;}`+
			`var d=f.document;`+
			`var dates=d.querySelectorAll(%q);var descs=d.querySelectorAll(%q);`+
			`if(dates.length===0||descs.length===0){return false;}`+
			`for(var i=0;i<dates.length;i++){if(dates[i].offsetParent===null){return false;}}`+
			`return true;})()`,
		updateFrame, gridDateSelector, gridDescSelector)
}
