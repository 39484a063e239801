package main

import (
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

const (
	userIDField   = "#inpUserId"
	passwordField = "#inpUserPswdEncn"
	loginButton   = "#btnLogin"

	// Best-effort diagnostic scrape targets when login fails.
	loginFailureBox = ".alert_msg, .login_fail, #popupLayer"
)

// isLoggedInContent reports whether the page HTML carries a post-login
// marker: a logout affordance or the account-area hook.
func isLoggedInContent(html string) bool {
	return strings.Contains(html, "로그아웃") ||
		strings.Contains(html, "btn_logout") ||
		strings.Contains(html, "myPage")
}

// isSimplifiedPortal detects the reduced-functionality page the site
// sometimes serves after login instead of the full portal.
func isSimplifiedPortal(html string) bool {
	return strings.Contains(html, "간소화") && strings.Contains(html, "운영")
}

// gameCheckLoggedIn is the looser marker check used on the lotto-only
// page, which renders neither btn_logout nor myPage on some templates.
func gameCheckLoggedIn(html string) bool {
	return strings.Contains(html, "로그아웃") || strings.Contains(html, "게임")
}

// login drives navigation, credential entry, submission and the
// post-submit observation loop. It never raises: any missing element,
// timeout or script error degrades to false.
func (s *Session) login(creds Credentials) bool {
	s.log.Info("login attempt started")

	// Establish the homepage as referrer first; the site rejects some
	// deep links that arrive without one.
	if err := s.navigate(s.config.BaseURL, ""); err != nil {
		s.log.Warn("homepage navigation failed", "error", err)
		return false
	}
	s.sleepMs(s.config.HomeSettleMs)

	if err := s.navigate(s.config.LoginURL, s.config.BaseURL); err != nil {
		s.log.Warn("login page navigation failed", "error", err)
		return false
	}
	s.sleepMs(2000)

	idField, err := s.page.Timeout(time.Duration(s.config.FieldWaitSec) * time.Second).Element(userIDField)
	if err != nil {
		s.log.Warn("id field never appeared", "error", err)
		return false
	}
	// The wait deadline must not outlive the wait itself: slow typing
	// below can take longer than the element-wait budget.
	idField = idField.CancelTimeout()
	s.sleepMs(1000)

	if err := s.typeSlow(idField, creds.ID); err != nil {
		s.log.Warn("id entry failed", "error", err)
		return false
	}
	s.sleepMs(s.config.fieldSettle())

	pwField, err := s.page.Timeout(10 * time.Second).Element(passwordField)
	if err != nil {
		s.log.Warn("password field never appeared", "error", err)
		return false
	}
	pwField = pwField.CancelTimeout()
	if err := s.typeSlow(pwField, creds.Password); err != nil {
		s.log.Warn("password entry failed", "error", err)
		return false
	}
	s.sleepMs(1000)

	submit, err := s.page.Timeout(10 * time.Second).Element(loginButton)
	if err != nil || !clickCandidate(submit) {
		s.log.Warn("submit click failed")
		return false
	}
	s.sleepMs(3000)

	// Observe the result. The simplified portal can appear instead of
	// the full site; escape it and keep observing.
	for i := 0; i < s.config.loginPolls(); i++ {
		html := s.content()

		if isSimplifiedPortal(html) {
			s.log.Info("simplified portal detected, escaping")
			s.escapePortal()
		}

		if isLoggedInContent(s.content()) {
			return s.confirmLogin("poll")
		}
		s.sleepMs(1000)
	}

	// The generic check fails on some templates even when the login
	// worked; the lotto-only page is reachable only when logged in.
	if err := s.navigate(s.config.GameCheckURL, ""); err == nil {
		if gameCheckLoggedIn(s.content()) {
			return s.confirmLogin("game page fallback")
		}
	}

	s.scrapeLoginFailure()
	s.log.Warn("login never reached a success marker")
	return false
}

// confirmLogin double-checks the dialog record before declaring success.
// A failure-marker dialog is authoritative; no page marker overrides it.
func (s *Session) confirmLogin(via string) bool {
	if msg, found := firstMatch(s.dialogs.Messages(), errorMarkers); found {
		s.log.Warn("login page looked successful but a dialog says otherwise", "dialog", msg)
		return false
	}
	s.log.Info("login succeeded", "via", via)
	return true
}

// escapePortal clicks whichever "go to full portal" control variant is
// visible, or force-navigates to the main page when none is.
func (s *Session) escapePortal() {
	if _, ok := s.clickAction("portal_escape", nil); !ok {
		if err := s.navigate(s.config.MainURL, ""); err != nil {
			s.log.Warn("forced main navigation failed", "error", err)
		}
	}
	time.Sleep(time.Duration(s.config.PortalEscapeWait) * time.Second)
}

// typeSlow clears a field and enters text one character at a time with a
// fixed delay. Bulk fill trips the site's client-side validation and is
// the more detectable pattern; simulated keystrokes are not.
func (s *Session) typeSlow(el *rod.Element, text string) error {
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	s.sleepMs(s.config.fieldSettle())

	if err := el.SelectAllText(); err == nil {
		el.Type(input.Backspace)
	}

	for _, r := range text {
		if err := el.Input(string(r)); err != nil {
			return err
		}
		// Small jitter on top of the base delay; perfectly even
		// keystroke timing is its own tell.
		s.sleepMs(s.config.typingDelay() + s.rand.Intn(60))
	}
	return nil
}

// scrapeLoginFailure grabs any visible failure message purely for the
// logs; it does not change the outcome.
func (s *Session) scrapeLoginFailure() {
	el := probeVisible(s.page, candidate{sel: loginFailureBox}, 2*time.Second)
	if el == nil {
		return
	}
	if msg, err := el.Text(); err == nil && msg != "" {
		s.log.Warn("login failure message", "message", strings.TrimSpace(msg))
	}
}
