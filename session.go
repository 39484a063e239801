package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/google/uuid"
)

// Credentials is held only for the duration of one Session and is never
// persisted or logged.
type Credentials struct {
	ID       string
	Password string
}

// Session owns one isolated browser for exactly one login+purchase attempt.
// Sessions are never reused; concurrent attempts get independent browsers.
type Session struct {
	id       string
	config   *Config
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	dialogs  *DialogWatcher
	rand     *rand.Rand
	log      *slog.Logger
}

// RunPurchase drives one complete attempt: session setup, login, purchase,
// unconditional teardown. It never returns an error; every fault becomes a
// structured Outcome.
func RunPurchase(config *Config, creds Credentials, numbers []int) Outcome {
	session, err := NewSession(config)
	if err != nil {
		Log().Error("session setup failed", "error", err)
		return failure(CatUnexpected, "시스템 오류: "+truncate(err.Error(), 80), RoundInfo{})
	}
	defer session.Close()

	return session.attempt(creds, numbers)
}

func NewSession(config *Config) (*Session, error) {
	s := &Session{
		id:      uuid.NewString(),
		config:  config,
		dialogs: NewDialogWatcher(),
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.log = Log().With("session", s.id)

	// Leakless deadlocks on Windows, see go-rod/rod#853.
	useLeakless := runtime.GOOS != "windows"

	s.launcher = launcher.New().
		Leakless(useLeakless).
		Headless(config.Headless).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("disable-infobars")

	if chromePath, ok := launcher.LookPath(); ok {
		s.launcher = s.launcher.Bin(chromePath)
	}

	url, err := s.launcher.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	s.browser = rod.New().ControlURL(url)
	if err := s.browser.Connect(); err != nil {
		s.launcher.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := stealth.Page(s.browser)
	if err != nil {
		s.browser.Close()
		s.launcher.Cleanup()
		return nil, fmt.Errorf("failed to create stealth page: %w", err)
	}
	s.page = page

	if err := s.normalizeIdentity(); err != nil {
		s.log.Warn("identity normalization incomplete", "error", err)
	}

	s.dialogs.Watch(s.page)

	s.log.Info("session ready", "headless", config.Headless)
	return s, nil
}

// normalizeIdentity aligns the observable fingerprint with an ordinary
// Korean desktop Chrome on top of what the stealth page already patches.
func (s *Session) normalizeIdentity() error {
	err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      s.config.UserAgent,
		AcceptLanguage: s.config.Locale,
	})
	if err != nil {
		return err
	}

	err = s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.config.ViewportWidth,
		Height:            s.config.ViewportHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return err
	}

	_, err = s.page.EvalOnNewDocument(`
		Object.defineProperty(navigator, 'webdriver', {
			get: () => undefined
		});
	`)
	return err
}

// Close tears the session down. Safe on partially-constructed sessions and
// called on every exit path, including the panic path.
func (s *Session) Close() {
	if s.page != nil {
		s.page.Close()
	}
	if s.browser != nil {
		s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
	s.log.Info("session destroyed")
}

// attempt runs login then purchase. The deferred recover is the last line
// of defense: any fault the state machines did not degrade themselves is
// converted into a generic failure outcome here.
func (s *Session) attempt(creds Credentials, numbers []int) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("attempt panicked", "panic", fmt.Sprint(r))
			outcome = failure(CatUnexpected, "시스템 오류: "+truncate(fmt.Sprint(r), 80), RoundInfo{})
		}
	}()

	if !s.login(creds) {
		return failure(CatAuth, "❌ 로그인 실패. 아이디/비밀번호를 확인하세요.", RoundInfo{})
	}

	return s.purchase(numbers)
}

// navigate loads a URL with an explicit referrer so the hop looks like an
// ordinary link traversal. An empty referrer falls back to plain navigation.
func (s *Session) navigate(url, referrer string) error {
	if referrer == "" {
		if err := s.page.Navigate(url); err != nil {
			return err
		}
	} else {
		_, err := proto.PageNavigate{URL: url, Referrer: referrer}.Call(s.page)
		if err != nil {
			return err
		}
	}
	return s.page.Timeout(time.Duration(s.config.NavTimeoutSec) * time.Second).WaitLoad()
}

// content returns the current page HTML, empty on failure.
func (s *Session) content() string {
	html, err := s.page.HTML()
	if err != nil {
		return ""
	}
	return html
}

func (s *Session) sleepMs(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// truncate shortens a diagnostic message without splitting multi-byte
// characters.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
