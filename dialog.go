package main

import (
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DialogWatcher intercepts native JavaScript dialogs (alert/confirm/prompt)
// on one page, accepts them immediately, and keeps their messages for later
// classification. A pending native dialog blocks the page indefinitely, so
// the watcher must be installed before any navigation that can raise one.
type DialogWatcher struct {
	mu       sync.Mutex
	messages []string
}

func NewDialogWatcher() *DialogWatcher {
	return &DialogWatcher{}
}

// Watch subscribes to dialog events on the page. The subscription lives
// until the page is closed.
func (w *DialogWatcher) Watch(page *rod.Page) {
	go page.EachEvent(func(e *proto.PageJavascriptDialogOpening) {
		w.record(e.Message)
		err := proto.PageHandleJavaScriptDialog{Accept: true}.Call(page)
		if err != nil {
			Log().Warn("failed to accept dialog", "message", e.Message, "error", err)
		}
	})()
}

func (w *DialogWatcher) record(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msg)
	Log().Info("dialog auto-accepted", "message", msg)
}

// Messages returns a copy of all dialog texts recorded so far, oldest first.
func (w *DialogWatcher) Messages() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.messages))
	copy(out, w.messages)
	return out
}

// Dialog marker vocabulary. The target site reports every business-level
// failure through a native dialog, so substring matching against these
// markers is the authoritative success/failure signal. Kept as data so new
// wordings can be added without touching the state machines.
var (
	shortageMarkers = []string{"부족"}
	errorMarkers    = []string{"부족", "초과", "오류", "마감", "로그인", "실패"}
)

// firstMatch returns the first message containing any of the markers.
func firstMatch(messages []string, markers []string) (string, bool) {
	for _, msg := range messages {
		for _, marker := range markers {
			if strings.Contains(msg, marker) {
				return msg, true
			}
		}
	}
	return "", false
}

// lastMatch returns the most recent message containing any of the markers.
func lastMatch(messages []string, markers []string) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		for _, marker := range markers {
			if strings.Contains(messages[i], marker) {
				return messages[i], true
			}
		}
	}
	return "", false
}
