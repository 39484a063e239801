package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Probe budgets per locator tier. The named-frame tier gets the longest
// budget because it almost always holds the target; the remaining tiers
// are opportunistic sweeps.
const (
	namedFrameProbe = 1 * time.Second
	anyFrameProbe   = 500 * time.Millisecond
	topProbe        = 500 * time.Millisecond
	probeStep       = 100 * time.Millisecond
)

// candidate is one selector variant for a UI action. When text is set the
// element must additionally contain that text, which stands in for the
// text-matching selectors the site's markup otherwise requires.
type candidate struct {
	sel  string
	text string
}

// The game board lives in one of these two frames depending on which page
// template the site serves. Board preparation probes them in the reverse
// order because the tab frame owns the reset functions.
var (
	clickFrameOrder = []string{"ifrm_lotto645", "ifrm_tab"}
	boardFrameOrder = []string{"ifrm_tab", "ifrm_lotto645"}
)

// actionCandidates maps each UI action to its ordered selector variants.
// The site relocates and restyles these controls between deployments, so
// every action carries every variant seen in the wild, first visible wins.
var actionCandidates = map[string][]candidate{
	"close_popup": {
		{sel: "input[value='닫기']"},
		{sel: ".close_btn"},
		{sel: ".btn_close"},
		{sel: "a", text: "닫기"},
		{sel: "button", text: "닫기"},
	},
	"portal_escape": {
		{sel: "a", text: "동행복권통합포탈이동"},
		{sel: "button", text: "동행복권통합포탈이동"},
		{sel: "a", text: "통합포탈"},
		{sel: "button", text: "통합포탈"},
		{sel: "a", text: "동행복권포탈이동"},
	},
	"confirm_selection": {
		{sel: "#btnSelectNum"},
		{sel: "input[value='확인']"},
		{sel: "a.btn_common", text: "확인"},
	},
	"buy": {
		{sel: "#btnBuy"},
		{sel: "input[value='구매하기']"},
		{sel: "a.btn_common", text: "구매하기"},
		{sel: "button", text: "구매하기"},
	},
	"purchase_confirm": {
		{sel: "#popupLayerConfirm input[value='확인']"},
		{sel: ".btn_confirm input[value='확인']"},
		{sel: "input[value='확인']"},
		{sel: "a", text: "확인"},
		{sel: "button", text: "확인"},
	},
	"receipt_confirm": {
		{sel: ".btn_popup_buy_confirm input[value='확인']"},
		{sel: ".confirm input[value='확인']"},
		{sel: "input[value='확인']"},
		{sel: "a", text: "확인"},
		{sel: "button", text: "확인"},
	},
}

// frameByName returns the sub-document for a named iframe, or nil if the
// frame is not currently attached.
func (s *Session) frameByName(name string) *rod.Page {
	els, err := s.page.Elements(fmt.Sprintf("iframe[name=%q], iframe[id=%q]", name, name))
	if err != nil || len(els) == 0 {
		return nil
	}
	frame, err := els.First().Frame()
	if err != nil {
		return nil
	}
	return frame
}

// attachedFrames returns every sub-document currently attached to the page.
func (s *Session) attachedFrames() []*rod.Page {
	els, err := s.page.Elements("iframe")
	if err != nil {
		return nil
	}
	var frames []*rod.Page
	for _, el := range els {
		frame, err := el.Frame()
		if err != nil {
			continue
		}
		frames = append(frames, frame)
	}
	return frames
}

// probeVisible polls a document for the first visible element matching the
// candidate within the budget. Presence alone is not enough: the target UI
// keeps hidden duplicates of most controls left over from inactive tabs.
func probeVisible(doc *rod.Page, c candidate, budget time.Duration) *rod.Element {
	deadline := time.Now().Add(budget)
	for {
		els, err := doc.Elements(c.sel)
		if err == nil {
			for _, el := range els {
				if c.text != "" {
					txt, err := el.Text()
					if err != nil || !strings.Contains(txt, c.text) {
						continue
					}
				}
				if visible, err := el.Visible(); err == nil && visible {
					return el
				}
			}
		}
		if time.Now().After(deadline) {
			return nil
		}
		time.Sleep(probeStep)
	}
}

// resolve finds the first visible element for the candidate, trying the
// named frames in priority order, then every attached frame, then the top
// document. A nil result is not an error at this layer; callers decide
// whether a miss is fatal.
func (s *Session) resolve(c candidate, frameNames []string) *rod.Element {
	for _, name := range frameNames {
		if frame := s.frameByName(name); frame != nil {
			if el := probeVisible(frame, c, namedFrameProbe); el != nil {
				return el
			}
		}
	}

	for _, frame := range s.attachedFrames() {
		if el := probeVisible(frame, c, anyFrameProbe); el != nil {
			return el
		}
	}

	return probeVisible(s.page, c, topProbe)
}

// clickCandidate clicks a resolved element, falling back to a scripted
// click when the native click is rejected (covered or moving targets).
func clickCandidate(el *rod.Element) bool {
	if err := el.Click(proto.InputMouseButtonLeft, 1); err == nil {
		return true
	}
	if _, err := el.Eval(`() => this.click()`); err == nil {
		return true
	}
	return false
}

// clickAction resolves and clicks the first workable candidate for the
// action. Returns the selector that matched for diagnostics.
func (s *Session) clickAction(action string, frameNames []string) (string, bool) {
	for _, c := range actionCandidates[action] {
		el := s.resolve(c, frameNames)
		if el == nil {
			continue
		}
		if clickCandidate(el) {
			Log().Debug("clicked", "action", action, "selector", c.sel, "text", c.text)
			return c.sel, true
		}
	}
	return "", false
}
