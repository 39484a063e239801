package main

import (
	"time"
)

// Outcome is the sole artifact of one purchase attempt, immutable once
// constructed. Category is the machine-readable failure class; Note flags
// monitored conditions that did not fail the attempt.
type Outcome struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Round     string `json:"round"`
	RoundDate string `json:"round_date"`
	Category  string `json:"category,omitempty"`
	Note      string `json:"note,omitempty"`
}

const (
	CatAuth       = "authentication_failure"
	CatNav        = "navigation_failure"
	CatElement    = "element_not_found"
	CatRemote     = "remote_rejection"
	CatUnexpected = "unexpected_exception"

	// The board accepted fewer than six marks but the attempt went on,
	// leaving rejection to the remote side. Monitored: a burst of these
	// means the marking script no longer matches the board markup.
	noteIncompleteSelection = "incomplete_selection"
)

func failure(category, message string, round RoundInfo) Outcome {
	return Outcome{
		Success:   false,
		Message:   message,
		Round:     round.Round,
		RoundDate: round.Date,
		Category:  category,
	}
}

const successMessage = "✅ 구매 성공! 동행복권 마이페이지에서 구매내역을 확인하세요."

// gameFrameCheck mirrors every way the two game frames have been attached
// across site deployments (by id and by name).
const gameFrameCheck = `() =>
	document.getElementById('ifrm_lotto645') !== null ||
	document.getElementById('ifrm_tab') !== null ||
	document.getElementsByName('ifrm_lotto645').length > 0 ||
	document.getElementsByName('ifrm_tab').length > 0`

// boardPrepScript activates the mixed-selection tab and resets the board.
// Every hook is optional because the site renames them between releases;
// reset makes the preparation idempotent.
const boardPrepScript = `() => {
	try {
		if (typeof selectWayTab === 'function') selectWayTab(0);
		if (typeof resetNumber645 === 'function') resetNumber645();
		else if (typeof resetAllNum === 'function') resetAllNum();
		const btnReset = document.getElementById('resetAllNum') || document.getElementById('btnReset');
		if (btnReset) btnReset.click();
	} catch (e) {}
}`

// markScript marks one number. Already-checked boxes are left alone so a
// repeated mark cannot toggle the number back off. The in-page check645
// function is preferred; label click, then direct click, are fallbacks.
// Both zero-padded and unpadded checkbox id variants exist in the wild.
const markScript = `(n) => {
	try {
		const pad = String(n).padStart(2, '0');
		const id = 'check645num' + n;
		const idPadded = 'check645num' + pad;
		const cb = document.getElementById(id) || document.getElementById(idPadded);
		if (cb && cb.checked) return true;
		if (typeof check645 === 'function') {
			check645(n);
			return true;
		}
		const label = document.querySelector('label[for="' + id + '"]') ||
			document.querySelector('label[for="' + idPadded + '"]');
		if (label) { label.click(); return true; }
		if (cb) { cb.click(); return true; }
	} catch (e) {}
	return false;
}`

// purchase drives the full buy flow for an already logged-in session. The
// dialog watcher has been live since session setup, so nothing the page
// raises can block, and its record is consulted after each commit point.
func (s *Session) purchase(numbers []int) Outcome {
	s.log.Info("purchase started", "numbers", numbers)

	round := s.collectRoundInfo()

	if err := s.navigate(s.config.GameURL, ""); err != nil {
		s.log.Warn("purchase page navigation failed", "error", err)
		return failure(CatNav, "구매 중 오류 발생: "+truncate(err.Error(), 80), round)
	}

	s.waitForGameFrames()
	s.sleepMs(3000)

	s.closePopups()
	s.sleepMs(1000)

	s.prepareBoard()

	marked := 0
	for _, n := range numbers {
		if s.markNumber(n) {
			marked++
			s.log.Info("number marked", "number", n, "progress", marked)
		} else {
			s.log.Warn("number mark failed", "number", n)
		}
		s.sleepMs(s.config.markInterval())
	}

	note := ""
	if marked < len(numbers) {
		s.log.Warn("selection incomplete, proceeding anyway", "marked", marked, "wanted", len(numbers))
		note = noteIncompleteSelection
	}
	s.sleepMs(1000)

	sel, ok := s.clickAction("confirm_selection", clickFrameOrder)
	if !ok {
		return failure(CatElement, "번호 선택 '확인' 버튼을 클릭하지 못했습니다.", round)
	}
	s.log.Info("selection confirmed", "selector", sel)
	s.sleepMs(2000)

	// A shortage dialog at this point dooms the rest of the flow; stop
	// before burning time on the buy click.
	if msg, found := lastMatch(s.dialogs.Messages(), shortageMarkers); found {
		return failure(CatRemote, "예치금 부족: "+msg, round)
	}

	sel, ok = s.clickAction("buy", clickFrameOrder)
	if !ok {
		return failure(CatElement, "'구매하기' 버튼을 클릭하지 못했습니다.", round)
	}
	s.log.Info("buy clicked", "selector", sel)
	s.sleepMs(2000)

	// The buy click succeeding as a UI action means nothing; the dialogs
	// are the authoritative signal.
	if msg, found := firstMatch(s.dialogs.Messages(), errorMarkers); found {
		return failure(CatRemote, "구매 실패: "+msg, round)
	}

	// Confirmation prompt and receipt prompt are not always shown.
	if _, ok := s.clickAction("purchase_confirm", clickFrameOrder); ok {
		s.log.Info("purchase confirmation dismissed")
	}
	s.sleepMs(2000)

	if _, ok := s.clickAction("receipt_confirm", clickFrameOrder); ok {
		s.log.Info("purchase receipt dismissed")
	}
	s.sleepMs(1000)

	s.log.Info("purchase completed", "round", round.Round)
	return Outcome{
		Success:   true,
		Message:   successMessage,
		Round:     round.Round,
		RoundDate: round.Date,
		Note:      note,
	}
}

// waitForGameFrames waits for either game frame to attach. Timing out is
// logged but not fatal: every subsequent step is defensive on its own.
func (s *Session) waitForGameFrames() {
	deadline := time.Now().Add(time.Duration(s.config.FrameWaitSec) * time.Second)
	for {
		res, err := s.page.Eval(gameFrameCheck)
		if err == nil && res.Value.Bool() {
			s.log.Info("game frame attached")
			return
		}
		if time.Now().After(deadline) {
			s.log.Warn("game frames never attached, proceeding anyway")
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
}

// closePopups clicks every close-control variant it can resolve; more than
// one promotional popup can be open at once, and none being present is
// normal.
func (s *Session) closePopups() {
	for _, c := range actionCandidates["close_popup"] {
		if el := s.resolve(c, clickFrameOrder); el != nil {
			clickCandidate(el)
		}
	}
}

// prepareBoard runs the reset/tab-activation hooks inside whichever game
// frame is live. Executed once per attempt.
func (s *Session) prepareBoard() bool {
	for _, name := range boardFrameOrder {
		frame := s.frameByName(name)
		if frame == nil {
			continue
		}
		if _, err := frame.Eval(boardPrepScript); err != nil {
			s.log.Warn("board preparation script failed", "frame", name, "error", err)
			continue
		}
		s.sleepMs(1000)
		return true
	}
	s.log.Warn("board preparation found no live frame")
	return false
}

// markNumber performs exactly one mark operation for one number.
func (s *Session) markNumber(n int) bool {
	for _, name := range boardFrameOrder {
		frame := s.frameByName(name)
		if frame == nil {
			continue
		}
		res, err := frame.Eval(markScript, n)
		if err == nil && res.Value.Bool() {
			return true
		}
	}
	return false
}
