package main

import (
	"fmt"
	"regexp"
	"time"
)

// RoundInfo identifies the draw being purchased. Best-effort: either field
// falls back to its sentinel when scraping fails, which is never fatal.
type RoundInfo struct {
	Round string `json:"round"`
	Date  string `json:"round_date"`
}

const unknownRound = "---"

func defaultRoundInfo() RoundInfo {
	return RoundInfo{
		Round: unknownRound,
		Date:  time.Now().Format("2006-01-02"),
	}
}

// The landing page phrases the current round two ways depending on the
// template; the first pattern is the common one.
var roundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`제\s*(\d{3,4})\s*회`),
	regexp.MustCompile(`(\d{3,4})회차`),
}

var roundDatePattern = regexp.MustCompile(`(\d{4})[.\-](\d{2})[.\-](\d{2})`)

func extractRound(html string) (string, bool) {
	for _, p := range roundPatterns {
		if m := p.FindStringSubmatch(html); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func extractRoundDate(html string) (string, bool) {
	m := roundDatePattern.FindStringSubmatch(html)
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]), true
}

// collectRoundInfo scrapes the round number and draw date from the main
// page. Both extractions are independent and fail silently to sentinels.
func (s *Session) collectRoundInfo() RoundInfo {
	info := defaultRoundInfo()

	if err := s.navigate(s.config.MainURL, ""); err != nil {
		s.log.Warn("round info navigation failed", "error", err)
		return info
	}
	s.sleepMs(1000)

	html := s.content()
	if round, ok := extractRound(html); ok {
		info.Round = round
	}
	if date, ok := extractRoundDate(html); ok {
		info.Date = date
	}

	s.log.Info("round info collected", "round", info.Round, "date", info.Date)
	return info
}
