package main

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

const (
	historyRetention  = 30 * 24 * time.Hour
	historyMaxEntries = 200
)

type HistoryEntry struct {
	Timestamp string `json:"timestamp"`
	Numbers   []int  `json:"numbers"`
	Round     string `json:"round"`
	RoundDate string `json:"round_date"`
}

// HistoryStore is a JSON file holding purchase entries, most recent first.
// Writers are serialized by the mutex; every write goes through a full
// load-filter-rewrite cycle so two attempts finishing close together
// cannot lose each other's entry.
type HistoryStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path, now: time.Now}
}

// Load returns the retained entries, dropping anything older than 30 days.
// When the retention pass removes entries the filtered set is persisted.
func (h *HistoryStore) Load() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loadLocked()
}

// Add prepends a new entry and caps the file at the 200 most recent.
func (h *HistoryStore) Add(numbers []int, round RoundInfo) HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := HistoryEntry{
		Timestamp: h.now().Format(time.RFC3339),
		Numbers:   numbers,
		Round:     round.Round,
		RoundDate: round.Date,
	}
	if entry.Round == "" {
		entry.Round = unknownRound
	}
	if entry.RoundDate == "" {
		entry.RoundDate = h.now().Format("2006-01-02")
	}

	entries := append([]HistoryEntry{entry}, h.loadLocked()...)
	if len(entries) > historyMaxEntries {
		entries = entries[:historyMaxEntries]
	}
	h.saveLocked(entries)
	return entry
}

// Clear empties the store.
func (h *HistoryStore) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saveLocked([]HistoryEntry{})
}

func (h *HistoryStore) loadLocked() []HistoryEntry {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if !os.IsNotExist(err) {
			Log().Error("history load failed", "path", h.path, "error", err)
		}
		return []HistoryEntry{}
	}

	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		Log().Error("history file corrupt", "path", h.path, "error", err)
		return []HistoryEntry{}
	}

	cutoff := h.now().Add(-historyRetention)
	filtered := entries[:0]
	for _, e := range entries {
		ts, err := time.Parse(time.RFC3339, e.Timestamp)
		if err != nil || !ts.After(cutoff) {
			continue
		}
		filtered = append(filtered, e)
	}

	if len(filtered) != len(entries) {
		h.saveLocked(filtered)
	}
	return filtered
}

func (h *HistoryStore) saveLocked(entries []HistoryEntry) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		Log().Error("history marshal failed", "error", err)
		return
	}
	if err := os.WriteFile(h.path, data, 0644); err != nil {
		Log().Error("history save failed", "path", h.path, "error", err)
	}
}
