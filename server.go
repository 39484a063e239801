package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes the automation core over HTTP. It owns request
// validation; the core assumes already-validated input.
type Server struct {
	config  *Config
	history *HistoryStore

	// run is swappable so handler tests do not need a browser.
	run func(config *Config, creds Credentials, numbers []int) Outcome
}

func NewServer(config *Config, history *HistoryStore) *Server {
	return &Server{
		config:  config,
		history: history,
		run:     RunPurchase,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/ping", s.handleHealth)
	r.Post("/buy", s.handleBuy)
	r.Get("/history", s.handleHistory)
	r.Delete("/history", s.handleClearHistory)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Log().Info("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

type buyRequest struct {
	ID      string `json:"id"`
	PW      string `json:"pw"`
	Numbers []int  `json:"numbers"`
}

type buyResponse struct {
	Outcome
	Entry *HistoryEntry `json:"entry"`
}

func rejectBuy(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// validateSelection enforces the selection-set shape: exactly six distinct
// numbers, each in 1..45.
func validateSelection(numbers []int) string {
	if len(numbers) != 6 {
		return "번호 6개가 필요합니다."
	}
	seen := map[int]bool{}
	for _, n := range numbers {
		if n < 1 || n > 45 || seen[n] {
			return "번호는 1~45 사이의 중복 없는 6개여야 합니다."
		}
		seen[n] = true
	}
	return ""
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rejectBuy(w, "요청 형식이 올바르지 않습니다.")
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	req.PW = strings.TrimSpace(req.PW)
	if req.ID == "" || req.PW == "" {
		rejectBuy(w, "아이디/비밀번호가 없습니다.")
		return
	}
	if msg := validateSelection(req.Numbers); msg != "" {
		rejectBuy(w, msg)
		return
	}

	started := time.Now()
	outcome := s.run(s.config, Credentials{ID: req.ID, Password: req.PW}, req.Numbers)
	Log().Info("buy finished",
		"success", outcome.Success,
		"category", outcome.Category,
		"elapsed", time.Since(started).Round(time.Second).String())

	resp := buyResponse{Outcome: outcome}
	if outcome.Success {
		entry := s.history.Add(req.Numbers, RoundInfo{Round: outcome.Round, Date: outcome.RoundDate})
		resp.Entry = &entry
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": s.history.Load(),
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.history.Clear()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	env := "local"
	if os.Getenv("RENDER") != "" || os.Getenv("DOCKER_ENV") != "" {
		env = "container"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "env": env})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	index := filepath.Join(s.config.StaticDir, "index.html")
	if _, err := os.Stat(index); err == nil {
		http.ServeFile(w, r, index)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"service": "dhlotto"})
}
