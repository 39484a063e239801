package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, run func(*Config, Credentials, []int) Outcome) *Server {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "dhlotto-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	config := DefaultConfig()
	config.HistoryPath = filepath.Join(tempDir, "purchase_history.json")

	server := NewServer(config, NewHistoryStore(config.HistoryPath))
	if run != nil {
		server.run = run
	}
	return server
}

func postBuy(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/buy", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBuy(t *testing.T, rec *httptest.ResponseRecorder) buyResponse {
	t.Helper()
	var resp buyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestBuyValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing credentials", `{"id":"","pw":"","numbers":[1,2,3,4,5,6]}`, "아이디/비밀번호가 없습니다."},
		{"whitespace credentials", `{"id":"  ","pw":"x","numbers":[1,2,3,4,5,6]}`, "아이디/비밀번호가 없습니다."},
		{"five numbers", `{"id":"user","pw":"pw","numbers":[1,2,3,4,5]}`, "번호 6개가 필요합니다."},
		{"seven numbers", `{"id":"user","pw":"pw","numbers":[1,2,3,4,5,6,7]}`, "번호 6개가 필요합니다."},
		{"duplicate number", `{"id":"user","pw":"pw","numbers":[1,2,3,4,5,5]}`, "번호는 1~45 사이의 중복 없는 6개여야 합니다."},
		{"out of range", `{"id":"user","pw":"pw","numbers":[1,2,3,4,5,46]}`, "번호는 1~45 사이의 중복 없는 6개여야 합니다."},
		{"zero", `{"id":"user","pw":"pw","numbers":[0,2,3,4,5,6]}`, "번호는 1~45 사이의 중복 없는 6개여야 합니다."},
		{"bad json", `{`, "요청 형식이 올바르지 않습니다."},
	}

	server := newTestServer(t, func(*Config, Credentials, []int) Outcome {
		t.Fatal("automation must not run for invalid requests")
		return Outcome{}
	})

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := postBuy(t, server, test.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), test.wantMsg) {
				t.Errorf("Expected message %q in response %s", test.wantMsg, rec.Body.String())
			}
		})
	}
}

func TestBuySuccessAppendsHistory(t *testing.T) {
	var gotCreds Credentials
	var gotNumbers []int

	server := newTestServer(t, func(_ *Config, creds Credentials, numbers []int) Outcome {
		gotCreds = creds
		gotNumbers = numbers
		return Outcome{
			Success:   true,
			Message:   successMessage,
			Round:     "1234",
			RoundDate: "2025-01-18",
		}
	})

	rec := postBuy(t, server, `{"id":"user","pw":"secret","numbers":[3,7,15,22,31,45]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	resp := decodeBuy(t, rec)
	if !resp.Success {
		t.Fatalf("Expected success, got message %q", resp.Message)
	}
	if resp.Round != "1234" || resp.RoundDate != "2025-01-18" {
		t.Errorf("Expected round 1234 / 2025-01-18, got %q / %q", resp.Round, resp.RoundDate)
	}
	if resp.Entry == nil {
		t.Fatal("Expected a history entry on success")
	}

	if gotCreds.ID != "user" || gotCreds.Password != "secret" {
		t.Error("Credentials not passed through to the core")
	}
	if !reflect.DeepEqual(gotNumbers, []int{3, 7, 15, 22, 31, 45}) {
		t.Errorf("Numbers not passed through in order: %v", gotNumbers)
	}

	entries := server.history.Load()
	if len(entries) != 1 {
		t.Fatalf("Expected exactly one history entry, got %d", len(entries))
	}
	if !reflect.DeepEqual(entries[0].Numbers, []int{3, 7, 15, 22, 31, 45}) {
		t.Errorf("History entry numbers = %v", entries[0].Numbers)
	}
	if entries[0].Round != "1234" || entries[0].RoundDate != "2025-01-18" {
		t.Errorf("History entry round = %q / %q", entries[0].Round, entries[0].RoundDate)
	}
}

func TestBuyLoginFailureWritesNoHistory(t *testing.T) {
	server := newTestServer(t, func(*Config, Credentials, []int) Outcome {
		return failure(CatAuth, "❌ 로그인 실패. 아이디/비밀번호를 확인하세요.", RoundInfo{})
	})

	rec := postBuy(t, server, `{"id":"user","pw":"wrong","numbers":[3,7,15,22,31,45]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	resp := decodeBuy(t, rec)
	if resp.Success {
		t.Fatal("Expected failure outcome")
	}
	if !strings.Contains(resp.Message, "로그인") {
		t.Errorf("Expected a login failure message, got %q", resp.Message)
	}
	if resp.Category != CatAuth {
		t.Errorf("Expected category %q, got %q", CatAuth, resp.Category)
	}
	if resp.Entry != nil {
		t.Error("Expected no history entry on failure")
	}
	if entries := server.history.Load(); len(entries) != 0 {
		t.Errorf("Expected empty history, got %d entries", len(entries))
	}
}

func TestHistoryEndpoints(t *testing.T) {
	server := newTestServer(t, nil)
	server.history.Add([]int{1, 2, 3, 4, 5, 6}, RoundInfo{Round: "1234", Date: "2025-01-18"})

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	var listing struct {
		History []HistoryEntry `json:"history"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listing); err != nil {
		t.Fatalf("Failed to decode history: %v", err)
	}
	if len(listing.History) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(listing.History))
	}

	req = httptest.NewRequest(http.MethodDelete, "/history", nil)
	rec = httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for delete, got %d", rec.Code)
	}

	if entries := server.history.Load(); len(entries) != 0 {
		t.Errorf("Expected empty history after delete, got %d entries", len(entries))
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	for _, path := range []string{"/health", "/ping"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		server.Routes().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200 for %s, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
			t.Errorf("Expected ok status payload for %s, got %s", path, rec.Body.String())
		}
	}
}

func TestValidateSelection(t *testing.T) {
	tests := []struct {
		name    string
		numbers []int
		wantOK  bool
	}{
		{"valid", []int{3, 7, 15, 22, 31, 45}, true},
		{"bounds inclusive", []int{1, 2, 3, 4, 5, 45}, true},
		{"too few", []int{1, 2, 3}, false},
		{"nil", nil, false},
		{"duplicate", []int{1, 1, 2, 3, 4, 5}, false},
		{"negative", []int{-1, 2, 3, 4, 5, 6}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			msg := validateSelection(test.numbers)
			if (msg == "") != test.wantOK {
				t.Errorf("validateSelection(%v) = %q, expected ok=%v", test.numbers, msg, test.wantOK)
			}
		})
	}
}
