package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	BaseURL  string `yaml:"base_url"`
	LoginURL string `yaml:"login_url"`
	MainURL  string `yaml:"main_url"`
	GameURL  string `yaml:"game_url"`
	// Lotto-only page, reachable only when logged in. Used as the
	// fallback login check when the generic poll never fires.
	GameCheckURL string `yaml:"game_check_url"`

	HistoryPath string `yaml:"history_path"`
	StaticDir   string `yaml:"static_dir"`

	UserAgent      string `yaml:"user_agent"`
	Locale         string `yaml:"locale"`
	ViewportWidth  int    `yaml:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height"`

	Headless  bool `yaml:"headless"`
	DebugMode bool `yaml:"debug_mode"`

	// Pacing delays. These are deliberate anti-detection choices, not
	// incidental latency: the target site is measurably less reliable
	// when driven at script speed. Tune with care.
	TypingDelayMs    int `yaml:"typing_delay_ms"`
	FieldSettleMs    int `yaml:"field_settle_ms"`
	MarkIntervalMs   int `yaml:"mark_interval_ms"`
	HomeSettleMs     int `yaml:"home_settle_ms"`
	PortalEscapeWait int `yaml:"portal_escape_wait_sec"`

	LoginPollAttempts int `yaml:"login_poll_attempts"`
	NavTimeoutSec     int `yaml:"nav_timeout_sec"`
	FrameWaitSec      int `yaml:"frame_wait_sec"`
	FieldWaitSec      int `yaml:"field_wait_sec"`
}

func DefaultConfig() *Config {
	return &Config{
		Port:         "5000",
		BaseURL:      "https://www.dhlottery.co.kr/",
		LoginURL:     "https://www.dhlottery.co.kr/login",
		MainURL:      "https://www.dhlottery.co.kr/common.do?method=main",
		GameURL:      "https://el.dhlottery.co.kr/game/TotalGame.jsp?LottoId=LO40",
		GameCheckURL: "https://ol.dhlottery.co.kr/olotto/game/game645.do",

		HistoryPath: "purchase_history.json",
		StaticDir:   "static",

		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) " +
			"Chrome/122.0.0.0 Safari/537.36",
		Locale:         "ko-KR",
		ViewportWidth:  1366,
		ViewportHeight: 768,

		Headless:  false,
		DebugMode: false,

		TypingDelayMs:    200,
		FieldSettleMs:    800,
		MarkIntervalMs:   800,
		HomeSettleMs:     2500,
		PortalEscapeWait: 3,

		LoginPollAttempts: 15,
		NavTimeoutSec:     30,
		FrameWaitSec:      30,
		FieldWaitSec:      60,
	}
}

func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Save(path); err != nil {
			return nil, err
		}
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (c *Config) typingDelay() int  { return orDefault(c.TypingDelayMs, 200) }
func (c *Config) fieldSettle() int  { return orDefault(c.FieldSettleMs, 800) }
func (c *Config) markInterval() int { return orDefault(c.MarkIntervalMs, 800) }
func (c *Config) loginPolls() int   { return orDefault(c.LoginPollAttempts, 15) }

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
