package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server          ServerConfig    `yaml:"server"`
	Logging         LoggingConfig   `yaml:"logging"`
	Cache           CacheConfig     `yaml:"cache"`
	Scanner         ScannerConfig   `yaml:"scanner"`
	Arbitrage       ArbitrageConfig `yaml:"arbitrage"`
	Browser         BrowserConfig   `yaml:"browser"`
	Sources         []SourceConfig  `yaml:"sources"`
	Telegram        TelegramConfig  `yaml:"telegram"`
	Preload         bool            `yaml:"preload"`
	RefreshInterval time.Duration   `yaml:"refresh_interval"` // 0 = no periodic refresh
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // DEBUG, INFO, WARN, ERROR
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`   // optional second sink
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type ScannerConfig struct {
	WindowSize    int      `yaml:"window_size"`
	MinTokens     int      `yaml:"min_tokens"`
	MaxNameLength int      `yaml:"max_name_length"`
	IDNameLength  int      `yaml:"id_name_length"`
	DrawMarkers   []string `yaml:"draw_markers"`
}

type ArbitrageConfig struct {
	StakeUnit        float64  `yaml:"stake_unit"`
	ProfitPrecision  int32    `yaml:"profit_precision"`
	RatePrecision    int32    `yaml:"rate_precision"`
	TwoOutcomeSports []string `yaml:"two_outcome_sports"`
	DrawBand         Band     `yaml:"draw_band"`
	ResultLimit      int      `yaml:"result_limit"`
}

// Band is an inclusive [Min, Max] range of prices.
type Band struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type BrowserConfig struct {
	Headless     bool          `yaml:"headless"`
	UserAgent    string        `yaml:"user_agent"`
	PageTimeout  time.Duration `yaml:"page_timeout"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	ScrollSteps  int           `yaml:"scroll_steps"`
	ScrollDelay  time.Duration `yaml:"scroll_delay"`
	ConsentTexts []string      `yaml:"consent_texts"`
}

type SourceConfig struct {
	ID            string       `yaml:"id"`
	Bookmaker     string       `yaml:"bookmaker"`
	BaseURL       string       `yaml:"base_url"`
	Format        string       `yaml:"format"` // "text" or "markup"
	Enabled       *bool        `yaml:"enabled"`
	RatePerSecond float64      `yaml:"rate_per_second"`
	Burst         int          `yaml:"burst"`
	Pages         []PageConfig `yaml:"pages"`
}

type PageConfig struct {
	Sport string `yaml:"sport"`
	Path  string `yaml:"path"`
}

type TelegramConfig struct {
	Enabled           bool    `yaml:"enabled"`
	BotToken          string  `yaml:"bot_token"`
	ChatID            int64   `yaml:"chat_id"`
	MinConversionRate float64 `yaml:"min_conversion_rate"`
}

// Default returns the configuration used for every key a config file omits.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              5000,
			ReadHeaderTimeout: 5 * time.Second,
			RequestTimeout:    5 * time.Minute,
			AllowedOrigins:    []string{"*"},
		},
		Logging: LoggingConfig{Level: "INFO", Format: "text"},
		Cache:   CacheConfig{TTL: 30 * time.Minute},
		Scanner: ScannerConfig{
			WindowSize:    10,
			MinTokens:     4,
			MaxNameLength: 40,
			IDNameLength:  10,
			DrawMarkers:   []string{"nul", "match nul", "n", "draw"},
		},
		Arbitrage: ArbitrageConfig{
			StakeUnit:        100,
			ProfitPrecision:  0,
			RatePrecision:    1,
			TwoOutcomeSports: []string{"basketball", "tennis", "basket", "volley", "mma", "boxe"},
			DrawBand:         Band{Min: 1.05, Max: 50},
			ResultLimit:      20,
		},
		Browser: BrowserConfig{
			Headless:     true,
			UserAgent:    "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			PageTimeout:  60 * time.Second,
			SettleDelay:  2 * time.Second,
			ScrollSteps:  4,
			ScrollDelay:  500 * time.Millisecond,
			ConsentTexts: []string{"tout accepter", "accepter"},
		},
		Preload: true,
	}
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Scanner.WindowSize < 4 {
		return fmt.Errorf("scanner.window_size must be at least 4, got %d", c.Scanner.WindowSize)
	}
	if c.Scanner.MinTokens < 4 {
		return fmt.Errorf("scanner.min_tokens must be at least 4, got %d", c.Scanner.MinTokens)
	}
	if c.Scanner.MaxNameLength <= 2 || c.Scanner.IDNameLength <= 0 {
		return fmt.Errorf("scanner name lengths must be positive (max_name_length > 2)")
	}
	if c.Arbitrage.StakeUnit <= 0 {
		return fmt.Errorf("arbitrage.stake_unit must be positive")
	}
	if c.Arbitrage.DrawBand.Min > c.Arbitrage.DrawBand.Max {
		return fmt.Errorf("arbitrage.draw_band min %.2f exceeds max %.2f", c.Arbitrage.DrawBand.Min, c.Arbitrage.DrawBand.Max)
	}
	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		id := strings.ToLower(strings.TrimSpace(s.ID))
		if id == "" {
			return fmt.Errorf("sources: entry without id")
		}
		if seen[id] {
			return fmt.Errorf("sources: duplicate id %q", id)
		}
		seen[id] = true
		switch s.Format {
		case "", "text", "markup":
		default:
			return fmt.Errorf("sources.%s: unknown format %q (want text or markup)", id, s.Format)
		}
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id are required when telegram is enabled")
	}
	return nil
}
