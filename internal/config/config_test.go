package config

import (
	"os"
	"path/filepath"
	"testing"
)

var validConfigJSON = `{
    "rune_api_url": "https://api.example.com/runes",
    "arch_api_url": "https://arch.example.com",
    "btc_price_url": "https://price.example.com/btc",
    "rune_id": "OVT-RUNE-240501",
    "poll_interval": 60,
    "price_interval": 60,
    "fetch_timeout": 30,
    "retries": 3,
    "fallback_btc_price": 50000,
    "debug_logging": true
}`

var invalidConfigJSON = `{
    "rune_api_url": "",
    "arch_api_url": "",
    "rune_id": "",
    "poll_interval": -1
}`

func setupTestConfig(t *testing.T, content string) string {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	configPath := filepath.Join(tmpDir, "config.json")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to write config file: %v", err)
	}

	return configPath
}

func cleanupTestConfig(configPath string) {
	os.RemoveAll(filepath.Dir(configPath))
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name:    "Valid config",
			content: validConfigJSON,
			wantErr: false,
			check: func(cfg *Config) bool {
				return cfg.RuneAPIURL == "https://api.example.com/runes" &&
					cfg.RuneID == "OVT-RUNE-240501" &&
					cfg.PollInterval == 60
			},
		},
		{
			name:    "Invalid config - empty required fields",
			content: invalidConfigJSON,
			wantErr: true,
			check:   nil,
		},
		{
			name:    "Invalid JSON syntax",
			content: "{invalid json",
			wantErr: true,
			check:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := setupTestConfig(t, tt.content)
			defer cleanupTestConfig(configPath)

			cfg, err := LoadConfig(configPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && tt.check != nil {
				if !tt.check(cfg) {
					t.Error("LoadConfig() returned invalid configuration")
				}
			}
		})
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			RuneAPIURL:       "https://api.example.com/runes",
			ArchAPIURL:       "https://arch.example.com",
			RuneID:           "OVT-RUNE-240501",
			PollInterval:     60,
			PriceInterval:    60,
			FetchTimeout:     30,
			Retries:          3,
			FallbackBTCPrice: 50000,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "Valid configuration",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "Missing rune API URL",
			mutate:  func(c *Config) { c.RuneAPIURL = "" },
			wantErr: true,
		},
		{
			name:    "Missing rune ID",
			mutate:  func(c *Config) { c.RuneID = "" },
			wantErr: true,
		},
		{
			name:    "Invalid poll interval",
			mutate:  func(c *Config) { c.PollInterval = -1 },
			wantErr: true,
		},
		{
			name:    "Invalid fallback price",
			mutate:  func(c *Config) { c.FallbackBTCPrice = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidationDetails(t *testing.T) {
	tests := []struct {
		name          string
		config        Config
		expectedError string
	}{
		{
			name: "Invalid rune API URL",
			config: Config{
				RuneAPIURL:       "not-a-url",
				ArchAPIURL:       "https://arch.example.com",
				RuneID:           "OVT-RUNE-240501",
				PollInterval:     60,
				PriceInterval:    60,
				FetchTimeout:     30,
				FallbackBTCPrice: 50000,
			},
			expectedError: "invalid rune API URL",
		},
		{
			name: "Invalid arch API URL",
			config: Config{
				RuneAPIURL:       "https://api.example.com",
				ArchAPIURL:       "ftp://arch.example.com",
				RuneID:           "OVT-RUNE-240501",
				PollInterval:     60,
				PriceInterval:    60,
				FetchTimeout:     30,
				FallbackBTCPrice: 50000,
			},
			expectedError: "invalid arch API URL",
		},
		{
			name: "Invalid retries count",
			config: Config{
				RuneAPIURL:       "https://api.example.com",
				ArchAPIURL:       "https://arch.example.com",
				RuneID:           "OVT-RUNE-240501",
				PollInterval:     60,
				PriceInterval:    60,
				FetchTimeout:     30,
				Retries:          -1,
				FallbackBTCPrice: 50000,
			},
			expectedError: "invalid retries count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(&tt.config)
			if err == nil {
				t.Error("Expected error but got nil")
				return
			}
			if err.Error() != tt.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tt.expectedError, err.Error())
			}
		})
	}
}

func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("OVT_RUNE_API_URL", "https://env.example.com/runes")

	configJSON := `{
        "rune_api_url": "https://file.example.com/runes",
        "arch_api_url": "https://arch.example.com",
        "rune_id": "OVT-RUNE-240501"
    }`

	configPath := setupTestConfig(t, configJSON)
	defer cleanupTestConfig(configPath)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.RuneAPIURL != "https://env.example.com/runes" {
		t.Errorf("Expected rune API URL from env var, got %s", cfg.RuneAPIURL)
	}
	if cfg.ArchAPIURL != "https://arch.example.com" {
		t.Errorf("Expected arch API URL from file, got %s", cfg.ArchAPIURL)
	}
}

func TestLoadConfigWithDefaults(t *testing.T) {
	configJSON := `{
		"rune_api_url": "https://api.example.com/runes",
		"arch_api_url": "https://arch.example.com",
		"rune_id": "OVT-RUNE-240501"
	}`

	configPath := setupTestConfig(t, configJSON)
	defer cleanupTestConfig(configPath)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("Expected default PollInterval %d, got %d", DefaultPollInterval, cfg.PollInterval)
	}
	if cfg.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("Expected default FetchTimeout %d, got %d", DefaultFetchTimeout, cfg.FetchTimeout)
	}
	if cfg.FallbackBTCPrice != DefaultFallbackBTCPrice {
		t.Errorf("Expected default FallbackBTCPrice %v, got %v", DefaultFallbackBTCPrice, cfg.FallbackBTCPrice)
	}
}
