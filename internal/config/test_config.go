package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://127.0.0.1:0",
			Timeout:   5 * time.Second,
			UserAgent: "newsdash-test/1.0",
		},
		Database: DatabaseConfig{
			Path:            ":memory:",
			Timeout:         1 * time.Second,
			TranscriptLimit: 50,
		},
		Log: LogConfig{Level: "off"},
		UI:  defaultConfig().UI,
	}
}
