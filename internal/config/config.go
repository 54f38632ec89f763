package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const appName = "newsdash"

type Config struct {
	API      APIConfig         `mapstructure:"api"`
	Database DatabaseConfig    `mapstructure:"database"`
	Log      LogConfig         `mapstructure:"log"`
	UI       UIConfig          `mapstructure:"ui"`
	Behavior BehaviorOverrides `mapstructure:"behavior"`
	Labels   Labels            `mapstructure:"labels"`
}

type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
	// TranscriptLimit caps how many chat entries are restored on startup.
	TranscriptLimit int `mapstructure:"transcript_limit"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type UIConfig struct {
	Variant string   `mapstructure:"variant"`
	Colors  UIColors `mapstructure:"colors"`
	Charts  ChartsUI `mapstructure:"charts"`
	Cards   CardsUI  `mapstructure:"cards"`
	Export  ExportUI `mapstructure:"export"`
	// Opener is the program used to open news links; empty picks the
	// platform default.
	Opener string `mapstructure:"opener"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Series    string `mapstructure:"series"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Highlight string `mapstructure:"highlight"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type ChartsUI struct {
	Height int `mapstructure:"height"`
}

type CardsUI struct {
	MaxDescriptionLength int `mapstructure:"max_description_length"`
}

type ExportUI struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// BehaviorOverrides replaces individual behaviour choices of the selected
// variant. Empty fields keep the variant's value.
type BehaviorOverrides struct {
	InitialLoadErrors string `mapstructure:"initial_load_errors"`
	ReportStatusClear string `mapstructure:"report_status_clear"`
	ChatInvalidInput  string `mapstructure:"chat_invalid_input"`
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://127.0.0.1:5000",
			Timeout:   30 * time.Second,
			UserAgent: "newsdash/1.0 (https://github.com/pders01/newsdash)",
		},
		Database: DatabaseConfig{
			Path:            filepath.Join(xdg.DataHome, appName, "session.db"),
			Timeout:         1 * time.Second,
			TranscriptLimit: 200,
		},
		Log: LogConfig{
			Level: "off",
			Path:  filepath.Join(xdg.StateHome, appName, appName+".log"),
		},
		UI: UIConfig{
			Variant: DefaultVariant,
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Series:    "#4F46E5",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Highlight: "#FFE66D",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			Charts: ChartsUI{Height: 8},
			Cards:  CardsUI{MaxDescriptionLength: 160},
			Export: ExportUI{Width: 1024, Height: 480},
		},
	}
}

// DefaultConfigPath is where Load looks when no explicit path is given.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.user_agent", cfg.API.UserAgent)

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)
	v.SetDefault("database.transcript_limit", cfg.Database.TranscriptLimit)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.path", cfg.Log.Path)

	v.SetDefault("ui.variant", cfg.UI.Variant)
	v.SetDefault("ui.opener", cfg.UI.Opener)
	colors := cfg.UI.Colors
	for key, value := range map[string]string{
		"primary":   colors.Primary,
		"secondary": colors.Secondary,
		"accent":    colors.Accent,
		"series":    colors.Series,
		"text":      colors.Text,
		"muted":     colors.Muted,
		"highlight": colors.Highlight,
		"error":     colors.Error,
		"success":   colors.Success,
	} {
		v.SetDefault("ui.colors."+key, value)
	}
	v.SetDefault("ui.charts.height", cfg.UI.Charts.Height)
	v.SetDefault("ui.cards.max_description_length", cfg.UI.Cards.MaxDescriptionLength)
	v.SetDefault("ui.export.width", cfg.UI.Export.Width)
	v.SetDefault("ui.export.height", cfg.UI.Export.Height)
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultConfigPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("NEWSDASH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if _, err := config.Variant(); err != nil {
		return nil, err
	}

	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ to the home directory and makes the path absolute.
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

func Save(config *Config, path string) error {
	v := viper.New()

	apiCfg := map[string]interface{}{
		"base_url":   config.API.BaseURL,
		"timeout":    config.API.Timeout.String(),
		"user_agent": config.API.UserAgent,
	}

	dbCfg := map[string]interface{}{
		"path":             config.Database.Path,
		"timeout":          config.Database.Timeout.String(),
		"transcript_limit": config.Database.TranscriptLimit,
	}

	uiCfg := map[string]interface{}{
		"variant": config.UI.Variant,
		"opener":  config.UI.Opener,
		"colors": map[string]interface{}{
			"primary":   config.UI.Colors.Primary,
			"secondary": config.UI.Colors.Secondary,
			"accent":    config.UI.Colors.Accent,
			"series":    config.UI.Colors.Series,
			"text":      config.UI.Colors.Text,
			"muted":     config.UI.Colors.Muted,
			"highlight": config.UI.Colors.Highlight,
			"error":     config.UI.Colors.Error,
			"success":   config.UI.Colors.Success,
		},
		"charts": map[string]interface{}{"height": config.UI.Charts.Height},
		"cards":  map[string]interface{}{"max_description_length": config.UI.Cards.MaxDescriptionLength},
		"export": map[string]interface{}{"width": config.UI.Export.Width, "height": config.UI.Export.Height},
	}

	v.Set("api", apiCfg)
	v.Set("database", dbCfg)
	v.Set("log", map[string]interface{}{"level": config.Log.Level, "path": config.Log.Path})
	v.Set("ui", uiCfg)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
