package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed variants.toml
var variantsTOML []byte

// DefaultVariant is used when ui.variant is empty.
const DefaultVariant = "standard"

// ErrorSurface controls whether a failure is shown to the user.
type ErrorSurface string

const (
	SurfaceSilent ErrorSurface = "silent"
	SurfaceStatus ErrorSurface = "status"
)

// ChatInvalidMode controls what happens when a chat message fails validation.
type ChatInvalidMode string

const (
	ChatInvalidSilent ChatInvalidMode = "silent"
	ChatInvalidInline ChatInvalidMode = "inline"
)

// Labels holds every user-facing string the dashboard renders.
type Labels struct {
	WeeklySeries      string `toml:"weekly_series" mapstructure:"weekly_series"`
	DailySeries       string `toml:"daily_series" mapstructure:"daily_series"`
	NoData            string `toml:"no_data" mapstructure:"no_data"`
	ReadMore          string `toml:"read_more" mapstructure:"read_more"`
	FilterRequired    string `toml:"filter_required" mapstructure:"filter_required"`
	DateRequired      string `toml:"date_required" mapstructure:"date_required"`
	LoadFailed        string `toml:"load_failed" mapstructure:"load_failed"`
	InitialLoadFailed string `toml:"initial_load_failed" mapstructure:"initial_load_failed"`
	SearchEmpty       string `toml:"search_empty" mapstructure:"search_empty"`
	SearchNotFound    string `toml:"search_not_found" mapstructure:"search_not_found"`
	SearchFailed      string `toml:"search_failed" mapstructure:"search_failed"`
	ReportFailed      string `toml:"report_failed" mapstructure:"report_failed"`
	ChatRequired      string `toml:"chat_required" mapstructure:"chat_required"`
	ChatFailed        string `toml:"chat_failed" mapstructure:"chat_failed"`
	ChatPending       string `toml:"chat_pending" mapstructure:"chat_pending"`
	UserPrefix        string `toml:"user_prefix" mapstructure:"user_prefix"`
	ReplyPrefix       string `toml:"reply_prefix" mapstructure:"reply_prefix"`
	ErrorPrefix       string `toml:"error_prefix" mapstructure:"error_prefix"`
}

// fields lists label fields in a fixed order so merging stays table-driven.
func (l *Labels) fields() []*string {
	return []*string{
		&l.WeeklySeries, &l.DailySeries, &l.NoData, &l.ReadMore,
		&l.FilterRequired, &l.DateRequired, &l.LoadFailed, &l.InitialLoadFailed,
		&l.SearchEmpty, &l.SearchNotFound, &l.SearchFailed, &l.ReportFailed,
		&l.ChatRequired, &l.ChatFailed, &l.ChatPending,
		&l.UserPrefix, &l.ReplyPrefix, &l.ErrorPrefix,
	}
}

// Merge returns l with every non-empty field of over applied on top.
func (l Labels) Merge(over Labels) Labels {
	dst := l.fields()
	for i, src := range over.fields() {
		if *src != "" {
			*dst[i] = *src
		}
	}
	return l
}

// Behavior captures the choices on which the observed dashboards disagree.
type Behavior struct {
	InitialLoadErrors ErrorSurface    `toml:"initial_load_errors"`
	ReportStatusClear string          `toml:"report_status_clear"`
	ChatInvalidInput  ChatInvalidMode `toml:"chat_invalid_input"`
}

// ReportClearAfter is how long a report status stays visible. Zero keeps it.
func (b Behavior) ReportClearAfter() time.Duration {
	d, err := time.ParseDuration(b.ReportStatusClear)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func (b Behavior) validate() error {
	switch b.InitialLoadErrors {
	case SurfaceSilent, SurfaceStatus:
	default:
		return fmt.Errorf("initial_load_errors: unknown value %q (valid: silent, status)", b.InitialLoadErrors)
	}
	switch b.ChatInvalidInput {
	case ChatInvalidSilent, ChatInvalidInline:
	default:
		return fmt.Errorf("chat_invalid_input: unknown value %q (valid: silent, inline)", b.ChatInvalidInput)
	}
	if b.ReportStatusClear != "" {
		if _, err := time.ParseDuration(b.ReportStatusClear); err != nil {
			return fmt.Errorf("report_status_clear: %w", err)
		}
	}
	return nil
}

// Variant is one resolved row of the variant table.
type Variant struct {
	Name        string
	Description string
	Labels      Labels
	Behavior    Behavior
}

type variantEntry struct {
	Description string   `toml:"description"`
	Behavior    Behavior `toml:"behavior"`
	Labels      Labels   `toml:"labels"`
}

type variantTable struct {
	Labels   Labels                  `toml:"labels"`
	Variants map[string]variantEntry `toml:"variants"`
}

func loadVariantTable() (*variantTable, error) {
	var table variantTable
	if err := toml.Unmarshal(variantsTOML, &table); err != nil {
		return nil, fmt.Errorf("parsing variants.toml: %w", err)
	}
	return &table, nil
}

// VariantNames lists the built-in variants in sorted order.
func VariantNames() []string {
	table, err := loadVariantTable()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(table.Variants))
	for name := range table.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadVariant resolves a built-in variant by name.
func LoadVariant(name string) (Variant, error) {
	table, err := loadVariantTable()
	if err != nil {
		return Variant{}, err
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultVariant
	}

	entry, ok := table.Variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown ui variant %q (valid: %s)", name, strings.Join(VariantNames(), ", "))
	}

	v := Variant{
		Name:        name,
		Description: entry.Description,
		Labels:      table.Labels.Merge(entry.Labels),
		Behavior:    entry.Behavior,
	}
	if err := v.Behavior.validate(); err != nil {
		return Variant{}, fmt.Errorf("variant %s: %w", name, err)
	}
	return v, nil
}

// Variant resolves the configured variant and applies the user's behavior
// and label overrides.
func (c *Config) Variant() (Variant, error) {
	v, err := LoadVariant(c.UI.Variant)
	if err != nil {
		return Variant{}, err
	}

	if c.Behavior.InitialLoadErrors != "" {
		v.Behavior.InitialLoadErrors = ErrorSurface(strings.ToLower(c.Behavior.InitialLoadErrors))
	}
	if c.Behavior.ReportStatusClear != "" {
		v.Behavior.ReportStatusClear = c.Behavior.ReportStatusClear
	}
	if c.Behavior.ChatInvalidInput != "" {
		v.Behavior.ChatInvalidInput = ChatInvalidMode(strings.ToLower(c.Behavior.ChatInvalidInput))
	}
	if err := v.Behavior.validate(); err != nil {
		return Variant{}, fmt.Errorf("behavior: %w", err)
	}

	v.Labels = v.Labels.Merge(c.Labels)
	return v, nil
}
