package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/newsdash/internal/api"
	"github.com/pders01/newsdash/internal/config"
	"github.com/pders01/newsdash/internal/dashboard"
	"github.com/pders01/newsdash/internal/debuglog"
	"github.com/pders01/newsdash/internal/storage"
	"github.com/pders01/newsdash/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	flagConfig  string
	flagVariant string
	flagDB      string
	flagQuiet   bool

	configGenOut string
)

var rootCmd = &cobra.Command{
	Use:           "newsdash",
	Short:         "Terminal dashboard for a news backend",
	Long:          "newsdash shows weekly and daily news counts, filters and searches news, sends reports and chats with the backend assistant.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "newsdash %s\n", Version)
		fmt.Fprintln(out, "News dashboard")
		fmt.Fprintln(out, "github.com/pders01/newsdash")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configGenOut
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&flagVariant, "variant", "", "dashboard variant (overrides config)")
	rootCmd.Flags().StringVar(&flagDB, "db", "", "path to session database (overrides config)")
	rootCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "skip startup banner")

	configGenCmd.Flags().StringVar(&configGenOut, "out", "", "where to write the file (default: XDG config dir)")
	configCmd.AddCommand(configGenCmd)

	rootCmd.AddCommand(versionCmd, configCmd, chartCmd, reportCmd)
}

// loadConfig reads the configuration, applies flag overrides and opens the
// debug log.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flagVariant != "" {
		cfg.UI.Variant = flagVariant
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return cfg, nil
}

func newController(cfg *config.Config) (*dashboard.Controller, error) {
	variant, err := cfg.Variant()
	if err != nil {
		return nil, err
	}
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	debuglog.Infof("backend %s, variant %s", client.BaseURL(), variant.Name)
	return dashboard.New(client, variant), nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	if flagDB != "" {
		cfg.Database.Path = flagDB
	}

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}

	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return err
	}
	defer store.Close()

	if !flagQuiet {
		tui.ShowBanner(Version)
	}

	app := tui.NewApp(ctrl, store, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
