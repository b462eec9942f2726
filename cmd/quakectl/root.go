package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/couchcryptid/quakesense-service/internal/app"
	"github.com/couchcryptid/quakesense-service/internal/config"
	"github.com/couchcryptid/quakesense-service/internal/observability"
	"github.com/couchcryptid/quakesense-service/internal/service"
)

// Output formats.
const (
	textOut = "text"
	jsonOut = "json"
)

// cli holds the state shared by every subcommand of one invocation.
type cli struct {
	v        *viper.Viper
	cfg      *config.Config
	analyzer *service.Analyzer
	logger   *slog.Logger
	stderr   io.Writer
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), stderr: os.Stderr}

	root := &cobra.Command{
		Use:   "quakectl",
		Short: "Inspect earthquake events and compute strong-motion signal features",
		Long: `quakectl reads the event catalog, station list and acceleration records
configured for the QuakeSense service and renders them as tables.

Settings come from the service environment (DATA_DIR, EVENTS_FILE, ...),
an optional .quakectl.yaml file, QUAKECTL_* variables and flags.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetErrPrefix("quakectl:")

	root.PersistentFlags().String("config", "", "Path to config file")
	root.PersistentFlags().String("data-dir", "", "Directory holding the catalog and signal files (overrides DATA_DIR)")
	root.PersistentFlags().StringP("output", "o", textOut, "Output format: text or json")
	root.PersistentFlags().Int("precision", 4, "Decimal precision for numeric columns")
	root.PersistentFlags().String("log-level", "warn", "Log level written to stderr")
	root.PersistentFlags().String("color", "auto", "Colored labels: auto, yes or no")
	if err := c.v.BindPFlags(root.PersistentFlags()); err != nil {
		panic(err)
	}

	root.AddCommand(
		c.eventsCmd(),
		c.eventCmd(),
		c.stationsCmd(),
		c.stationCmd(),
		c.featuresCmd(),
		c.featureCmd(),
		c.summaryCmd(),
		c.summariesCmd(),
		c.mapCmd(),
		c.exportCmd(),
	)
	return root
}

// setup resolves configuration and builds the analyzer before any subcommand runs.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := c.readConfigFile(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dir := c.v.GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	cfg.LogLevel = c.v.GetString("log-level")
	cfg.LogFormat = "text"

	switch out := c.output(); out {
	case textOut, jsonOut:
	default:
		return fmt.Errorf("invalid --output %q: must be text or json", out)
	}
	configureColor(c.v.GetString("color"))

	c.cfg = cfg
	c.logger = observability.NewLoggerTo(c.stderr, cfg)
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())
	c.analyzer = app.NewAnalyzer(cfg, metrics, c.logger)
	return nil
}

func (c *cli) readConfigFile() error {
	if file := c.v.GetString("config"); file != "" {
		c.v.SetConfigFile(file)
	} else {
		c.v.SetConfigName(".quakectl")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(".")
		c.v.AddConfigPath("$HOME")
	}
	c.v.SetEnvPrefix("QUAKECTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

func (c *cli) output() string {
	return strings.ToLower(c.v.GetString("output"))
}

func (c *cli) precision() int {
	p := c.v.GetInt("precision")
	if p < 0 {
		return 0
	}
	return p
}
