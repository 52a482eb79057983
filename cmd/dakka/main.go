// main.go — dakka CLI entry point.
// Replays recorded browser interactions and compiles them into test scripts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ozdemirkulaoglu/dakka/cmd/dakka/config"
	"github.com/ozdemirkulaoglu/dakka/internal/recorder"
	"github.com/ozdemirkulaoglu/dakka/internal/state"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	verbose    bool
	projectDir string
	logLevel   string

	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "dakka",
	Short: "Compile recorded browser sessions into end-to-end test scripts",
	Long: `dakka turns the interaction stream captured by the recorder extension
into Playwright, Cypress, Puppeteer or dakka test scripts.

Messages are read as newline-delimited JSON, either from a file written by
'dakka serve' or from any other producer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(projectDir, flagOverrides(cmd))
		if err != nil {
			return err
		}

		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		var logFile string
		if cmd.Annotations[annotationLogFile] != "" {
			if logFile, err = state.DefaultLogFile(); err != nil {
				return err
			}
		}
		logger, err = buildLogger(level, logFile)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dakka version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "dakka", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", ".", "directory holding "+config.ProjectFile)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.AddCommand(versionCmd)
}

// annotationLogFile marks commands whose logs are also kept on disk.
const annotationLogFile = "dakka/logfile"

// buildLogger builds the production JSON logger. When logFile is set the
// records are written there as well as to stderr.
func buildLogger(level zapcore.Level, logFile string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	if logFile != "" {
		if err := state.EnsureParent(logFile); err != nil {
			return nil, err
		}
		zc.OutputPaths = append(zc.OutputPaths, logFile)
	}
	return zc.Build()
}

// flagOverrides collects the config flags the user actually set.
func flagOverrides(cmd *cobra.Command) *config.FlagOverrides {
	o := &config.FlagOverrides{}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		o.LogLevel = &logLevel
	}
	if flags.Lookup("framework") != nil && flags.Changed("framework") {
		v, _ := flags.GetString("framework")
		o.Framework = &v
	}
	if flags.Lookup("out") != nil && flags.Changed("out") {
		v, _ := flags.GetString("out")
		o.OutDir = &v
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		v, _ := flags.GetInt("port")
		o.ServerPort = &v
	}
	if flags.Lookup("db") != nil && flags.Changed("db") {
		v, _ := flags.GetString("db")
		o.Database = &v
	}
	return o
}

// recorderSettings derives the composer's starting switches from the config.
func recorderSettings(c config.Config, enabled bool) recorder.Settings {
	s := recorder.DefaultSettings()
	s.Enabled = enabled
	s.RelativeTimestamps = c.RelativeTimestamps
	if tracked := c.Tracked(); tracked != nil {
		s.Tracked = tracked
	}
	return s
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
