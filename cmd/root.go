// =============================================================================
// SWIFT MT Engine - Root Command
// =============================================================================
//
// COBRA CLI STRUCTURE:
//   rootCmd (swiftmt)
//   ├── parseCmd     (swiftmt parse)
//   ├── validateCmd  (swiftmt validate)
//   ├── serializeCmd (swiftmt serialize)
//   ├── processCmd   (swiftmt process)
//   ├── serveCmd     (swiftmt serve)
//   ├── rulesCmd     (swiftmt rules)
//   └── versionCmd   (swiftmt version)
//
// Before any subcommand runs, the root command:
//   1. Loads the .env file (--env-file)
//   2. Loads the main configuration (--config), or the defaults when the
//      file does not exist
//   3. Builds the logger
//   4. Registers the field catalogue, if one is configured
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/config"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/logging"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/xlsxparser"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// envFile holds the path to an optional .env file.
var envFile string

// verbose forces debug logging.
var verbose bool

// mainConfig and logger are set by the root PersistentPreRunE.
var (
	mainConfig *config.MainConfig
	logger     zerolog.Logger
	closeLog   func() error
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "swiftmt",
	Short: "SWIFT MT Engine - parse, validate and convert SWIFT MT messages",
	Long: `swiftmt parses SWIFT MT FIN messages into typed fields, checks them
against the network validation rules and re-serializes them byte for byte.

Key Features:
  - Envelope, field and sequence aware parsing of MT1xx, MT2xx and MT9xx
  - Network validation rules with codes (C-, D-, E-, T- and U- series)
  - Batch conversion of RJE files to XML, XLSX reports and normalized FIN
  - HTTP service with Prometheus metrics

Example Usage:
  swiftmt parse message.fin              # Print the parsed fields
  swiftmt validate message.fin           # List rule violations
  swiftmt process                        # Convert every file in the input directory
  swiftmt serve --config ./config.yaml   # Start the HTTP service`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if closeLog != nil {
			return closeLog()
		}
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Path to a .env file with SWIFTMT_* overrides",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

func initialize() error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}
	mainConfig = cfg

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, closeLog, err = logging.New("swiftmt", logging.Config{
		Level:  level,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if cfg.CatalogueFile != "" {
		_, n, err := xlsxparser.Load(cfg.CatalogueFile)
		if err != nil {
			return fmt.Errorf("failed to load field catalogue: %w", err)
		}
		logger.Debug().Str("catalogue", cfg.CatalogueFile).Int("fields", n).Msg("field catalogue registered")
	}
	return nil
}
