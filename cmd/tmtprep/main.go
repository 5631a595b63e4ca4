// Package main provides the tmtprep command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// usageError marks errors caused by invalid command-line usage.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		verbose bool
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "tmtprep",
		Short: "Convert TMT PSM tables into feature-level tables",
		Long: `tmtprep converts peptide-spectrum-match (PSM) output of a search engine
into a normalized, annotated, feature-level long table for protein-level
TMT summarization.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.tmtprep.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log stage progress")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
	viper.BindPFlag("log.verbose", cmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log.quiet", cmd.PersistentFlags().Lookup("quiet"))

	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newSummaryCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tmtprep version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig wires the config file and TMTPREP_* environment into viper.
func initConfig(cfgFile string) error {
	viper.SetEnvPrefix("TMTPREP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.SetConfigFile(filepath.Join(home, ".tmtprep.yaml"))
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}
		if cfgFile == "" {
			if _, statErr := os.Stat(viper.ConfigFileUsed()); os.IsNotExist(statErr) {
				return nil
			}
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// newLogger builds the console logger used by all commands.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	switch {
	case viper.GetBool("log.quiet"):
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case viper.GetBool("log.verbose"):
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
