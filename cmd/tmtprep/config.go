package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tmtprep configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.tmtprep.yaml.",
		Example: `  tmtprep config                                  # show all config
  tmtprep config set summary_for_multiple_rows sum  # sum intensities on ties
  tmtprep config get which_proteinid               # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

func runConfigShow(w io.Writer) error {
	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintln(w, "# No configuration set. Config file: ~/.tmtprep.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(w, string(out))
	return nil
}

// configKeys are the pipeline options that may be stored in the config file.
var configKeys = map[string]bool{
	"fraction":                                 true,
	"use_num_proteins_column":                  true,
	"use_unique_peptide":                       true,
	"summary_for_multiple_rows":                true,
	"remove_psm_with_missing_value_within_run": true,
	"remove_protein_with_1_feature":            true,
	"which_proteinid":                          true,
	"channel_prefix":                           true,
	"workers":                                  true,
}

func runConfigSet(w io.Writer, key, value string) error {
	key = strings.ToLower(viperKey(key))
	if !configKeys[key] && !strings.HasPrefix(key, "log.") {
		return &usageError{err: fmt.Errorf("unknown config key %q", key)}
	}

	// Parse boolean-like values
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		viper.Set(key, value)
	}

	if err := optionsFromViper().Validate(); err != nil {
		return err
	}

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".tmtprep.yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(w, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(w io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}
