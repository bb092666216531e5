// Package cli defines the cobra command tree for deliveryctl.
package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"delivery-options-backend/config"
	"delivery-options-backend/internal/logging"
)

var (
	flagFormat   string
	flagConfig   string
	flagUpstream string
	flagVerbose  bool
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "deliveryctl",
		Short:         "Inspect delivery options for an address",
		Long:          "A developer tool that opens a delivery options session against the upstream, prints the timeframes and pickup locations, and builds carrier links.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the YAML configuration (default: built-in defaults)")
	root.PersistentFlags().StringVar(&flagUpstream, "upstream", "", "upstream base URL, overrides the configuration")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		newOptionsCmd(),
		newMethodsCmd(),
		newTrackCmd(),
	)

	return root
}

// loadConfig reads --config, or the defaults when it is unset, and applies
// --upstream.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
	}
	if flagUpstream != "" {
		cfg.Upstream.BaseURL = flagUpstream
	}
	return cfg, nil
}

// newLogger returns a development logger with --verbose and a no-op one
// otherwise.
func newLogger() (*zap.Logger, error) {
	if !flagVerbose {
		return zap.NewNop(), nil
	}
	return logging.New("debug", true)
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
