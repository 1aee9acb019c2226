package cmd

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/meko-tech/jsengine/pkg/engine"
)

// fileConfig is the shape of the YAML document --config accepts, mirroring
// engine.Options one field at a time so a host can pin the same knobs the
// Go embedding API exposes from a checked-in file instead of flags.
type fileConfig struct {
	MaxCallStackDepth           int  `yaml:"max-call-stack-depth"`
	MicrotaskBudgetPerMacrotask int  `yaml:"microtask-budget"`
	Strict                      bool `yaml:"strict"`
}

// engineOptions reads the --config flag (if set) and returns the resulting
// engine.Option slice, letting every subcommand share one config-file
// convention rather than each re-parsing YAML itself.
func engineOptions(cmd *cobra.Command) ([]engine.Option, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	var opts []engine.Option
	if fc.MaxCallStackDepth > 0 {
		opts = append(opts, engine.WithMaxCallStackDepth(fc.MaxCallStackDepth))
	}
	if fc.MicrotaskBudgetPerMacrotask > 0 {
		opts = append(opts, engine.WithMicrotaskBudget(fc.MicrotaskBudgetPerMacrotask))
	}
	if fc.Strict {
		opts = append(opts, engine.WithStrictByDefault(true))
	}
	return opts, nil
}
