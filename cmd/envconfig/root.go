package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/envconfig"
)

var (
	// Global flags
	envPairs []string
	noEnv    bool
	verbose  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "envconfig",
	Short: "Resolve typed configuration schemas against environment variables",
	Long: `envconfig reads a schema declaration (TOML, YAML or JSON) and resolves
its fields against the process environment.

Examples:
  envconfig resolve app.toml
  envconfig resolve app.toml --format json --env APP_PORT=9090
  envconfig check app.yaml --no-env --env APP_HOST=localhost`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&envPairs, "env", "e", nil, "KEY=VALUE overlay consulted before the environment (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&noEnv, "no-env", false, "do not consult the process environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every resolved field")
}

// baseOptions returns the options applied over every declared schema.
func baseOptions() ([]envconfig.Option, error) {
	var opts []envconfig.Option

	if len(envPairs) > 0 || noEnv {
		overlay := make(envconfig.Map, len(envPairs))
		for _, pair := range envPairs {
			key, value, ok := strings.Cut(pair, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("invalid --env %q, expected KEY=VALUE", pair)
			}
			overlay[key] = value
		}
		var source envconfig.Source = overlay
		if !noEnv {
			source = envconfig.Layered(overlay, envconfig.Env())
		}
		opts = append(opts, envconfig.WithSource(source))
	}

	if verbose {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
		opts = append(opts, envconfig.WithLogger(logger))
	}

	return opts, nil
}

// declarationPath returns the FILE argument or the discovered declaration.
func declarationPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	opts := envconfig.DefaultDiscoveryOptions("envconfig")
	path, err := envconfig.FindDeclaration(opts)
	if err != nil {
		return "", fmt.Errorf("%w; searched:\n  %s", err, strings.Join(opts.Candidates(), "\n  "))
	}
	return path, nil
}
