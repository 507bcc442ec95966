package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/envconfig"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [FILE]",
	Short: "Resolve a schema and print its values",
	Long: `Resolve every field of the declared schema and print the result.
Without FILE, envconfig.{toml,yaml,yml,json} is searched in the current
directory and the XDG config directories, unless ENVCONFIG_SCHEMA is set.

Formats:
  toml   TOML document (default)
  yaml   YAML document
  json   JSON object
  env    KEY=VALUE lines for values that differ from their defaults
  debug  Go values with their types`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

var resolveFormat string

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolveFormat, "format", "f", "toml", "output format: toml, yaml, json, env, debug")
}

func runResolve(cmd *cobra.Command, args []string) error {
	opts, err := baseOptions()
	if err != nil {
		return err
	}

	path, err := declarationPath(args)
	if err != nil {
		return err
	}

	b, err := envconfig.LoadDeclaration(path, opts...)
	if err != nil {
		return err
	}
	schema, err := b.Build()
	if err != nil {
		return err
	}

	values, err := instance(schema)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch resolveFormat {
	case "toml":
		return values.WriteTOML(out)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(values.Map()); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(values.Map())
	case "env":
		exports := schema.ExportEnv(values)
		keys := make([]string, 0, len(exports))
		for k := range exports {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "%s=%s\n", k, exports[k])
		}
		return nil
	case "debug":
		cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
		cfg.Fdump(out, goValues(values))
		return nil
	default:
		return fmt.Errorf("unknown format %q", resolveFormat)
	}
}

// instance returns the values of the schema according to its lifecycle.
func instance(schema *envconfig.Schema) (*envconfig.Values, error) {
	switch schema.Lifecycle() {
	case envconfig.AtInstantiation:
		return schema.New()
	case envconfig.Manual:
		if err := schema.Load(nil); err != nil {
			return nil, err
		}
	}
	return schema.Values(), nil
}

// goValues returns the resolved Go values with nested schemas expanded.
func goValues(values *envconfig.Values) map[string]any {
	out := make(map[string]any, values.Len())
	for _, name := range values.Names() {
		if nested, ok := values.Nested(name); ok {
			nv, err := instance(nested)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			out[name] = goValues(nv)
			continue
		}
		out[name], _ = values.Get(name)
	}
	return out
}
