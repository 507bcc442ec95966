package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/envconfig"
)

var (
	checkMark = color.GreenString("✓")
	crossMark = color.RedString("✗")
)

var checkCmd = &cobra.Command{
	Use:   "check [FILE]",
	Short: "Check that every field of a schema resolves",
	Long: `Resolve each field of the declared schema on its own and report
which ones are missing or hold values that do not convert to the declared type.

Exits non-zero when any field fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := baseOptions()
	if err != nil {
		return err
	}
	opts = append(opts, envconfig.WithLifecycle(envconfig.Manual))

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

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Checking %s...\n\n", path)

	failed := checkSchema(out, schema, "")
	if failed > 0 {
		return fmt.Errorf("%d field(s) failed to resolve", failed)
	}
	fmt.Fprintf(out, "\nAll fields resolve\n")
	return nil
}

func checkSchema(out io.Writer, schema *envconfig.Schema, prefix string) int {
	keys := schema.Keys()
	failed := 0

	for _, f := range schema.Fields() {
		if f.IsPrivate() {
			continue
		}
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		if f.Schema != nil {
			failed += checkSchema(out, f.Schema, path)
			continue
		}

		key := keys[f.Name]
		if _, err := envconfig.Resolve(f, schema.Options()); err != nil {
			failed++
			fmt.Fprintf(out, "  %s %s (%s)\n", crossMark, path, key)
			var rerr *envconfig.ResolveError
			if errors.As(err, &rerr) && rerr.Err != nil {
				fmt.Fprintf(out, "      Error: %v\n", rerr.Err)
			} else {
				fmt.Fprintf(out, "      Error: %v\n", err)
			}
			continue
		}
		fmt.Fprintf(out, "  %s %s (%s)\n", checkMark, path, key)
	}
	return failed
}
