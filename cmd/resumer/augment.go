package main

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cschleiden/go-resume/graph"
	"github.com/spf13/cobra"
)

func newAugmentCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "augment <pattern>...",
		Short: "Add the resume dispatcher state to Amazon States Language definitions",
		Long: `augment adds a Choice state that routes executions to the state named in the
resumeTo field of their input, and makes it the new start state. Patterns support ** to match
any number of directories.`,
		Example: `  resumer augment 'statemachines/**/*.asl.json' --write`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var paths []string
			for _, pattern := range args {
				matches, err := doublestar.FilepathGlob(pattern)
				if err != nil {
					return fmt.Errorf("invalid pattern %q: %w", pattern, err)
				}

				paths = append(paths, matches...)
			}

			if len(paths) == 0 {
				return fmt.Errorf("no definitions match %v", args)
			}

			a := graph.NewAugmentor(graph.NewRegistry())

			for _, path := range paths {
				out, err := augmentFile(a, path)
				if err != nil {
					return err
				}

				if write {
					if err := os.WriteFile(path, out, 0o644); err != nil {
						return fmt.Errorf("writing %s: %w", path, err)
					}

					fmt.Fprintln(cmd.ErrOrStderr(), "augmented", path)
					continue
				}

				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Overwrite the definitions instead of printing them")

	return cmd
}

func augmentFile(a *graph.Augmentor, path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	d, err := graph.ParseDefinition(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out, err := d.Augment(a, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return out, nil
}
